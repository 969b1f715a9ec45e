package conf

import (
	"path/filepath"

	"github.com/Terrorbear/anchor-guardian/scenario"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
)

type Conf struct {
	LogLevel string `toml:"logLevel" mapstructure:"logLevel"`
	// LogFormat is "zap" for console json or "elk" to ship to logstash at ElkAddress.
	LogFormat  string          `toml:"logFormat" mapstructure:"logFormat"`
	ElkAddress string          `toml:"elkAddress" mapstructure:"elkAddress"`
	Account    Account         `toml:"account" mapstructure:"account"`
	Chain      Chain           `toml:"chain" mapstructure:"chain"`
	Contract   Contract        `toml:"contract" mapstructure:"contract"`
	Redis      Redis           `toml:"redis" mapstructure:"redis"`
	Kafka      Kafka           `toml:"kafka" mapstructure:"kafka"`
	Server     Server          `toml:"server" mapstructure:"server"`
	Scenario   scenario.Config `toml:"scenario" mapstructure:"scenario"`
}

type Account struct {
	KeyDir         string `toml:"keyDir" mapstructure:"keyDir"`
	KeyringBackend string `toml:"keyringBackend" mapstructure:"keyringBackend"`
	Bech32Prefix   string `toml:"bech32Prefix" mapstructure:"bech32Prefix"`
}

type Chain struct {
	ID            string  `toml:"id" mapstructure:"id"`
	RPC           string  `toml:"rpc" mapstructure:"rpc"`
	GasPrice      string  `toml:"gasPrice" mapstructure:"gasPrice"`
	GasAdjustment float64 `toml:"gasAdjustment" mapstructure:"gasAdjustment"`
	// RateLimit caps submits and queries per second. Zero disables the limit.
	RateLimit float64 `toml:"rateLimit" mapstructure:"rateLimit"`
	Burst     int     `toml:"burst" mapstructure:"burst"`
}

type Contract struct {
	Wallet   string `toml:"wallet" mapstructure:"wallet"`
	Multisig string `toml:"multisig" mapstructure:"multisig"`
}

type Redis struct {
	Host      string `toml:"host" mapstructure:"host"`
	Password  string `toml:"password" mapstructure:"password"`
	DB        int    `toml:"db" mapstructure:"db"`
	Namespace string `toml:"namespace" mapstructure:"namespace"`
}

func (r Redis) StoreConfig() state.RedisConfig {
	return state.RedisConfig{Host: r.Host, Password: r.Password, DB: r.DB, Namespace: r.Namespace}
}

type Kafka struct {
	Brokers []string `toml:"brokers" mapstructure:"brokers"`
	Topic   string   `toml:"topic" mapstructure:"topic"`
	GroupID string   `toml:"groupId" mapstructure:"groupId"`
}

type Server struct {
	APIAddress     string `toml:"apiAddress" mapstructure:"apiAddress"`
	MetricsAddress string `toml:"metricsAddress" mapstructure:"metricsAddress"`
}

// Default is the configuration written on first run.
func Default(home string) Conf {
	return Conf{
		LogLevel:  "info",
		LogFormat: "zap",
		Account: Account{
			KeyDir:         filepath.Join(home, ".terra"),
			KeyringBackend: "os",
			Bech32Prefix:   "terra",
		},
		Chain: Chain{
			ID:            "localterra",
			RPC:           "http://localhost:26657",
			GasPrice:      "0.15uusd",
			GasAdjustment: 1.4,
		},
		Redis: Redis{
			Host:      "localhost:6379",
			Namespace: "smartwallet",
		},
		Kafka: Kafka{
			Brokers: []string{"localhost:9092"},
			Topic:   "smartwallet-audit",
			GroupID: "smartwallet-cli",
		},
		Server: Server{
			APIAddress:     "localhost:8080",
			MetricsAddress: "localhost:9090",
		},
		Scenario: scenario.DefaultConfig(),
	}
}
