package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Terrorbear/anchor-guardian/scenario"
)

func TestInitConfigWritesDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(configEnv, "")
	viper.Reset()
	C = nil

	InitConfig()

	require.FileExists(t, filepath.Join(home, ".config", "smartwallet", "config.toml"))
	require.NotNil(t, C)
	assert.Equal(t, "terra", C.Account.Bech32Prefix)
	assert.Equal(t, filepath.Join(home, ".terra"), C.Account.KeyDir)
	assert.Equal(t, []string{"localhost:9092"}, C.Kafka.Brokers)
	assert.Equal(t, scenario.DefaultConfig(), C.Scenario)
}

func TestInitConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.toml")
	cfg := Default("/tmp")
	cfg.Contract.Wallet = "terra1wallet"
	cfg.Scenario.GasTankMax = "42"
	require.NoError(t, Write(path, cfg))
	t.Setenv(configEnv, path)
	viper.Reset()
	C = nil

	InitConfig()

	require.NotNil(t, C)
	assert.Equal(t, "terra1wallet", C.Contract.Wallet)
	assert.Equal(t, "42", C.Scenario.GasTankMax)
	assert.Equal(t, 1.4, C.Chain.GasAdjustment)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[scenario]")
}
