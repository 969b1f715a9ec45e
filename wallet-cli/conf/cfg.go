package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

const configEnv = "SMARTWALLET_CONFIG"

var C *Conf

func InitConfig() {
	configPath := os.Getenv(configEnv)
	if configPath == "" {
		home := checkConfig()
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
		viper.AddConfigPath(filepath.Join(home, ".config", "smartwallet"))
	} else {
		viper.SetConfigFile(configPath)
	}

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("Error reading config file:", err)
	}
	if err := viper.Unmarshal(&C); err != nil {
		panic(fmt.Sprintf("config file invalid. %+v", err))
	}
}

// Write encodes c as toml at path.
func Write(path string, c Conf) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(c)
}

func checkConfig() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("Error getting home directory: %s\n", err))
	}
	configDir := filepath.Join(home, ".config", "smartwallet")
	configFile := filepath.Join(configDir, "config.toml")

	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		if err := os.MkdirAll(configDir, os.ModePerm); err != nil {
			panic(fmt.Sprintf("Error creating directory: %s\n", err))
		}
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := Write(configFile, Default(home)); err != nil {
			panic(fmt.Sprintf("Error writing to file: %s\n", err))
		}
	}
	return home
}
