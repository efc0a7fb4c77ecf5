package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerURL = "http://localhost:3000"
	defaultEnv       = "local"
)

type Config struct {
	Env        string `mapstructure:"app_env"`
	ServerURL  string `mapstructure:"vigil_server_url"`
	PrivateKey string `mapstructure:"vigil_admin_key"`
}

// Load reads .env (if present), the optional config file and the environment.
func Load(configFile string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("vigil_server_url", defaultServerURL)
	v.SetDefault("vigil_admin_key", "")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	cfg.PrivateKey = strings.TrimSpace(cfg.PrivateKey)
	return &cfg, nil
}
