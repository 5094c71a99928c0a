// Package config loads the audit consumer configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SHORTENER_REDIS_ADDR.
const EnvPrefix = "SHORTENER"

// Config is the consumer configuration.
type Config struct {
	Redis struct {
		Addr          string `mapstructure:"addr"`
		ConsumerGroup string `mapstructure:"consumer_group"`
	} `mapstructure:"redis"`

	Log struct {
		Format string `mapstructure:"format"`
		Level  string `mapstructure:"level"`
		File   string `mapstructure:"file"`
	} `mapstructure:"log"`
}

// Load reads the configuration from defaults, an optional YAML file and the environment,
// in increasing order of precedence. An empty path looks for config.yaml in ./configs and ".".
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.consumer_group", "audit")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
