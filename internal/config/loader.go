package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from path and the environment.
// Environment variables use the APP_ prefix with "." replaced by "_",
// e.g. APP_POSTGRES_HOST overrides postgres.host.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	// Secrets are usually absent from the file; bind them explicitly so
	// AutomaticEnv feeds Unmarshal even without a file entry.
	for _, key := range []string{"postgres.host", "postgres.user", "postgres.password", "postgres.dbname", "nats.url"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.setDefaults()
	return &config, nil
}
