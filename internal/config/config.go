package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "COMPLAINTDESK"
	defaultHTTPAddress  = "0.0.0.0:3000"
	defaultDatabasePath = "complaintdesk.db"
	defaultAPIBaseURL   = "http://localhost:3000"
	defaultPollSeconds  = 30
	defaultLogLevel     = "info"
)

// AppConfig captures runtime configuration for the API server and the
// dashboard watcher.
type AppConfig struct {
	HTTPAddress  string
	DatabasePath string
	APIBaseURL   string
	PollInterval time.Duration
	LogLevel     string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("api.base_url", defaultAPIBaseURL)
	configViper.SetDefault("poll.interval_seconds", defaultPollSeconds)
	configViper.SetDefault("log.level", defaultLogLevel)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:  configViper.GetString("http.address"),
		DatabasePath: configViper.GetString("database.path"),
		APIBaseURL:   configViper.GetString("api.base_url"),
		PollInterval: time.Duration(configViper.GetInt("poll.interval_seconds")) * time.Second,
		LogLevel:     configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll.interval_seconds must be positive")
	}
	return nil
}
