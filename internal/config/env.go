package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Server holds the runtime settings for the HTTP server, populated from the
// environment.
type Server struct {
	Addr     string `env:"BALANCESIM_ADDR" envDefault:":8080"`
	DBPath   string `env:"BALANCESIM_DB" envDefault:"balancesim.db"`
	LogLevel string `env:"BALANCESIM_LOG_LEVEL" envDefault:"info"`
	// RequestTimeoutMs bounds a single simulate or sweep request.
	RequestTimeoutMs int `env:"BALANCESIM_REQUEST_TIMEOUT_MS" envDefault:"60000"`
}

// LoadServer parses server settings from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
