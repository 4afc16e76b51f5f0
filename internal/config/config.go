// Package config содержит логику чтения конфигурации сервиса тарифов.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса тарифов.
type Config struct {
	RunAddress             string `env:"RUN_ADDRESS"`
	DatabaseURI            string `env:"DATABASE_URI"`
	RedisAddress           string `env:"REDIS_ADDRESS"`
	DiscountServiceAddress string `env:"DISCOUNT_SERVICE_ADDRESS"`
	AdminSecret            string `env:"ADMIN_SECRET"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fromEnv := *cfg

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI for discount storage")
	flag.StringVar(&cfg.RedisAddress, "s", "", "redis address for discount storage")
	flag.StringVar(&cfg.DiscountServiceAddress, "r", "", "remote discount service address")
	flag.StringVar(&cfg.AdminSecret, "k", "", "secret for signing admin tokens")

	flag.Parse()

	override(&cfg.RunAddress, fromEnv.RunAddress)
	override(&cfg.DatabaseURI, fromEnv.DatabaseURI)
	override(&cfg.RedisAddress, fromEnv.RedisAddress)
	override(&cfg.DiscountServiceAddress, fromEnv.DiscountServiceAddress)
	override(&cfg.AdminSecret, fromEnv.AdminSecret)

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
