package config

import (
	"log"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	DBDSN   string `env:"DB_DSN" envDefault:"reloved.db"`
	LogFile string `env:"LOG_FILE" envDefault:"./reloved.log"`

	// External collaborators.
	CarrierBaseURL  string `env:"CARRIER_BASE_URL" envDefault:"https://panel.sendparcel.example/api/v2"`
	CarrierAPIKey   string `env:"CARRIER_API_KEY"`
	PaymentsBaseURL string `env:"PAYMENTS_BASE_URL" envDefault:"https://api.payments.example"`
	PaymentsAPIKey  string `env:"PAYMENTS_API_KEY"`
	Currency        string `env:"CURRENCY" envDefault:"EUR"`

	// Optional service-point cache; empty disables it.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("[config] parse env: %v", err)
	}
	log.Printf("[config] PORT=%s DB_DSN=%s CARRIER=%s PAYMENTS=%s REDIS=%s",
		cfg.Port, cfg.DBDSN, cfg.CarrierBaseURL, cfg.PaymentsBaseURL, cfg.RedisAddr)
	return cfg
}
