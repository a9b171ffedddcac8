// Package config loads binary configuration from an optional .env file and
// the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// ListenAddr is where shozokod serves its API.
	ListenAddr string
	// BackendURL is the base URL the remote store and submitter talk to.
	BackendURL string
	// DBPath is the sqlite file for the local store / backend.
	DBPath string
	// StoreKind selects the catalog variant: sqlite, remote or memory.
	StoreKind string
	// RabbitURL is empty when eventing is disabled.
	RabbitURL  string
	Exchange   string
	ServiceEnv string
}

func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr: env("SHOZOKOD_ADDR", ":8080"),
		BackendURL: env("SHOZOKO_API_URL", "http://localhost:8080"),
		DBPath:     env("SHOZOKO_DB_PATH", "./data/bookshop.db"),
		StoreKind:  env("SHOZOKO_STORE", "sqlite"),
		RabbitURL:  env("RABBITMQ_URL", ""),
		Exchange:   env("RABBITMQ_EXCHANGE", "bookshop.events"),
		ServiceEnv: env("SERVICE_ENV", "dev"),
	}
	log.Info().
		Str("addr", cfg.ListenAddr).
		Str("backend", cfg.BackendURL).
		Str("db", cfg.DBPath).
		Str("store", cfg.StoreKind).
		Str("env", cfg.ServiceEnv).
		Msg("config loaded")
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
