package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	SeedOnBoot  bool
}

func Load() Config {
	// Best-effort local dev convenience; production uses real env injection.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        port,
		SeedOnBoot:  os.Getenv("SEED_ON_BOOT") != "false",
	}
}
