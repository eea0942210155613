// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"cryptonel-ledger/pkg/db"
)

// Store driver names.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort  string
	StoreDriver string
	DB          db.Config
}

// LoadConfig loads configuration from environment variables.
// It returns an AppConfig instance or an error if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	serverPort := getEnv("SERVER_PORT", "8080")

	storeDriver := getEnv("STORE_DRIVER", StoreDriverPostgres)
	if storeDriver != StoreDriverPostgres && storeDriver != StoreDriverMemory {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", storeDriver)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	return &AppConfig{
		ServerPort:  serverPort,
		StoreDriver: storeDriver,
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "crnledger"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
