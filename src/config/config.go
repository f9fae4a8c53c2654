package config

import (
	"os"

	"github.com/a-le/microdbal/src/utils"
	"github.com/rs/zerolog"
)

// Environment variables understood by the library and its test harness.
// The test-runner command sets the three MICRODBAL_TEST_* variables from
// its arguments before invoking `go test`.
const (
	EnvLogLevel     = "MICRODBAL_LOG_LEVEL"
	EnvTestDSN      = "MICRODBAL_TEST_DSN"
	EnvTestUser     = "MICRODBAL_TEST_USER"
	EnvTestPassword = "MICRODBAL_TEST_PASSWORD"
)

// DefaultTestDSN is the in-memory engine used when no DSN is provided.
const DefaultTestDSN = "sqlite3::memory:"

type MicrodbalConfig struct {
	LogLevel zerolog.Level
	Database DatabaseConfig
}

type DatabaseConfig struct {
	DSN      string
	User     string
	Password string
}

var Config = MicrodbalConfig{
	LogLevel: logLevelFromEnv(EnvLogLevel, zerolog.InfoLevel),
	Database: DatabaseConfig{
		DSN:      utils.OrDefault(os.Getenv(EnvTestDSN), DefaultTestDSN),
		User:     os.Getenv(EnvTestUser),
		Password: os.Getenv(EnvTestPassword),
	},
}

func logLevelFromEnv(name string, def zerolog.Level) zerolog.Level {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return def
	}
	return level
}
