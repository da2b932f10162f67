// Package config resolves runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvRepository = "GITHUB_REPOSITORY"
	EnvToken      = "GITHUB_TOKEN"
	EnvAPIURL     = "GITHUB_API_URL"
	EnvLogFile    = "TRAFFIC_LOG_FILE"
)

// DefaultEnvFile is the dotenv file loaded when present.
const DefaultEnvFile = ".env"

// Config holds the settings of a single run.
// Repository and Token are passed through unvalidated. An empty APIURL or
// LogFile leaves the choice of default to the gateway and storage constructors.
type Config struct {
	Repository string
	Token      string
	APIURL     string
	LogFile    string
}

// Load reads envFile into the process environment, if it exists, and then
// builds a Config from the environment. Variables already set in the
// environment take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	return &Config{
		Repository: os.Getenv(EnvRepository),
		Token:      os.Getenv(EnvToken),
		APIURL:     os.Getenv(EnvAPIURL),
		LogFile:    os.Getenv(EnvLogFile),
	}, nil
}
