package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// Environment variables that override file values.
const (
	EnvLLMAPIKey = "DASAF_LLM_API_KEY"
	EnvLLMURL    = "DASAF_LLM_URL"
	EnvLLMModel  = "DASAF_LLM_MODEL"
)

// loadEnvFile loads the first .env/.env.local file found in the working
// directory. Variables already set in the process environment win. It
// returns the file that was loaded, or "" when none exists.
func loadEnvFile() (string, error) {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return path, fmt.Errorf("parse %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv(EnvLLMAPIKey); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(EnvLLMURL); v != "" {
		c.LLM.URL = v
	}
	if v := os.Getenv(EnvLLMModel); v != "" {
		c.LLM.Model = v
	}
}
