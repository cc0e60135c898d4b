// Package config loads process configuration from the environment, with an
// optional .env file for local development. Runtime parameters (symbol,
// interval, initial balance) are CLI flags, not config.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the credentials and switches the bot needs at startup.
type Config struct {
	// Binance API credentials.
	APIKey    string
	APISecret string

	// Testnet routes all exchange calls to the Binance spot testnet.
	Testnet bool

	// GeminiAPIKey enables the LLM fallback in chat mode. Optional.
	GeminiAPIKey string
}

// Load reads configuration from the environment, consulting ./.env first
// for any variables not already set.
func Load() (Config, error) {
	loadDotEnvIfPresent(".env")

	cfg := Config{
		APIKey:       os.Getenv("BINANCE_API_KEY"),
		APISecret:    os.Getenv("BINANCE_API_SECRET"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}

	if raw := os.Getenv("BINANCE_TESTNET"); raw != "" {
		testnet, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid BINANCE_TESTNET value %q: %w", raw, err)
		}
		cfg.Testnet = testnet
	} else {
		// The ported system always traded against the testnet.
		cfg.Testnet = true
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET are required")
	}
	return nil
}
