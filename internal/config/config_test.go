package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRejectsMissingCredentials(t *testing.T) {
	require.Error(t, validate(Config{APIKey: "key"}))
	require.Error(t, validate(Config{APISecret: "secret"}))
	require.Error(t, validate(Config{}))
}

func TestValidateAcceptsCredentials(t *testing.T) {
	cfg := Config{APIKey: "key", APISecret: "secret"}
	require.NoError(t, validate(cfg))
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "k")
	t.Setenv("BINANCE_API_SECRET", "s")
	t.Setenv("BINANCE_TESTNET", "false")
	t.Setenv("GEMINI_API_KEY", "g")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "k", cfg.APIKey)
	require.Equal(t, "s", cfg.APISecret)
	require.False(t, cfg.Testnet)
	require.Equal(t, "g", cfg.GeminiAPIKey)
}

func TestLoadDefaultsToTestnet(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "k")
	t.Setenv("BINANCE_API_SECRET", "s")
	t.Setenv("BINANCE_TESTNET", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Testnet)
}

func TestLoadRejectsBadTestnetValue(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "k")
	t.Setenv("BINANCE_API_SECRET", "s")
	t.Setenv("BINANCE_TESTNET", "maybe")

	_, err := Load()
	require.Error(t, err)
}
