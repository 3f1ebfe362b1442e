package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./corpus", cfg.Corpus.Dir)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 20, cfg.Retrieval.SelectorTimeout)
	assert.True(t, cfg.CircuitBreaker.Enabled)
	assert.InDelta(t, 0.6, cfg.CircuitBreaker.ReadyToTripRatio, 1e-9)
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("QUYCHE_CORPUS_DIR", "/data/corpus")
	t.Setenv("SERVER_HOST", "0.0.0.0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "/data/corpus", cfg.Corpus.Dir)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadConfigValues(t *testing.T) {
	viper.Reset()
	t.Setenv("OPENAI_API_KEY", "")
	viper.Set("server.port", 9090)
	viper.Set("log.level", "debug")
	viper.Set("retrieval.top_k", 8)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
}
