package config

import (
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestConfig(t *testing.T, vars map[string]string) *Config {
	t.Helper()

	cfg := &Config{}
	require.NoError(t, env.ParseWithOptions(cfg, env.Options{Environment: vars}))
	return cfg
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := parseTestConfig(t, map[string]string{"SERVER_ADDR": ":8080"})

	assert.Equal(t, "gpt-4", cfg.PlannerCfg.Model)
	assert.Equal(t, 8000, cfg.PlannerCfg.ModelMaxTokens)
	assert.Equal(t, 200, cfg.PlannerCfg.SafetyBufferTokens)
	assert.Equal(t, 100, cfg.PlannerCfg.OverlapTokens)
	assert.Equal(t, 5, cfg.PlannerCfg.TopK)
	assert.Equal(t, KnowledgeBackendSQLite, cfg.KnowledgeBaseCfg.Backend)
	assert.Equal(t, "/responses", cfg.LLMConnectorCfg.ResponsesEndpoint)
	assert.Equal(t, "/embeddings", cfg.EmbeddingConnectorCfg.Endpoint)

	require.NoError(t, validateConfig(cfg))
}

func TestServerAddrRequired(t *testing.T) {
	cfg := &Config{}
	err := env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}})
	require.Error(t, err)
}

func TestValidateConfigCollectsAllErrors(t *testing.T) {
	cfg := parseTestConfig(t, map[string]string{
		"SERVER_ADDR":                  ":8080",
		"PLANNER_MODEL_MAX_TOKENS":     "100",
		"PLANNER_SAFETY_BUFFER_TOKENS": "200",
		"PLANNER_TOP_K":                "0",
		"KB_BACKEND":                   "faiss",
		"PLANNER_OVERLAP_TOKENS":       "-1",
	})

	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLANNER_MODEL_MAX_TOKENS")
	assert.Contains(t, err.Error(), "PLANNER_TOP_K")
	assert.Contains(t, err.Error(), "KB_BACKEND")
	assert.Contains(t, err.Error(), "PLANNER_OVERLAP_TOKENS")
}

func TestValidatePostgresBackendNeedsURL(t *testing.T) {
	cfg := parseTestConfig(t, map[string]string{
		"SERVER_ADDR": ":8080",
		"KB_BACKEND":  "postgres",
	})

	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KB_DATABASE_URL")
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.prod", getEnvFile("prod"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}
