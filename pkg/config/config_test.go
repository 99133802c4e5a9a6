package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"LLM_GATEWAY_URL", "LLM_MODEL", "LLM_TIMEOUT_SECONDS",
		"AGENT_MAX_RETRIES", "GUARDRAIL_MAX_LENGTH", "AUDIT_LIGHTWEIGHT_BELOW",
		"QDRANT_COLLECTION",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, DefaultGatewayURL, cfg.GatewayURL)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultMaxResponseLength, cfg.MaxResponseLength)
	assert.Equal(t, DefaultLightweightBelow, cfg.AuditLightweightBelow)
	assert.Equal(t, "product-knowledge", cfg.QdrantCollection)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LLM_GATEWAY_URL", "http://gateway:9000")
	t.Setenv("LLM_MODEL", "test-model")
	t.Setenv("LLM_TIMEOUT_SECONDS", "30")
	t.Setenv("AGENT_MAX_RETRIES", "5")
	t.Setenv("GUARDRAIL_MAX_LENGTH", "500")
	t.Setenv("AUDIT_LIGHTWEIGHT_BELOW", "100")

	cfg := FromEnv()

	assert.Equal(t, "http://gateway:9000", cfg.GatewayURL)
	assert.Equal(t, "test-model", cfg.Model)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 500, cfg.MaxResponseLength)
	assert.Equal(t, 100, cfg.AuditLightweightBelow)
}

func TestFromEnvIgnoresMalformedInts(t *testing.T) {
	t.Setenv("AGENT_MAX_RETRIES", "many")

	cfg := FromEnv()
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
}
