package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Ingest.ChunkSize)
	assert.Equal(t, 200, cfg.Ingest.ChunkOverlap)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 1536, cfg.Embedding.Dimension)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 10, cfg.Worker.Concurrency)
	assert.Equal(t, 10*time.Minute, cfg.Ingest.TaskTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RETRIEVAL_TOP_K", "8")
	t.Setenv("LLM_TIMEOUT", "15s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
}

func TestLoadRejectsMalformedInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{URL: "postgres://localhost/rag"},
		LLM:      LLMConfig{OpenAIKey: "sk-test"},
		Ingest:   IngestConfig{ChunkSize: 1000, ChunkOverlap: 200},
	}
	assert.NoError(t, cfg.Validate())

	cfg.Database.URL = ""
	assert.Error(t, cfg.Validate())

	cfg.Database.URL = "postgres://localhost/rag"
	cfg.Ingest.ChunkOverlap = 1000
	assert.Error(t, cfg.Validate())
}
