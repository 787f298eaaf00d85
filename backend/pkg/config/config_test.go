package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingPasswordIsFatal(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://localhost:7687")
	t.Setenv("NEO4J_USER", "neo4j")
	t.Setenv("NEO4J_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NEO4J_PASSWORD")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("PORT", "")
	t.Setenv("NEO4J_URI", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4jURI)
	assert.Equal(t, "neo4j", cfg.Neo4jUser)
	assert.Equal(t, "secret", cfg.Neo4jPassword)
	assert.Equal(t, 10, cfg.MaxConnectionPoolSize)
	assert.Equal(t, 30*time.Second, cfg.ConnectionAcquisitionTimeout)
	assert.Equal(t, 15*time.Second, cfg.MaxTransactionRetryTime)
}

func TestValidateBackfill(t *testing.T) {
	cfg := &Config{FirestoreProjectID: "p"}
	assert.Error(t, cfg.ValidateBackfill())

	cfg.FirestoreAccessToken = "t"
	assert.NoError(t, cfg.ValidateBackfill())
}
