package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/aegis-screener/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	cfg := &config.Config{}

	db, err := New(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestNew_BadURL(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{URL: "://not a url", MaxConns: 1}}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	// Skip if DATABASE_URL is not set
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := New(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Greater(t, status.Stats.MaxConns, int32(0))
}
