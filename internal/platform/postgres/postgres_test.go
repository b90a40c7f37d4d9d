package postgres

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_EmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), "  ", nil, DefaultPool)
	require.Error(t, err)
}

func TestConnectFromEnv_NoDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	db, cleanup := ConnectFromEnv(context.Background(), logger)
	cleanup()
	assert.Nil(t, db)
	assert.Contains(t, buf.String(), "POSTGRES_DSN not set")
}

func TestGormLogger_WritesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewGormLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	logger.Error(context.Background(), "insert failed: %v", errors.New("boom"))
	assert.Contains(t, buf.String(), `"component":"gorm"`)
	assert.Contains(t, buf.String(), "boom")
}
