package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFallsBackToNop(t *testing.T) {
	log := Logger(context.Background())
	require.NotNil(t, log)

	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}

func TestWithRequestLogger(t *testing.T) {
	obs, logs := observer.New(zap.InfoLevel)
	base := zap.New(obs)

	ctx := WithRequestLogger(context.Background(), base, "req-1")
	log, ok := FromContext(ctx)
	require.True(t, ok)

	log.Info("hello")
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0].ContextMap()["req"])
}
