package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_AddsRequestFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-9")
	FromContext(ctx, base).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "req-1", fields["request_id"])
	require.Equal(t, "user-9", fields["user_id"])
}

func TestFromContext_NoFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	FromContext(context.Background(), base).Info("plain")

	require.Len(t, logs.All(), 1)
	require.Empty(t, logs.All()[0].ContextMap())
}

func TestFromContext_NilLoggerIsNop(t *testing.T) {
	require.NotPanics(t, func() {
		FromContext(context.Background(), nil).Info("dropped")
	})
}

func TestRequestIDFrom(t *testing.T) {
	require.Equal(t, "", RequestIDFrom(context.Background()))
	require.Equal(t, "abc", RequestIDFrom(WithRequestID(context.Background(), "abc")))
}

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		l, err := New(env)
		require.NoError(t, err)
		require.NotNil(t, l)
	}
}
