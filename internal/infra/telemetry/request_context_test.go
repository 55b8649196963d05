package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureRequestMeta_GeneratesID(t *testing.T) {
	ctx, meta := EnsureRequestMeta(context.Background(), "sess-1")
	require.NotEmpty(t, meta.RequestID)
	require.Equal(t, "sess-1", meta.SessionID)

	got, ok := RequestMetaFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, meta, got)
}

func TestEnsureRequestMeta_PreservesExisting(t *testing.T) {
	ctx := WithRequestMeta(context.Background(), RequestMeta{RequestID: "req-123"})
	_, meta := EnsureRequestMeta(ctx, "sess-1")
	require.Equal(t, "req-123", meta.RequestID)
}

func TestRequestFields(t *testing.T) {
	fields := RequestFields(RequestMeta{RequestID: "req-1", SessionID: "sess-1"})
	require.Len(t, fields, 2)

	fields = RequestFields(RequestMeta{})
	require.Empty(t, fields)
}
