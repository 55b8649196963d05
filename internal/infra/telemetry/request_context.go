package telemetry

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type requestContextKey struct{}

// RequestMeta identifies one invocation or resource read in logs.
type RequestMeta struct {
	RequestID string
	SessionID string
}

func (m RequestMeta) IsZero() bool {
	return m.RequestID == "" && m.SessionID == ""
}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	if meta.IsZero() {
		return ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestContextKey{}, meta)
}

func RequestMetaFromContext(ctx context.Context) (RequestMeta, bool) {
	if ctx == nil {
		return RequestMeta{}, false
	}
	meta, ok := ctx.Value(requestContextKey{}).(RequestMeta)
	return meta, ok && !meta.IsZero()
}

// EnsureRequestMeta returns a context carrying request metadata,
// generating a request id when none exists yet.
func EnsureRequestMeta(ctx context.Context, sessionID string) (context.Context, RequestMeta) {
	if ctx == nil {
		ctx = context.Background()
	}
	if meta, ok := RequestMetaFromContext(ctx); ok {
		return ctx, meta
	}
	meta := RequestMeta{
		RequestID: uuid.NewString(),
		SessionID: sessionID,
	}
	return WithRequestMeta(ctx, meta), meta
}

func RequestFields(meta RequestMeta) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if meta.RequestID != "" {
		fields = append(fields, zap.String("request_id", meta.RequestID))
	}
	if meta.SessionID != "" {
		fields = append(fields, zap.String("session_id", meta.SessionID))
	}
	return fields
}
