package services

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	accountIDKey   contextKey = "account_id"
	accountKindKey contextKey = "account_kind"
)

// WithAccountContext stores the authenticated principal on the context.
func WithAccountContext(ctx context.Context, accountID uuid.UUID, kind string) context.Context {
	ctx = context.WithValue(ctx, accountIDKey, accountID)
	return context.WithValue(ctx, accountKindKey, kind)
}

// AccountIDFromContext returns the authenticated account id, if any.
func AccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(accountIDKey).(uuid.UUID)
	return id, ok
}

// AccountKindFromContext returns the authenticated account kind, if any.
func AccountKindFromContext(ctx context.Context) (string, bool) {
	kind, ok := ctx.Value(accountKindKey).(string)
	return kind, ok
}
