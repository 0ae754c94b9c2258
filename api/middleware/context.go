package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/surplusmarket-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxRole    contextKey = "actor_role"
	ctxStoreID contextKey = "store_id"
)

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	v, ok := ctx.Value(ctxUserID).(uuid.UUID)
	return v, ok && v != uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.ActorRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.ActorRole); ok {
		return v
	}
	return ""
}

// StoreIDFromContext returns the merchant's store; customers and admins carry none.
func StoreIDFromContext(ctx context.Context) *uuid.UUID {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxStoreID).(uuid.UUID); ok && v != uuid.Nil {
		return &v
	}
	return nil
}

// WithIdentity seeds the caller identity. Tests use it in place of a signed token.
func WithIdentity(ctx context.Context, userID uuid.UUID, role enums.ActorRole, storeID *uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxRole, role)
	if storeID != nil {
		ctx = context.WithValue(ctx, ctxStoreID, *storeID)
	}
	return ctx
}
