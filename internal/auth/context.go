package auth

import (
	"context"

	"github.com/ticketdesk/ticketdesk/internal/model"
)

type callerKey struct{}

// ContextWithAuth attaches the verified token claims to ctx.
func ContextWithAuth(ctx context.Context, caller *model.AuthContext) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// AuthFromContext returns the claims stored by ContextWithAuth. It is nil on
// public routes, where no token was required.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	caller, _ := ctx.Value(callerKey{}).(*model.AuthContext)
	return caller
}

// MustAuthFromContext is for handlers mounted behind the Auth middleware.
// A missing caller there is a routing bug, so it panics and Recoverer turns
// the request into a 500.
func MustAuthFromContext(ctx context.Context) *model.AuthContext {
	caller := AuthFromContext(ctx)
	if caller == nil {
		panic("auth: handler reached without a verified caller")
	}
	return caller
}

// UserIDFromContext returns the caller's user id, or "" on public routes.
func UserIDFromContext(ctx context.Context) string {
	if caller := AuthFromContext(ctx); caller != nil {
		return caller.UserID
	}
	return ""
}
