package palisade

import (
	"context"

	"github.com/mapfort/palisade/access"
)

type contextKey int

const (
	ctxKeyPrincipal contextKey = iota
	ctxKeyAdminRequest
	ctxKeyRequestKind
)

// WithPrincipal returns a context carrying the requesting principal.
// Contexts without a principal are treated as anonymous requests.
func WithPrincipal(ctx context.Context, p *access.Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// WithAdminRequest marks the context as an administrative console
// request; visibility then additionally requires workspace
// administration rights.
func WithAdminRequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKeyAdminRequest, true)
}

// WithRequestKind returns a context carrying the protocol request kind
// (e.g. "GetCapabilities"), which influences mixed-mode disambiguation.
func WithRequestKind(ctx context.Context, kind string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestKind, kind)
}

func principalFromContext(ctx context.Context) *access.Principal {
	v, ok := ctx.Value(ctxKeyPrincipal).(*access.Principal)
	if !ok {
		return nil
	}
	return v
}

func adminRequestFromContext(ctx context.Context) bool {
	v, ok := ctx.Value(ctxKeyAdminRequest).(bool)
	return ok && v
}

func requestKindFromContext(ctx context.Context) string {
	v, ok := ctx.Value(ctxKeyRequestKind).(string)
	if !ok {
		return ""
	}
	return v
}
