// Package middleware provides HTTP authorization middleware over the
// secured catalog engine.
package middleware

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/xraph/forge"

	"github.com/mapfort/palisade"
	"github.com/mapfort/palisade/access"
	"github.com/mapfort/palisade/catalog"
)

// PrincipalFunc resolves the requesting principal from a request. It
// returns nil for anonymous requests.
type PrincipalFunc func(ctx forge.Context) *access.Principal

// Guard builds authorization middlewares bound to an engine and a
// principal resolver.
type Guard struct {
	eng       *palisade.Engine
	principal PrincipalFunc
}

// NewGuard creates a Guard. A nil PrincipalFunc falls back to the
// Forge user ID with no authorities.
func NewGuard(eng *palisade.Engine, fn PrincipalFunc) *Guard {
	if fn == nil {
		fn = defaultPrincipal
	}
	return &Guard{eng: eng, principal: fn}
}

// RequireVisible admits the request only when the catalog object of the
// given kind, addressed by the "name" route parameter, is visible to
// the requesting principal. Hidden and missing objects both answer 404.
func (g *Guard) RequireVisible(kind catalog.Kind) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			rc := g.requestContext(ctx)
			if _, err := g.eng.Get(rc, kind, catalog.NameIs(ctx.Param("name"))); err != nil {
				return deny(ctx, err)
			}
			return next(ctx)
		}
	}
}

// RequireWritable admits the request only when the requesting principal
// may write the catalog object of the given kind addressed by the
// "name" route parameter.
func (g *Guard) RequireWritable(kind catalog.Kind) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			rc := g.requestContext(ctx)
			obj, err := g.eng.Get(rc, kind, catalog.NameIs(ctx.Param("name")))
			if err != nil {
				return deny(ctx, err)
			}
			if r := catalog.RestrictionOf(obj); r != nil && !r.Policy.CanWrite() {
				return respond(ctx, 403, "access denied")
			}
			return next(ctx)
		}
	}
}

// requestContext carries the resolved principal into the engine; the
// request kind rides along so capability requests disambiguate mixed
// mode the same way they do in protocol handlers.
func (g *Guard) requestContext(ctx forge.Context) context.Context {
	rc := ctx.Context()
	if p := g.principal(ctx); p != nil {
		rc = palisade.WithPrincipal(rc, p)
	}
	if kind := ctx.Param("request"); kind != "" {
		rc = palisade.WithRequestKind(rc, kind)
	}
	return rc
}

func defaultPrincipal(ctx forge.Context) *access.Principal {
	if userID := forge.UserIDFromContext(ctx.Context()); userID != "" {
		return &access.Principal{Name: userID}
	}
	return nil
}

// deny maps an engine error onto the HTTP response: missing and hidden
// objects are indistinguishable 404s, authentication challenges are
// 401, refusals are 403.
func deny(ctx forge.Context, err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return respond(ctx, 404, "not found")
	case errors.Is(err, palisade.ErrUnauthenticated):
		return respond(ctx, 401, "authentication required")
	case errors.Is(err, palisade.ErrAccessDenied):
		return respond(ctx, 403, "access denied")
	default:
		return err
	}
}

func respond(ctx forge.Context, status int, message string) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(status)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": message})
}
