package palisade

import (
	"context"

	"github.com/mapfort/palisade/access"
	"github.com/mapfort/palisade/catalog"
)

// Add inserts a new object into the catalog. Views are unwrapped first
// so the backend never persists enforcement copies.
func (e *Engine) Add(ctx context.Context, obj catalog.Object) error {
	return e.storage.Add(ctx, Unwrap(obj))
}

// Save persists changes to an object. Saving through a view the caller
// cannot write to is answered per the view's policy: silently ignored
// for response hide, refused with an authorization error for response
// challenge.
func (e *Engine) Save(ctx context.Context, obj catalog.Object) error {
	skip, err := e.writeGuard(ctx, obj)
	if err != nil || skip {
		return err
	}

	return e.storage.Save(ctx, Unwrap(obj))
}

// Remove deletes an object from the catalog, subject to the same write
// guard as Save.
func (e *Engine) Remove(ctx context.Context, obj catalog.Object) error {
	skip, err := e.writeGuard(ctx, obj)
	if err != nil || skip {
		return err
	}

	return e.storage.Remove(ctx, Unwrap(obj))
}

// Detach returns a modifiable copy of the original object, decoupled
// from both the view chain and the backend's internal state.
func (e *Engine) Detach(ctx context.Context, obj catalog.Object) (catalog.Object, error) {
	return e.storage.Detach(ctx, Unwrap(obj))
}

// Validate checks an object against the backend's consistency rules.
// Views are unwrapped so validation sees real field values, not the
// filtered ones.
func (e *Engine) Validate(ctx context.Context, obj catalog.Object, isNew bool) error {
	return e.storage.Validate(ctx, Unwrap(obj), isNew)
}

// writeGuard decides how a mutation through obj is answered when obj is
// a view below read-write level.
func (e *Engine) writeGuard(ctx context.Context, obj catalog.Object) (skip bool, err error) {
	r := catalog.RestrictionOf(obj)
	if r == nil || r.Policy.CanWrite() {
		return false, nil
	}

	if r.Policy.Response == access.ResponseChallenge {
		return false, e.unauthorized(ctx, obj.ObjectName())
	}

	e.logger.Debug("write through read-only view ignored",
		"kind", obj.ObjectKind(), "name", obj.ObjectName())

	return true, nil
}
