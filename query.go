package palisade

import (
	"context"

	"github.com/mapfort/palisade/access"
	"github.com/mapfort/palisade/catalog"
)

// securityFilter conjoins the caller's predicate with a visibility
// check for the requesting principal. The visibility check runs in
// process against fully loaded objects; it cannot be pushed down to
// the storage backend, so pagination and counting pay for policy
// resolution on every candidate.
//
// Administrators and the exempt kinds (styles and maps) skip the check
// entirely. Resolution failures are recorded in errOut and surfaced by
// the calling query after evaluation.
func (e *Engine) securityFilter(ctx context.Context, kind catalog.Kind, pred catalog.Predicate, errOut *error) catalog.Predicate {
	if e.isAdmin(ctx) || kind == catalog.KindStyle || kind == catalog.KindMap {
		return pred
	}

	visible := func(obj catalog.Object) bool {
		policy, err := e.ResolvePolicy(ctx, obj)
		if err != nil {
			if *errOut == nil {
				*errOut = err
			}
			return false
		}

		return policy.Level != access.LevelHidden
	}

	return catalog.And(pred, visible)
}

// List returns the objects of the given kind matching the predicate
// and visible to the caller, decorated as needed, in storage order.
// Pagination applies after security filtering.
func (e *Engine) List(ctx context.Context, kind catalog.Kind, pred catalog.Predicate, opts catalog.ListOptions) ([]catalog.Object, error) {
	var resolveErr error

	items, err := e.storage.List(ctx, kind, e.securityFilter(ctx, kind, pred, &resolveErr), opts)
	if err != nil {
		return nil, err
	}
	if resolveErr != nil {
		return nil, resolveErr
	}

	return filterVisible(items, func(obj catalog.Object) (catalog.Object, error) {
		return e.Secure(ctx, obj)
	})
}

// Count returns the number of objects of the given kind matching the
// predicate and visible to the caller.
func (e *Engine) Count(ctx context.Context, kind catalog.Kind, pred catalog.Predicate) (int, error) {
	var resolveErr error

	n, err := e.storage.Count(ctx, kind, e.securityFilter(ctx, kind, pred, &resolveErr))
	if err != nil {
		return 0, err
	}
	if resolveErr != nil {
		return 0, resolveErr
	}

	return n, nil
}

// Get returns the first object of the given kind matching the
// predicate and visible to the caller, decorated as needed.
func (e *Engine) Get(ctx context.Context, kind catalog.Kind, pred catalog.Predicate) (catalog.Object, error) {
	var resolveErr error

	obj, err := e.storage.Get(ctx, kind, e.securityFilter(ctx, kind, pred, &resolveErr))
	if err != nil {
		return nil, err
	}
	if resolveErr != nil {
		return nil, resolveErr
	}

	v, err := e.Secure(ctx, obj)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(kind, obj.ObjectName())
	}

	return v, nil
}
