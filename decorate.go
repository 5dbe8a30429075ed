package palisade

import (
	"context"
	"fmt"

	"github.com/mapfort/palisade/access"
	"github.com/mapfort/palisade/catalog"
)

// Secure returns the view of obj appropriate for the principal carried
// by ctx: obj itself when unrestricted, nil when the caller must not
// learn the object exists, or a restricted copy otherwise. Securing an
// already-restricted view is a no-op.
func (e *Engine) Secure(ctx context.Context, obj catalog.Object) (catalog.Object, error) {
	switch o := obj.(type) {
	case nil:
		return nil, nil
	case *catalog.Workspace:
		v, err := e.secureWorkspace(ctx, o)
		if v == nil || err != nil {
			return nil, err
		}
		return v, nil
	case *catalog.Namespace:
		v, err := e.secureNamespace(ctx, o)
		if v == nil || err != nil {
			return nil, err
		}
		return v, nil
	case *catalog.Store:
		v, err := e.secureStore(ctx, o)
		if v == nil || err != nil {
			return nil, err
		}
		return v, nil
	case *catalog.Resource:
		v, err := e.secureResource(ctx, o)
		if v == nil || err != nil {
			return nil, err
		}
		return v, nil
	case *catalog.Layer:
		v, err := e.secureLayer(ctx, o)
		if v == nil || err != nil {
			return nil, err
		}
		return v, nil
	case *catalog.LayerGroup:
		v, err := e.secureLayerGroup(ctx, o, 0)
		if v == nil || err != nil {
			return nil, err
		}
		return v, nil
	case *catalog.Style:
		v, err := e.secureStyle(ctx, o)
		if v == nil || err != nil {
			return nil, err
		}
		return v, nil
	case *catalog.Map:
		// Maps are outside the authorization model.
		return o, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownObject, obj)
	}
}

func (e *Engine) secureWorkspace(ctx context.Context, ws *catalog.Workspace) (*catalog.Workspace, error) {
	if ws == nil {
		return nil, nil
	}

	policy, err := e.ResolvePolicy(ctx, ws)
	if err != nil {
		return nil, err
	}
	if policy.Level == access.LevelHidden {
		return nil, nil
	}

	// Workspaces carry no content of their own, so there is nothing
	// a view would need to enforce.
	return ws, nil
}

func (e *Engine) secureNamespace(ctx context.Context, ns *catalog.Namespace) (*catalog.Namespace, error) {
	if ns == nil {
		return nil, nil
	}

	policy, err := e.ResolvePolicy(ctx, ns)
	if err != nil {
		return nil, err
	}
	if policy.Level == access.LevelHidden {
		return nil, nil
	}

	return ns, nil
}

func (e *Engine) secureStore(ctx context.Context, st *catalog.Store) (*catalog.Store, error) {
	if st == nil || st.Restricted != nil {
		return st, nil
	}

	policy, err := e.ResolvePolicy(ctx, st)
	if err != nil {
		return nil, err
	}

	switch {
	case policy.Level == access.LevelHidden:
		return nil, nil
	case policy.Level == access.LevelReadWrite:
		return st, nil
	case policy.Level == access.LevelReadOnly && st.Kind != catalog.StoreData:
		// Coverage and WMS stores expose no writable content, so
		// read-only needs no enforcement.
		return st, nil
	default:
		view := *st
		view.Restricted = &catalog.Restriction{Policy: policy, Origin: st}
		return &view, nil
	}
}

func (e *Engine) secureResource(ctx context.Context, r *catalog.Resource) (*catalog.Resource, error) {
	if r == nil || r.Restricted != nil {
		return r, nil
	}

	policy, err := e.ResolvePolicy(ctx, r)
	if err != nil {
		return nil, err
	}

	switch {
	case policy.Level == access.LevelHidden:
		return nil, nil
	case policy.Level == access.LevelReadWrite && policy.Limits == nil:
		return r, nil
	default:
		// Content filters and write restrictions are enforced by the
		// view, even at read-write level.
		view := *r
		view.Restricted = &catalog.Restriction{Policy: policy, Origin: r}
		return &view, nil
	}
}

func (e *Engine) secureLayer(ctx context.Context, l *catalog.Layer) (*catalog.Layer, error) {
	if l == nil || l.Restricted != nil {
		return l, nil
	}

	policy, err := e.ResolvePolicy(ctx, l)
	if err != nil {
		return nil, err
	}

	switch {
	case policy.Level == access.LevelHidden:
		return nil, nil
	case policy.Level == access.LevelReadWrite && policy.Limits == nil:
		return l, nil
	default:
		view := *l
		view.Restricted = &catalog.Restriction{Policy: policy, Origin: l}
		return &view, nil
	}
}

func (e *Engine) secureStyle(ctx context.Context, st *catalog.Style) (*catalog.Style, error) {
	if st == nil {
		return nil, nil
	}

	policy, err := e.ResolvePolicy(ctx, st)
	if err != nil {
		return nil, err
	}
	if policy.Level == access.LevelHidden {
		return nil, nil
	}

	// Styles are either visible or not; no view is needed.
	return st, nil
}

// secureLayerGroup checks the group container and every member. The
// group is wrapped when anything about its composition changed: a
// member was dropped or substituted by a view, or the EO root layer
// was. A hidden EO root hides the whole group.
func (e *Engine) secureLayerGroup(ctx context.Context, g *catalog.LayerGroup, depth int) (*catalog.LayerGroup, error) {
	if g == nil || g.Restricted != nil {
		return g, nil
	}
	if depth > e.config.MaxGroupDepth {
		return nil, fmt.Errorf("%w: %s", ErrGroupDepthExceeded, g.Name)
	}
	if e.isAdmin(ctx) {
		return g, nil
	}

	own, err := e.groupOwnPolicy(ctx, g)
	if err != nil {
		return nil, err
	}
	if own.Level == access.LevelHidden {
		return nil, nil
	}

	needsWrap := false

	root := g.RootLayer
	if g.Mode == catalog.GroupEarthObservation && g.RootLayer != nil {
		checked, err := e.secureLayer(ctx, g.RootLayer)
		if err != nil {
			return nil, err
		}
		if checked == nil {
			return nil, nil
		}
		if checked != g.RootLayer {
			needsWrap = true
			root = checked
		}
	}

	members := make([]catalog.Object, 0, len(g.Members))
	for _, m := range g.Members {
		var checked catalog.Object
		switch mm := m.(type) {
		case *catalog.Layer:
			l, err := e.secureLayer(ctx, mm)
			if err != nil {
				return nil, err
			}
			if l != nil {
				checked = l
			}
		case *catalog.LayerGroup:
			sub, err := e.secureLayerGroup(ctx, mm, depth+1)
			if err != nil {
				return nil, err
			}
			if sub != nil {
				checked = sub
			}
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnknownObject, m)
		}

		if checked == nil {
			needsWrap = true
			continue
		}
		if checked != m {
			needsWrap = true
		}
		members = append(members, checked)
	}

	if !needsWrap {
		return g, nil
	}

	view := *g
	view.RootLayer = root
	view.Members = members
	view.Restricted = &catalog.Restriction{Policy: own, Origin: g}

	return &view, nil
}

// filterVisible maps check over items, preserving order and dropping
// entries the caller must not see. A nil result from check drops the
// entry; any error aborts the whole filtering.
func filterVisible[T comparable](items []T, check func(T) (T, error)) ([]T, error) {
	var zero T

	out := make([]T, 0, len(items))
	for _, item := range items {
		v, err := check(item)
		if err != nil {
			return nil, err
		}
		if v == zero {
			continue
		}
		out = append(out, v)
	}

	return out, nil
}

// ReadFilter returns the content read filter in force for obj. Original
// objects read unfiltered; metadata-level views read nothing.
func ReadFilter(obj catalog.Object) access.Filter {
	r := catalog.RestrictionOf(obj)
	if r == nil {
		return access.Include
	}
	if r.Policy.Level == access.LevelMetadata {
		return access.Exclude
	}
	if dl, ok := r.Policy.Limits.(access.DataLimits); ok && dl.ReadFilter() != nil {
		return dl.ReadFilter()
	}

	return access.Include
}

// WriteFilter returns the content write filter in force for obj.
// Views below read-write level write nothing.
func WriteFilter(obj catalog.Object) access.Filter {
	r := catalog.RestrictionOf(obj)
	if r == nil {
		return access.Include
	}
	if !r.Policy.CanWrite() {
		return access.Exclude
	}
	if vl, ok := r.Policy.Limits.(*access.VectorLimits); ok && vl.Write != nil {
		return vl.Write
	}

	return access.Include
}
