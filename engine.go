package palisade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mapfort/palisade/catalog"
	"github.com/mapfort/palisade/id"
)

// Engine is the secured catalog. It wraps a raw storage backend and an
// access manager, decorating every object that passes through it with
// the policy resolved for the requesting principal.
//
// The engine holds no per-request state; a single Engine serves all
// principals concurrently.
type Engine struct {
	storage catalog.Storage
	access  AccessManager
	logger  *slog.Logger
	config  Config
}

// NewEngine creates a new secured catalog engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.storage == nil {
		return nil, errors.New("palisade: storage is required")
	}
	if e.access == nil {
		return nil, errors.New("palisade: access manager is required")
	}

	// Fill zero-valued config fields so WithConfig callers only need
	// to set what they change.
	def := DefaultConfig()
	if e.config.AdminAuthority == "" {
		e.config.AdminAuthority = def.AdminAuthority
	}
	if e.config.CapabilitiesRequest == "" {
		e.config.CapabilitiesRequest = def.CapabilitiesRequest
	}
	if e.config.MaxGroupDepth <= 0 {
		e.config.MaxGroupDepth = def.MaxGroupDepth
	}

	return e, nil
}

// Storage returns the underlying raw catalog. Objects obtained from it
// bypass all authorization; handle with care.
func (e *Engine) Storage() catalog.Storage { return e.storage }

// notFound converts a hidden object into the same error a missing one
// produces, so callers cannot probe for existence.
func notFound(kind catalog.Kind, name string) error {
	return fmt.Errorf("%s %q: %w", kind, name, catalog.ErrNotFound)
}

// ── Workspaces ──

// Workspaces returns the workspaces visible to the caller, in storage
// order.
func (e *Engine) Workspaces(ctx context.Context) ([]*catalog.Workspace, error) {
	items, err := e.storage.Workspaces(ctx)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(w *catalog.Workspace) (*catalog.Workspace, error) {
		return e.secureWorkspace(ctx, w)
	})
}

// Workspace returns the workspace with the given ID if visible.
func (e *Engine) Workspace(ctx context.Context, wid id.WorkspaceID) (*catalog.Workspace, error) {
	ws, err := e.storage.Workspace(ctx, wid)
	if err != nil {
		return nil, err
	}

	v, err := e.secureWorkspace(ctx, ws)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindWorkspace, wid.String())
	}

	return v, nil
}

// WorkspaceByName returns the named workspace if visible.
func (e *Engine) WorkspaceByName(ctx context.Context, name string) (*catalog.Workspace, error) {
	ws, err := e.storage.WorkspaceByName(ctx, name)
	if err != nil {
		return nil, err
	}

	v, err := e.secureWorkspace(ctx, ws)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindWorkspace, name)
	}

	return v, nil
}

// ── Namespaces ──

// Namespaces returns the namespaces visible to the caller.
func (e *Engine) Namespaces(ctx context.Context) ([]*catalog.Namespace, error) {
	items, err := e.storage.Namespaces(ctx)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(n *catalog.Namespace) (*catalog.Namespace, error) {
		return e.secureNamespace(ctx, n)
	})
}

// Namespace returns the namespace with the given ID if visible.
func (e *Engine) Namespace(ctx context.Context, nid id.NamespaceID) (*catalog.Namespace, error) {
	ns, err := e.storage.Namespace(ctx, nid)
	if err != nil {
		return nil, err
	}

	v, err := e.secureNamespace(ctx, ns)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindNamespace, nid.String())
	}

	return v, nil
}

// NamespaceByPrefix returns the namespace with the given prefix if
// visible.
func (e *Engine) NamespaceByPrefix(ctx context.Context, prefix string) (*catalog.Namespace, error) {
	ns, err := e.storage.NamespaceByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	v, err := e.secureNamespace(ctx, ns)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindNamespace, prefix)
	}

	return v, nil
}

// ── Stores ──

// Stores returns the stores visible to the caller, decorated as needed.
func (e *Engine) Stores(ctx context.Context) ([]*catalog.Store, error) {
	items, err := e.storage.Stores(ctx)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(s *catalog.Store) (*catalog.Store, error) {
		return e.secureStore(ctx, s)
	})
}

// Store returns the store with the given ID if visible.
func (e *Engine) Store(ctx context.Context, sid id.StoreID) (*catalog.Store, error) {
	st, err := e.storage.Store(ctx, sid)
	if err != nil {
		return nil, err
	}

	v, err := e.secureStore(ctx, st)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindStore, sid.String())
	}

	return v, nil
}

// StoreByName returns the named store within a workspace if visible.
func (e *Engine) StoreByName(ctx context.Context, workspace, name string) (*catalog.Store, error) {
	st, err := e.storage.StoreByName(ctx, workspace, name)
	if err != nil {
		return nil, err
	}

	v, err := e.secureStore(ctx, st)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindStore, name)
	}

	return v, nil
}

// StoresByWorkspace returns the visible stores of a workspace.
func (e *Engine) StoresByWorkspace(ctx context.Context, workspace string) ([]*catalog.Store, error) {
	items, err := e.storage.StoresByWorkspace(ctx, workspace)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(s *catalog.Store) (*catalog.Store, error) {
		return e.secureStore(ctx, s)
	})
}

// ── Resources ──

// Resources returns the resources visible to the caller, decorated as
// needed.
func (e *Engine) Resources(ctx context.Context) ([]*catalog.Resource, error) {
	items, err := e.storage.Resources(ctx)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(r *catalog.Resource) (*catalog.Resource, error) {
		return e.secureResource(ctx, r)
	})
}

// Resource returns the resource with the given ID if visible.
func (e *Engine) Resource(ctx context.Context, rid id.ResourceID) (*catalog.Resource, error) {
	r, err := e.storage.Resource(ctx, rid)
	if err != nil {
		return nil, err
	}

	v, err := e.secureResource(ctx, r)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindResource, rid.String())
	}

	return v, nil
}

// ResourceByName returns the resource with the given namespace prefix
// and local name if visible.
func (e *Engine) ResourceByName(ctx context.Context, prefix, name string) (*catalog.Resource, error) {
	r, err := e.storage.ResourceByName(ctx, prefix, name)
	if err != nil {
		return nil, err
	}

	v, err := e.secureResource(ctx, r)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindResource, name)
	}

	return v, nil
}

// ResourcesByStore returns the visible resources of a store.
func (e *Engine) ResourcesByStore(ctx context.Context, sid id.StoreID) ([]*catalog.Resource, error) {
	items, err := e.storage.ResourcesByStore(ctx, sid)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(r *catalog.Resource) (*catalog.Resource, error) {
		return e.secureResource(ctx, r)
	})
}

// ResourcesByNamespace returns the visible resources of a namespace.
func (e *Engine) ResourcesByNamespace(ctx context.Context, prefix string) ([]*catalog.Resource, error) {
	items, err := e.storage.ResourcesByNamespace(ctx, prefix)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(r *catalog.Resource) (*catalog.Resource, error) {
		return e.secureResource(ctx, r)
	})
}

// ── Layers ──

// Layers returns the layers visible to the caller, decorated as needed.
func (e *Engine) Layers(ctx context.Context) ([]*catalog.Layer, error) {
	items, err := e.storage.Layers(ctx)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(l *catalog.Layer) (*catalog.Layer, error) {
		return e.secureLayer(ctx, l)
	})
}

// Layer returns the layer with the given ID if visible.
func (e *Engine) Layer(ctx context.Context, lid id.LayerID) (*catalog.Layer, error) {
	l, err := e.storage.Layer(ctx, lid)
	if err != nil {
		return nil, err
	}

	v, err := e.secureLayer(ctx, l)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindLayer, lid.String())
	}

	return v, nil
}

// LayerByName returns the named layer if visible.
func (e *Engine) LayerByName(ctx context.Context, name string) (*catalog.Layer, error) {
	l, err := e.storage.LayerByName(ctx, name)
	if err != nil {
		return nil, err
	}

	v, err := e.secureLayer(ctx, l)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindLayer, name)
	}

	return v, nil
}

// LayersByResource returns the visible layers publishing the given
// resource.
func (e *Engine) LayersByResource(ctx context.Context, r *catalog.Resource) ([]*catalog.Layer, error) {
	items, err := e.storage.Layers(ctx)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(l *catalog.Layer) (*catalog.Layer, error) {
		if l.Resource == nil || l.Resource.ID != r.ID {
			return nil, nil
		}
		return e.secureLayer(ctx, l)
	})
}

// LayersByStyle returns the visible layers associated with the given
// style, either as default or as an alternate.
func (e *Engine) LayersByStyle(ctx context.Context, st *catalog.Style) ([]*catalog.Layer, error) {
	items, err := e.storage.Layers(ctx)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(l *catalog.Layer) (*catalog.Layer, error) {
		if !layerUsesStyle(l, st) {
			return nil, nil
		}
		return e.secureLayer(ctx, l)
	})
}

func layerUsesStyle(l *catalog.Layer, st *catalog.Style) bool {
	if l.DefaultStyle != nil && l.DefaultStyle.ID == st.ID {
		return true
	}
	for _, s := range l.Styles {
		if s != nil && s.ID == st.ID {
			return true
		}
	}

	return false
}

// ── Layer groups ──

// LayerGroups returns the layer groups visible to the caller, with
// hidden members filtered out of each.
func (e *Engine) LayerGroups(ctx context.Context) ([]*catalog.LayerGroup, error) {
	items, err := e.storage.LayerGroups(ctx)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(g *catalog.LayerGroup) (*catalog.LayerGroup, error) {
		return e.secureLayerGroup(ctx, g, 0)
	})
}

// LayerGroup returns the layer group with the given ID if visible.
func (e *Engine) LayerGroup(ctx context.Context, gid id.LayerGroupID) (*catalog.LayerGroup, error) {
	g, err := e.storage.LayerGroup(ctx, gid)
	if err != nil {
		return nil, err
	}

	v, err := e.secureLayerGroup(ctx, g, 0)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindLayerGroup, gid.String())
	}

	return v, nil
}

// LayerGroupByName returns the named layer group if visible; an empty
// workspace addresses global groups.
func (e *Engine) LayerGroupByName(ctx context.Context, workspace, name string) (*catalog.LayerGroup, error) {
	g, err := e.storage.LayerGroupByName(ctx, workspace, name)
	if err != nil {
		return nil, err
	}

	v, err := e.secureLayerGroup(ctx, g, 0)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindLayerGroup, name)
	}

	return v, nil
}

// LayerGroupsByWorkspace returns the visible layer groups of a
// workspace.
func (e *Engine) LayerGroupsByWorkspace(ctx context.Context, workspace string) ([]*catalog.LayerGroup, error) {
	items, err := e.storage.LayerGroupsByWorkspace(ctx, workspace)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(g *catalog.LayerGroup) (*catalog.LayerGroup, error) {
		return e.secureLayerGroup(ctx, g, 0)
	})
}

// ── Styles ──

// Styles returns the styles visible to the caller.
func (e *Engine) Styles(ctx context.Context) ([]*catalog.Style, error) {
	items, err := e.storage.Styles(ctx)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(s *catalog.Style) (*catalog.Style, error) {
		return e.secureStyle(ctx, s)
	})
}

// Style returns the style with the given ID if visible.
func (e *Engine) Style(ctx context.Context, sid id.StyleID) (*catalog.Style, error) {
	st, err := e.storage.Style(ctx, sid)
	if err != nil {
		return nil, err
	}

	v, err := e.secureStyle(ctx, st)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindStyle, sid.String())
	}

	return v, nil
}

// StyleByName returns the named style if visible; an empty workspace
// addresses global styles.
func (e *Engine) StyleByName(ctx context.Context, workspace, name string) (*catalog.Style, error) {
	st, err := e.storage.StyleByName(ctx, workspace, name)
	if err != nil {
		return nil, err
	}

	v, err := e.secureStyle(ctx, st)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, notFound(catalog.KindStyle, name)
	}

	return v, nil
}

// StylesByWorkspace returns the visible styles of a workspace.
func (e *Engine) StylesByWorkspace(ctx context.Context, workspace string) ([]*catalog.Style, error) {
	items, err := e.storage.StylesByWorkspace(ctx, workspace)
	if err != nil {
		return nil, err
	}

	return filterVisible(items, func(s *catalog.Style) (*catalog.Style, error) {
		return e.secureStyle(ctx, s)
	})
}

// ── Maps ──

// Maps returns all maps; maps are outside the authorization model.
func (e *Engine) Maps(ctx context.Context) ([]*catalog.Map, error) {
	return e.storage.Maps(ctx)
}

// Map returns the map with the given ID.
func (e *Engine) Map(ctx context.Context, mid id.MapID) (*catalog.Map, error) {
	return e.storage.Map(ctx, mid)
}

// MapByName returns the named map.
func (e *Engine) MapByName(ctx context.Context, name string) (*catalog.Map, error) {
	return e.storage.MapByName(ctx, name)
}
