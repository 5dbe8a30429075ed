// Package memory provides an in-memory implementation of the raw
// catalog storage. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mapfort/palisade/catalog"
	"github.com/mapfort/palisade/id"
)

// Compile-time interface check.
var _ catalog.Storage = (*Store)(nil)

// Store is a thread-safe in-memory catalog. Objects are held and
// returned by reference; callers must treat results as read-only and
// use Detach to obtain modifiable copies.
type Store struct {
	mu sync.RWMutex

	workspaces map[string]*catalog.Workspace
	namespaces map[string]*catalog.Namespace
	stores     map[string]*catalog.Store
	resources  map[string]*catalog.Resource
	layers     map[string]*catalog.Layer
	groups     map[string]*catalog.LayerGroup
	styles     map[string]*catalog.Style
	maps       map[string]*catalog.Map
}

// New creates a new in-memory catalog store.
func New() *Store {
	return &Store{
		workspaces: make(map[string]*catalog.Workspace),
		namespaces: make(map[string]*catalog.Namespace),
		stores:     make(map[string]*catalog.Store),
		resources:  make(map[string]*catalog.Resource),
		layers:     make(map[string]*catalog.Layer),
		groups:     make(map[string]*catalog.LayerGroup),
		styles:     make(map[string]*catalog.Style),
		maps:       make(map[string]*catalog.Map),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Workspaces
// ──────────────────────────────────────────────────

func (s *Store) Workspaces(_ context.Context) ([]*catalog.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(s.workspaces), nil
}

func (s *Store) Workspace(_ context.Context, wid id.WorkspaceID) (*catalog.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[wid.String()]
	if !ok {
		return nil, fmt.Errorf("workspace %s: %w", wid, catalog.ErrNotFound)
	}
	return ws, nil
}

func (s *Store) WorkspaceByName(_ context.Context, name string) (*catalog.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ws := range s.workspaces {
		if ws.Name == name {
			return ws, nil
		}
	}
	return nil, fmt.Errorf("workspace %q: %w", name, catalog.ErrNotFound)
}

// ──────────────────────────────────────────────────
// Namespaces
// ──────────────────────────────────────────────────

func (s *Store) Namespaces(_ context.Context) ([]*catalog.Namespace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*catalog.Namespace, 0, len(s.namespaces))
	for _, ns := range s.namespaces {
		out = append(out, ns)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out, nil
}

func (s *Store) Namespace(_ context.Context, nid id.NamespaceID) (*catalog.Namespace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ns, ok := s.namespaces[nid.String()]
	if !ok {
		return nil, fmt.Errorf("namespace %s: %w", nid, catalog.ErrNotFound)
	}
	return ns, nil
}

func (s *Store) NamespaceByPrefix(_ context.Context, prefix string) (*catalog.Namespace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ns := range s.namespaces {
		if ns.Prefix == prefix {
			return ns, nil
		}
	}
	return nil, fmt.Errorf("namespace %q: %w", prefix, catalog.ErrNotFound)
}

// ──────────────────────────────────────────────────
// Stores
// ──────────────────────────────────────────────────

func (s *Store) Stores(_ context.Context) ([]*catalog.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(s.stores), nil
}

func (s *Store) Store(_ context.Context, sid id.StoreID) (*catalog.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stores[sid.String()]
	if !ok {
		return nil, fmt.Errorf("store %s: %w", sid, catalog.ErrNotFound)
	}
	return st, nil
}

func (s *Store) StoreByName(_ context.Context, workspace, name string) (*catalog.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.stores {
		if st.Name == name && workspaceName(st.Workspace) == workspace {
			return st, nil
		}
	}
	return nil, fmt.Errorf("store %s:%s: %w", workspace, name, catalog.ErrNotFound)
}

func (s *Store) StoresByWorkspace(_ context.Context, workspace string) ([]*catalog.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matching := make(map[string]*catalog.Store)
	for k, st := range s.stores {
		if workspaceName(st.Workspace) == workspace {
			matching[k] = st
		}
	}
	return sortedByName(matching), nil
}

// ──────────────────────────────────────────────────
// Resources
// ──────────────────────────────────────────────────

func (s *Store) Resources(_ context.Context) ([]*catalog.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(s.resources), nil
}

func (s *Store) Resource(_ context.Context, rid id.ResourceID) (*catalog.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resources[rid.String()]
	if !ok {
		return nil, fmt.Errorf("resource %s: %w", rid, catalog.ErrNotFound)
	}
	return r, nil
}

func (s *Store) ResourceByName(_ context.Context, prefix, name string) (*catalog.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.resources {
		if r.Name == name && namespacePrefix(r.Namespace) == prefix {
			return r, nil
		}
	}
	return nil, fmt.Errorf("resource %s:%s: %w", prefix, name, catalog.ErrNotFound)
}

func (s *Store) ResourcesByStore(_ context.Context, sid id.StoreID) ([]*catalog.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matching := make(map[string]*catalog.Resource)
	for k, r := range s.resources {
		if r.Store != nil && r.Store.ID == sid {
			matching[k] = r
		}
	}
	return sortedByName(matching), nil
}

func (s *Store) ResourcesByNamespace(_ context.Context, prefix string) ([]*catalog.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matching := make(map[string]*catalog.Resource)
	for k, r := range s.resources {
		if namespacePrefix(r.Namespace) == prefix {
			matching[k] = r
		}
	}
	return sortedByName(matching), nil
}

// ──────────────────────────────────────────────────
// Layers
// ──────────────────────────────────────────────────

func (s *Store) Layers(_ context.Context) ([]*catalog.Layer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(s.layers), nil
}

func (s *Store) Layer(_ context.Context, lid id.LayerID) (*catalog.Layer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layers[lid.String()]
	if !ok {
		return nil, fmt.Errorf("layer %s: %w", lid, catalog.ErrNotFound)
	}
	return l, nil
}

func (s *Store) LayerByName(_ context.Context, name string) (*catalog.Layer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.layers {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, fmt.Errorf("layer %q: %w", name, catalog.ErrNotFound)
}

// ──────────────────────────────────────────────────
// Layer groups
// ──────────────────────────────────────────────────

func (s *Store) LayerGroups(_ context.Context) ([]*catalog.LayerGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(s.groups), nil
}

func (s *Store) LayerGroup(_ context.Context, gid id.LayerGroupID) (*catalog.LayerGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[gid.String()]
	if !ok {
		return nil, fmt.Errorf("layergroup %s: %w", gid, catalog.ErrNotFound)
	}
	return g, nil
}

func (s *Store) LayerGroupByName(_ context.Context, workspace, name string) (*catalog.LayerGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.Name == name && workspaceName(g.Workspace) == workspace {
			return g, nil
		}
	}
	return nil, fmt.Errorf("layergroup %s:%s: %w", workspace, name, catalog.ErrNotFound)
}

func (s *Store) LayerGroupsByWorkspace(_ context.Context, workspace string) ([]*catalog.LayerGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matching := make(map[string]*catalog.LayerGroup)
	for k, g := range s.groups {
		if workspaceName(g.Workspace) == workspace {
			matching[k] = g
		}
	}
	return sortedByName(matching), nil
}

// ──────────────────────────────────────────────────
// Styles
// ──────────────────────────────────────────────────

func (s *Store) Styles(_ context.Context) ([]*catalog.Style, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(s.styles), nil
}

func (s *Store) Style(_ context.Context, sid id.StyleID) (*catalog.Style, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.styles[sid.String()]
	if !ok {
		return nil, fmt.Errorf("style %s: %w", sid, catalog.ErrNotFound)
	}
	return st, nil
}

func (s *Store) StyleByName(_ context.Context, workspace, name string) (*catalog.Style, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.styles {
		if st.Name == name && workspaceName(st.Workspace) == workspace {
			return st, nil
		}
	}
	return nil, fmt.Errorf("style %s:%s: %w", workspace, name, catalog.ErrNotFound)
}

func (s *Store) StylesByWorkspace(_ context.Context, workspace string) ([]*catalog.Style, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matching := make(map[string]*catalog.Style)
	for k, st := range s.styles {
		if workspaceName(st.Workspace) == workspace {
			matching[k] = st
		}
	}
	return sortedByName(matching), nil
}

// ──────────────────────────────────────────────────
// Maps
// ──────────────────────────────────────────────────

func (s *Store) Maps(_ context.Context) ([]*catalog.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(s.maps), nil
}

func (s *Store) Map(_ context.Context, mid id.MapID) (*catalog.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.maps[mid.String()]
	if !ok {
		return nil, fmt.Errorf("map %s: %w", mid, catalog.ErrNotFound)
	}
	return m, nil
}

func (s *Store) MapByName(_ context.Context, name string) (*catalog.Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.maps {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("map %q: %w", name, catalog.ErrNotFound)
}

// ──────────────────────────────────────────────────
// Generic queries
// ──────────────────────────────────────────────────

func (s *Store) List(ctx context.Context, kind catalog.Kind, filter catalog.Predicate, opts catalog.ListOptions) ([]catalog.Object, error) {
	all, err := s.objectsOfKind(ctx, kind)
	if err != nil {
		return nil, err
	}

	matched := make([]catalog.Object, 0, len(all))
	for _, obj := range all {
		if filter.Matches(obj) {
			matched = append(matched, obj)
		}
	}

	return applyPagination(matched, opts), nil
}

func (s *Store) Count(ctx context.Context, kind catalog.Kind, filter catalog.Predicate) (int, error) {
	list, err := s.List(ctx, kind, filter, catalog.ListOptions{})
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (s *Store) Get(ctx context.Context, kind catalog.Kind, filter catalog.Predicate) (catalog.Object, error) {
	list, err := s.List(ctx, kind, filter, catalog.ListOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%s: %w", kind, catalog.ErrNotFound)
	}
	return list[0], nil
}

func (s *Store) objectsOfKind(ctx context.Context, kind catalog.Kind) ([]catalog.Object, error) {
	switch kind {
	case catalog.KindWorkspace:
		items, _ := s.Workspaces(ctx)
		return asObjects(items), nil
	case catalog.KindNamespace:
		items, _ := s.Namespaces(ctx)
		return asObjects(items), nil
	case catalog.KindStore:
		items, _ := s.Stores(ctx)
		return asObjects(items), nil
	case catalog.KindResource:
		items, _ := s.Resources(ctx)
		return asObjects(items), nil
	case catalog.KindLayer:
		items, _ := s.Layers(ctx)
		return asObjects(items), nil
	case catalog.KindLayerGroup:
		items, _ := s.LayerGroups(ctx)
		return asObjects(items), nil
	case catalog.KindStyle:
		items, _ := s.Styles(ctx)
		return asObjects(items), nil
	case catalog.KindMap:
		items, _ := s.Maps(ctx)
		return asObjects(items), nil
	default:
		return nil, fmt.Errorf("%w: kind %q", catalog.ErrInvalid, kind)
	}
}

// ──────────────────────────────────────────────────
// Mutations
// ──────────────────────────────────────────────────

func (s *Store) Add(_ context.Context, obj catalog.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := obj.ObjectID().String()
	if key == "" {
		return fmt.Errorf("%w: %s %q has no id", catalog.ErrInvalid, obj.ObjectKind(), obj.ObjectName())
	}
	bucket, err := s.bucketFor(obj)
	if err != nil {
		return err
	}
	if _, exists := bucket.get(key); exists {
		return fmt.Errorf("%w: %s %q already exists", catalog.ErrInvalid, obj.ObjectKind(), obj.ObjectName())
	}
	bucket.put(key, obj)
	return nil
}

func (s *Store) Save(_ context.Context, obj catalog.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := obj.ObjectID().String()
	bucket, err := s.bucketFor(obj)
	if err != nil {
		return err
	}
	if _, exists := bucket.get(key); !exists {
		return fmt.Errorf("%s %q: %w", obj.ObjectKind(), obj.ObjectName(), catalog.ErrNotFound)
	}
	bucket.put(key, obj)
	return nil
}

func (s *Store) Remove(_ context.Context, obj catalog.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := obj.ObjectID().String()
	bucket, err := s.bucketFor(obj)
	if err != nil {
		return err
	}
	if _, exists := bucket.get(key); !exists {
		return fmt.Errorf("%s %q: %w", obj.ObjectKind(), obj.ObjectName(), catalog.ErrNotFound)
	}
	bucket.del(key)
	return nil
}

func (s *Store) Detach(_ context.Context, obj catalog.Object) (catalog.Object, error) {
	switch o := obj.(type) {
	case *catalog.Workspace:
		c := *o
		return &c, nil
	case *catalog.Namespace:
		c := *o
		return &c, nil
	case *catalog.Store:
		c := *o
		c.Restricted = nil
		return &c, nil
	case *catalog.Resource:
		c := *o
		c.Restricted = nil
		return &c, nil
	case *catalog.Layer:
		c := *o
		c.Styles = append([]*catalog.Style(nil), o.Styles...)
		c.Restricted = nil
		return &c, nil
	case *catalog.LayerGroup:
		c := *o
		c.Members = append([]catalog.Object(nil), o.Members...)
		c.Restricted = nil
		return &c, nil
	case *catalog.Style:
		c := *o
		return &c, nil
	case *catalog.Map:
		c := *o
		c.Layers = append([]*catalog.Layer(nil), o.Layers...)
		return &c, nil
	default:
		return nil, fmt.Errorf("%w: %T", catalog.ErrInvalid, obj)
	}
}

func (s *Store) Validate(ctx context.Context, obj catalog.Object, isNew bool) error {
	if obj.ObjectName() == "" {
		return fmt.Errorf("%w: %s has no name", catalog.ErrInvalid, obj.ObjectKind())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket, err := s.bucketFor(obj)
	if err != nil {
		return err
	}

	key := obj.ObjectID().String()
	if isNew {
		if _, exists := bucket.get(key); exists {
			return fmt.Errorf("%w: %s %q already exists", catalog.ErrInvalid, obj.ObjectKind(), obj.ObjectName())
		}
		return nil
	}
	if _, exists := bucket.get(key); !exists {
		return fmt.Errorf("%s %q: %w", obj.ObjectKind(), obj.ObjectName(), catalog.ErrNotFound)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────

// bucket erases the per-kind map types behind a uniform accessor so
// the mutation methods stay generic.
type bucket struct {
	get func(key string) (catalog.Object, bool)
	put func(key string, obj catalog.Object)
	del func(key string)
}

func (s *Store) bucketFor(obj catalog.Object) (bucket, error) {
	switch o := obj.(type) {
	case *catalog.Workspace:
		return typedBucket(s.workspaces, o), nil
	case *catalog.Namespace:
		return typedBucket(s.namespaces, o), nil
	case *catalog.Store:
		return typedBucket(s.stores, o), nil
	case *catalog.Resource:
		return typedBucket(s.resources, o), nil
	case *catalog.Layer:
		return typedBucket(s.layers, o), nil
	case *catalog.LayerGroup:
		return typedBucket(s.groups, o), nil
	case *catalog.Style:
		return typedBucket(s.styles, o), nil
	case *catalog.Map:
		return typedBucket(s.maps, o), nil
	default:
		return bucket{}, fmt.Errorf("%w: %T", catalog.ErrInvalid, obj)
	}
}

func typedBucket[T catalog.Object](m map[string]T, _ T) bucket {
	return bucket{
		get: func(key string) (catalog.Object, bool) {
			v, ok := m[key]
			if !ok {
				return nil, false
			}
			return v, true
		},
		put: func(key string, obj catalog.Object) {
			m[key] = obj.(T)
		},
		del: func(key string) {
			delete(m, key)
		},
	}
}

type named interface {
	catalog.Object
	comparable
}

func sortedByName[T named](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ObjectName() != out[j].ObjectName() {
			return out[i].ObjectName() < out[j].ObjectName()
		}
		return out[i].ObjectID().String() < out[j].ObjectID().String()
	})
	return out
}

func asObjects[T catalog.Object](items []T) []catalog.Object {
	out := make([]catalog.Object, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}

func applyPagination(items []catalog.Object, opts catalog.ListOptions) []catalog.Object {
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return []catalog.Object{}
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

func workspaceName(ws *catalog.Workspace) string {
	if ws == nil {
		return ""
	}
	return ws.Name
}

func namespacePrefix(ns *catalog.Namespace) string {
	if ns == nil {
		return ""
	}
	return ns.Prefix
}
