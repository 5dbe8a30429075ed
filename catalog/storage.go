package catalog

import (
	"context"
	"errors"

	"github.com/mapfort/palisade/id"
)

// ErrNotFound is returned by storage backends when no object matches.
// The engine reuses it for objects a caller is not allowed to see, so
// hidden and missing objects are indistinguishable.
var ErrNotFound = errors.New("catalog: object not found")

// ErrInvalid is returned by Validate when an object fails the backend's
// consistency checks.
var ErrInvalid = errors.New("catalog: invalid object")

// ListOptions carries pagination for listing queries. Zero values mean
// no offset and no limit.
type ListOptions struct {
	Offset int `json:"offset,omitempty"`
	Limit  int `json:"limit,omitempty"`
}

// Storage is the raw catalog the engine secures. Implementations make
// no authorization decisions; every method returns objects exactly as
// persisted. Lookups that find nothing return ErrNotFound.
//
// The generic query methods evaluate the Predicate in process, after
// loading candidates of the requested kind; pagination applies to the
// filtered sequence.
type Storage interface {
	// ── Workspaces ──
	Workspaces(ctx context.Context) ([]*Workspace, error)
	Workspace(ctx context.Context, wid id.WorkspaceID) (*Workspace, error)
	WorkspaceByName(ctx context.Context, name string) (*Workspace, error)

	// ── Namespaces ──
	Namespaces(ctx context.Context) ([]*Namespace, error)
	Namespace(ctx context.Context, nid id.NamespaceID) (*Namespace, error)
	NamespaceByPrefix(ctx context.Context, prefix string) (*Namespace, error)

	// ── Stores ──
	Stores(ctx context.Context) ([]*Store, error)
	Store(ctx context.Context, sid id.StoreID) (*Store, error)
	// StoreByName resolves a store within a workspace; workspace is
	// the workspace name.
	StoreByName(ctx context.Context, workspace, name string) (*Store, error)
	StoresByWorkspace(ctx context.Context, workspace string) ([]*Store, error)

	// ── Resources ──
	Resources(ctx context.Context) ([]*Resource, error)
	Resource(ctx context.Context, rid id.ResourceID) (*Resource, error)
	// ResourceByName resolves a resource by namespace prefix and
	// local name.
	ResourceByName(ctx context.Context, prefix, name string) (*Resource, error)
	ResourcesByStore(ctx context.Context, sid id.StoreID) ([]*Resource, error)
	ResourcesByNamespace(ctx context.Context, prefix string) ([]*Resource, error)

	// ── Layers ──
	Layers(ctx context.Context) ([]*Layer, error)
	Layer(ctx context.Context, lid id.LayerID) (*Layer, error)
	LayerByName(ctx context.Context, name string) (*Layer, error)

	// ── Layer groups ──
	LayerGroups(ctx context.Context) ([]*LayerGroup, error)
	LayerGroup(ctx context.Context, gid id.LayerGroupID) (*LayerGroup, error)
	// LayerGroupByName resolves a group by workspace name and group
	// name; an empty workspace addresses global groups.
	LayerGroupByName(ctx context.Context, workspace, name string) (*LayerGroup, error)
	LayerGroupsByWorkspace(ctx context.Context, workspace string) ([]*LayerGroup, error)

	// ── Styles ──
	Styles(ctx context.Context) ([]*Style, error)
	Style(ctx context.Context, sid id.StyleID) (*Style, error)
	// StyleByName resolves a style by workspace name and style name;
	// an empty workspace addresses global styles.
	StyleByName(ctx context.Context, workspace, name string) (*Style, error)
	StylesByWorkspace(ctx context.Context, workspace string) ([]*Style, error)

	// ── Maps ──
	Maps(ctx context.Context) ([]*Map, error)
	Map(ctx context.Context, mid id.MapID) (*Map, error)
	MapByName(ctx context.Context, name string) (*Map, error)

	// ── Generic queries ──
	List(ctx context.Context, kind Kind, filter Predicate, opts ListOptions) ([]Object, error)
	Count(ctx context.Context, kind Kind, filter Predicate) (int, error)
	// Get returns the first object of the given kind matching the
	// predicate, or ErrNotFound.
	Get(ctx context.Context, kind Kind, filter Predicate) (Object, error)

	// ── Mutations ──
	Add(ctx context.Context, obj Object) error
	Save(ctx context.Context, obj Object) error
	Remove(ctx context.Context, obj Object) error
	// Detach returns a copy of obj decoupled from the backend's
	// internal state, suitable for modification before Save.
	Detach(ctx context.Context, obj Object) (Object, error)
	// Validate checks obj against the backend's consistency rules
	// without persisting it. isNew distinguishes inserts from updates.
	Validate(ctx context.Context, obj Object, isNew bool) error

	// ── Lifecycle ──
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
