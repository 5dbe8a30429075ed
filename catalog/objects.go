// Package catalog defines the hierarchical catalog object model the
// authorization engine decorates: workspaces, namespaces, stores,
// resources, layers, layer groups, styles and maps, plus the predicate
// and storage abstractions the engine builds on.
package catalog

import (
	"github.com/mapfort/palisade/access"
	"github.com/mapfort/palisade/id"
)

// Kind names a catalog object variant. The set of kinds is closed;
// storage backends and the engine reject anything else.
type Kind string

const (
	// KindWorkspace is the top-level grouping container.
	KindWorkspace Kind = "workspace"

	// KindNamespace is the XML-namespace facet paired with a workspace.
	KindNamespace Kind = "namespace"

	// KindStore is a data, coverage or WMS store.
	KindStore Kind = "store"

	// KindResource is a published data resource.
	KindResource Kind = "resource"

	// KindLayer is a published layer over a resource.
	KindLayer Kind = "layer"

	// KindLayerGroup is a composite of layers and nested groups.
	KindLayerGroup Kind = "layergroup"

	// KindStyle is a rendering style.
	KindStyle Kind = "style"

	// KindMap is a stored map composition.
	KindMap Kind = "map"
)

// Object is the common surface of every catalog object. The engine
// accepts any Object and fails with a configuration error on variants
// it does not recognize.
type Object interface {
	// ObjectID returns the catalog identifier.
	ObjectID() id.ID

	// ObjectName returns the name the object is published under.
	ObjectName() string

	// ObjectKind reports the catalog variant.
	ObjectKind() Kind
}

// Restriction marks a catalog object copy as a restricted view produced
// by the authorization engine. Origin points at the object the view was
// made from, which may itself be another view.
type Restriction struct {
	Policy access.WrapperPolicy
	Origin Object
}

// Workspace is the top-level container of stores and, by pairing,
// namespaces.
type Workspace struct {
	ID       id.WorkspaceID `json:"id"`
	Name     string         `json:"name"`
	Isolated bool           `json:"isolated,omitempty"`
}

// ObjectID implements Object.
func (w *Workspace) ObjectID() id.ID { return w.ID }

// ObjectName implements Object.
func (w *Workspace) ObjectName() string { return w.Name }

// ObjectKind implements Object.
func (w *Workspace) ObjectKind() Kind { return KindWorkspace }

// Namespace is the XML-namespace facet of a workspace; the pairing is
// by identical prefix and workspace name.
type Namespace struct {
	ID       id.NamespaceID `json:"id"`
	Prefix   string         `json:"prefix"`
	URI      string         `json:"uri"`
	Isolated bool           `json:"isolated,omitempty"`
}

// ObjectID implements Object.
func (n *Namespace) ObjectID() id.ID { return n.ID }

// ObjectName returns the namespace prefix, the name namespaces are
// addressed by.
func (n *Namespace) ObjectName() string { return n.Prefix }

// ObjectKind implements Object.
func (n *Namespace) ObjectKind() Kind { return KindNamespace }

// StoreKind distinguishes the store variants, which differ in what
// content (if any) is writable through them.
type StoreKind string

const (
	// StoreData holds writable vector data.
	StoreData StoreKind = "data"

	// StoreCoverage holds raster data, read-only by nature.
	StoreCoverage StoreKind = "coverage"

	// StoreWMS cascades a remote WMS, read-only by nature.
	StoreWMS StoreKind = "wms"
)

// Store is a connection to a data, coverage or WMS source, owned by a
// workspace.
type Store struct {
	ID        id.StoreID `json:"id"`
	Name      string     `json:"name"`
	Kind      StoreKind  `json:"kind"`
	Workspace *Workspace `json:"workspace,omitempty"`
	Enabled   bool       `json:"enabled"`

	// Restricted is set on copies produced by the authorization
	// engine; it is never persisted.
	Restricted *Restriction `json:"-"`
}

// ObjectID implements Object.
func (s *Store) ObjectID() id.ID { return s.ID }

// ObjectName implements Object.
func (s *Store) ObjectName() string { return s.Name }

// ObjectKind implements Object.
func (s *Store) ObjectKind() Kind { return KindStore }

// ResourceKind distinguishes published resource variants; it decides
// which access-limit payload applies.
type ResourceKind string

const (
	// ResourceVector is a feature (vector) resource.
	ResourceVector ResourceKind = "vector"

	// ResourceRaster is a coverage (raster) resource.
	ResourceRaster ResourceKind = "raster"

	// ResourceWMS is a cascaded WMS resource.
	ResourceWMS ResourceKind = "wms"
)

// Resource is a published data resource, attached to a store and
// addressed through a namespace.
type Resource struct {
	ID        id.ResourceID `json:"id"`
	Name      string        `json:"name"`
	Title     string        `json:"title,omitempty"`
	Kind      ResourceKind  `json:"kind"`
	Namespace *Namespace    `json:"namespace,omitempty"`
	Store     *Store        `json:"store,omitempty"`
	Enabled   bool          `json:"enabled"`

	// Restricted is set on copies produced by the authorization
	// engine; it is never persisted.
	Restricted *Restriction `json:"-"`
}

// ObjectID implements Object.
func (r *Resource) ObjectID() id.ID { return r.ID }

// ObjectName implements Object.
func (r *Resource) ObjectName() string { return r.Name }

// ObjectKind implements Object.
func (r *Resource) ObjectKind() Kind { return KindResource }

// Layer publishes a resource under a default style.
type Layer struct {
	ID           id.LayerID `json:"id"`
	Name         string     `json:"name"`
	Resource     *Resource  `json:"resource,omitempty"`
	DefaultStyle *Style     `json:"default_style,omitempty"`
	Styles       []*Style   `json:"styles,omitempty"`
	Advertised   bool       `json:"advertised"`

	// Restricted is set on copies produced by the authorization
	// engine; it is never persisted.
	Restricted *Restriction `json:"-"`
}

// ObjectID implements Object.
func (l *Layer) ObjectID() id.ID { return l.ID }

// ObjectName implements Object.
func (l *Layer) ObjectName() string { return l.Name }

// ObjectKind implements Object.
func (l *Layer) ObjectKind() Kind { return KindLayer }

// GroupMode is the publishing mode of a layer group.
type GroupMode string

const (
	// GroupSingle publishes the group as one flattened layer.
	GroupSingle GroupMode = "single"

	// GroupNamed publishes the group and its members individually.
	GroupNamed GroupMode = "named"

	// GroupContainer publishes only the members.
	GroupContainer GroupMode = "container"

	// GroupEarthObservation publishes a root layer plus the members.
	GroupEarthObservation GroupMode = "eo"
)

// LayerGroup composes layers and nested groups into one published unit.
// Members may be *Layer or *LayerGroup values.
type LayerGroup struct {
	ID        id.LayerGroupID `json:"id"`
	Name      string          `json:"name"`
	Mode      GroupMode       `json:"mode"`
	Workspace *Workspace      `json:"workspace,omitempty"`
	RootLayer *Layer          `json:"root_layer,omitempty"`
	Members   []Object        `json:"members,omitempty"`

	// Restricted is set on copies produced by the authorization
	// engine; it is never persisted.
	Restricted *Restriction `json:"-"`
}

// ObjectID implements Object.
func (g *LayerGroup) ObjectID() id.ID { return g.ID }

// ObjectName implements Object.
func (g *LayerGroup) ObjectName() string { return g.Name }

// ObjectKind implements Object.
func (g *LayerGroup) ObjectKind() Kind { return KindLayerGroup }

// Style is a rendering style, optionally scoped to a workspace.
type Style struct {
	ID        id.StyleID `json:"id"`
	Name      string     `json:"name"`
	Workspace *Workspace `json:"workspace,omitempty"`
	Filename  string     `json:"filename,omitempty"`
}

// ObjectID implements Object.
func (s *Style) ObjectID() id.ID { return s.ID }

// ObjectName implements Object.
func (s *Style) ObjectName() string { return s.Name }

// ObjectKind implements Object.
func (s *Style) ObjectKind() Kind { return KindStyle }

// Map is a stored map composition. Maps are outside the authorization
// model and always pass through untouched.
type Map struct {
	ID      id.MapID `json:"id"`
	Name    string   `json:"name"`
	Layers  []*Layer `json:"layers,omitempty"`
	Enabled bool     `json:"enabled"`
}

// ObjectID implements Object.
func (m *Map) ObjectID() id.ID { return m.ID }

// ObjectName implements Object.
func (m *Map) ObjectName() string { return m.Name }

// ObjectKind implements Object.
func (m *Map) ObjectKind() Kind { return KindMap }

// RestrictionOf returns the restriction marker carried by obj, or nil
// when obj is an original object or a kind that is never wrapped.
func RestrictionOf(obj Object) *Restriction {
	switch o := obj.(type) {
	case *Store:
		return o.Restricted
	case *Resource:
		return o.Restricted
	case *Layer:
		return o.Restricted
	case *LayerGroup:
		return o.Restricted
	default:
		return nil
	}
}
