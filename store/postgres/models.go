package postgres

import (
	"github.com/xraph/grove"

	"github.com/mapfort/palisade/catalog"
)

// memberRef is how layer group membership is persisted: an ordered
// JSONB list of typed references.
type memberRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// ──────────────────────────────────────────────────
// Workspace model
// ──────────────────────────────────────────────────

type workspaceModel struct {
	grove.BaseModel `grove:"table:palisade_workspaces"`
	ID              string `grove:"id,pk"`
	Name            string `grove:"name,notnull"`
	Isolated        bool   `grove:"isolated,notnull"`
}

func workspaceToModel(w *catalog.Workspace) *workspaceModel {
	return &workspaceModel{
		ID:       w.ID.String(),
		Name:     w.Name,
		Isolated: w.Isolated,
	}
}

// ──────────────────────────────────────────────────
// Namespace model
// ──────────────────────────────────────────────────

type namespaceModel struct {
	grove.BaseModel `grove:"table:palisade_namespaces"`
	ID              string `grove:"id,pk"`
	Prefix          string `grove:"prefix,notnull"`
	URI             string `grove:"uri,notnull"`
	Isolated        bool   `grove:"isolated,notnull"`
}

func namespaceToModel(n *catalog.Namespace) *namespaceModel {
	return &namespaceModel{
		ID:       n.ID.String(),
		Prefix:   n.Prefix,
		URI:      n.URI,
		Isolated: n.Isolated,
	}
}

// ──────────────────────────────────────────────────
// Store model
// ──────────────────────────────────────────────────

type storeModel struct {
	grove.BaseModel `grove:"table:palisade_stores"`
	ID              string  `grove:"id,pk"`
	Name            string  `grove:"name,notnull"`
	Kind            string  `grove:"kind,notnull"`
	WorkspaceID     *string `grove:"workspace_id"`
	Enabled         bool    `grove:"enabled,notnull"`
}

func storeToModel(st *catalog.Store) *storeModel {
	m := &storeModel{
		ID:      st.ID.String(),
		Name:    st.Name,
		Kind:    string(st.Kind),
		Enabled: st.Enabled,
	}
	if st.Workspace != nil {
		s := st.Workspace.ID.String()
		m.WorkspaceID = &s
	}
	return m
}

// ──────────────────────────────────────────────────
// Resource model
// ──────────────────────────────────────────────────

type resourceModel struct {
	grove.BaseModel `grove:"table:palisade_resources"`
	ID              string  `grove:"id,pk"`
	Name            string  `grove:"name,notnull"`
	Title           string  `grove:"title"`
	Kind            string  `grove:"kind,notnull"`
	NamespaceID     *string `grove:"namespace_id"`
	StoreID         *string `grove:"store_id"`
	Enabled         bool    `grove:"enabled,notnull"`
}

func resourceToModel(r *catalog.Resource) *resourceModel {
	m := &resourceModel{
		ID:      r.ID.String(),
		Name:    r.Name,
		Title:   r.Title,
		Kind:    string(r.Kind),
		Enabled: r.Enabled,
	}
	if r.Namespace != nil {
		s := r.Namespace.ID.String()
		m.NamespaceID = &s
	}
	if r.Store != nil {
		s := r.Store.ID.String()
		m.StoreID = &s
	}
	return m
}

// ──────────────────────────────────────────────────
// Layer model
// ──────────────────────────────────────────────────

type layerModel struct {
	grove.BaseModel `grove:"table:palisade_layers"`
	ID              string   `grove:"id,pk"`
	Name            string   `grove:"name,notnull"`
	ResourceID      *string  `grove:"resource_id"`
	DefaultStyleID  *string  `grove:"default_style_id"`
	StyleIDs        []string `grove:"style_ids,type:jsonb"`
	Advertised      bool     `grove:"advertised,notnull"`
}

func layerToModel(l *catalog.Layer) *layerModel {
	m := &layerModel{
		ID:         l.ID.String(),
		Name:       l.Name,
		Advertised: l.Advertised,
		StyleIDs:   make([]string, 0, len(l.Styles)),
	}
	if l.Resource != nil {
		s := l.Resource.ID.String()
		m.ResourceID = &s
	}
	if l.DefaultStyle != nil {
		s := l.DefaultStyle.ID.String()
		m.DefaultStyleID = &s
	}
	for _, st := range l.Styles {
		if st != nil {
			m.StyleIDs = append(m.StyleIDs, st.ID.String())
		}
	}
	return m
}

// ──────────────────────────────────────────────────
// Layer group model
// ──────────────────────────────────────────────────

type layerGroupModel struct {
	grove.BaseModel `grove:"table:palisade_layer_groups"`
	ID              string      `grove:"id,pk"`
	Name            string      `grove:"name,notnull"`
	Mode            string      `grove:"mode,notnull"`
	WorkspaceID     *string     `grove:"workspace_id"`
	RootLayerID     *string     `grove:"root_layer_id"`
	Members         []memberRef `grove:"members,type:jsonb"`
}

func layerGroupToModel(g *catalog.LayerGroup) *layerGroupModel {
	m := &layerGroupModel{
		ID:      g.ID.String(),
		Name:    g.Name,
		Mode:    string(g.Mode),
		Members: make([]memberRef, 0, len(g.Members)),
	}
	if g.Workspace != nil {
		s := g.Workspace.ID.String()
		m.WorkspaceID = &s
	}
	if g.RootLayer != nil {
		s := g.RootLayer.ID.String()
		m.RootLayerID = &s
	}
	for _, member := range g.Members {
		if member == nil {
			continue
		}
		m.Members = append(m.Members, memberRef{
			Kind: string(member.ObjectKind()),
			ID:   member.ObjectID().String(),
		})
	}
	return m
}

// ──────────────────────────────────────────────────
// Style model
// ──────────────────────────────────────────────────

type styleModel struct {
	grove.BaseModel `grove:"table:palisade_styles"`
	ID              string  `grove:"id,pk"`
	Name            string  `grove:"name,notnull"`
	WorkspaceID     *string `grove:"workspace_id"`
	Filename        string  `grove:"filename"`
}

func styleToModel(st *catalog.Style) *styleModel {
	m := &styleModel{
		ID:       st.ID.String(),
		Name:     st.Name,
		Filename: st.Filename,
	}
	if st.Workspace != nil {
		s := st.Workspace.ID.String()
		m.WorkspaceID = &s
	}
	return m
}

// ──────────────────────────────────────────────────
// Map model
// ──────────────────────────────────────────────────

type mapModel struct {
	grove.BaseModel `grove:"table:palisade_maps"`
	ID              string   `grove:"id,pk"`
	Name            string   `grove:"name,notnull"`
	LayerIDs        []string `grove:"layer_ids,type:jsonb"`
	Enabled         bool     `grove:"enabled,notnull"`
}

func mapToModel(m *catalog.Map) *mapModel {
	out := &mapModel{
		ID:       m.ID.String(),
		Name:     m.Name,
		Enabled:  m.Enabled,
		LayerIDs: make([]string, 0, len(m.Layers)),
	}
	for _, l := range m.Layers {
		if l != nil {
			out.LayerIDs = append(out.LayerIDs, l.ID.String())
		}
	}
	return out
}
