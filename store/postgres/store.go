// Package postgres provides a PostgreSQL implementation of the catalog
// storage using grove ORM with Go-based migrations.
//
// Object references (a store's workspace, a layer's resource and
// styles, group members) are persisted as foreign keys and hydrated
// into full object graphs on read, so every load returns a fresh,
// detached copy.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/mapfort/palisade/catalog"
	"github.com/mapfort/palisade/id"
)

// Compile-time interface check.
var _ catalog.Storage = (*Store)(nil)

// maxMemberDepth bounds group member hydration so a cyclic membership
// row cannot recurse forever.
const maxMemberDepth = 32

// Store is a PostgreSQL implementation of the catalog storage.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("palisade: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("palisade: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ──────────────────────────────────────────────────
// Workspace operations
// ──────────────────────────────────────────────────

func (s *Store) Workspaces(ctx context.Context) ([]*catalog.Workspace, error) {
	var models []workspaceModel
	if err := s.pgdb.NewSelect(&models).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("palisade: list workspaces: %w", err)
	}
	out := make([]*catalog.Workspace, len(models))
	for i := range models {
		out[i] = workspaceFromModel(&models[i])
	}
	return out, nil
}

func (s *Store) Workspace(ctx context.Context, wid id.WorkspaceID) (*catalog.Workspace, error) {
	return s.workspaceByID(ctx, wid.String())
}

func (s *Store) WorkspaceByName(ctx context.Context, name string) (*catalog.Workspace, error) {
	m := new(workspaceModel)
	err := s.pgdb.NewSelect(m).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workspace %q: %w", name, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get workspace by name: %w", err)
	}
	return workspaceFromModel(m), nil
}

func (s *Store) workspaceByID(ctx context.Context, wid string) (*catalog.Workspace, error) {
	m := new(workspaceModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", wid).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workspace %s: %w", wid, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get workspace: %w", err)
	}
	return workspaceFromModel(m), nil
}

func workspaceFromModel(m *workspaceModel) *catalog.Workspace {
	wid, _ := id.ParseWorkspaceID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &catalog.Workspace{
		ID:       wid,
		Name:     m.Name,
		Isolated: m.Isolated,
	}
}

// ──────────────────────────────────────────────────
// Namespace operations
// ──────────────────────────────────────────────────

func (s *Store) Namespaces(ctx context.Context) ([]*catalog.Namespace, error) {
	var models []namespaceModel
	if err := s.pgdb.NewSelect(&models).OrderExpr("prefix ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("palisade: list namespaces: %w", err)
	}
	out := make([]*catalog.Namespace, len(models))
	for i := range models {
		out[i] = namespaceFromModel(&models[i])
	}
	return out, nil
}

func (s *Store) Namespace(ctx context.Context, nid id.NamespaceID) (*catalog.Namespace, error) {
	return s.namespaceByID(ctx, nid.String())
}

func (s *Store) NamespaceByPrefix(ctx context.Context, prefix string) (*catalog.Namespace, error) {
	m := new(namespaceModel)
	err := s.pgdb.NewSelect(m).Where("prefix = ?", prefix).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("namespace %q: %w", prefix, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get namespace by prefix: %w", err)
	}
	return namespaceFromModel(m), nil
}

func (s *Store) namespaceByID(ctx context.Context, nid string) (*catalog.Namespace, error) {
	m := new(namespaceModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", nid).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("namespace %s: %w", nid, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get namespace: %w", err)
	}
	return namespaceFromModel(m), nil
}

func namespaceFromModel(m *namespaceModel) *catalog.Namespace {
	nid, _ := id.ParseNamespaceID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &catalog.Namespace{
		ID:       nid,
		Prefix:   m.Prefix,
		URI:      m.URI,
		Isolated: m.Isolated,
	}
}

// ──────────────────────────────────────────────────
// Store operations
// ──────────────────────────────────────────────────

func (s *Store) Stores(ctx context.Context) ([]*catalog.Store, error) {
	var models []storeModel
	if err := s.pgdb.NewSelect(&models).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("palisade: list stores: %w", err)
	}
	return s.storesFromModels(ctx, models)
}

func (s *Store) Store(ctx context.Context, sid id.StoreID) (*catalog.Store, error) {
	return s.storeByID(ctx, sid.String())
}

func (s *Store) StoreByName(ctx context.Context, workspace, name string) (*catalog.Store, error) {
	ws, err := s.WorkspaceByName(ctx, workspace)
	if err != nil {
		return nil, err
	}

	m := new(storeModel)
	err = s.pgdb.NewSelect(m).
		Where("workspace_id = ?", ws.ID.String()).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("store %q: %w", name, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get store by name: %w", err)
	}
	return s.storeFromModel(ctx, m)
}

func (s *Store) StoresByWorkspace(ctx context.Context, workspace string) ([]*catalog.Store, error) {
	ws, err := s.WorkspaceByName(ctx, workspace)
	if err != nil {
		return nil, err
	}

	var models []storeModel
	err = s.pgdb.NewSelect(&models).
		Where("workspace_id = ?", ws.ID.String()).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("palisade: list stores by workspace: %w", err)
	}
	return s.storesFromModels(ctx, models)
}

func (s *Store) storeByID(ctx context.Context, sid string) (*catalog.Store, error) {
	m := new(storeModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", sid).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("store %s: %w", sid, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get store: %w", err)
	}
	return s.storeFromModel(ctx, m)
}

func (s *Store) storesFromModels(ctx context.Context, models []storeModel) ([]*catalog.Store, error) {
	out := make([]*catalog.Store, len(models))
	for i := range models {
		st, err := s.storeFromModel(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		out[i] = st
	}
	return out, nil
}

func (s *Store) storeFromModel(ctx context.Context, m *storeModel) (*catalog.Store, error) {
	sid, _ := id.ParseStoreID(m.ID) //nolint:errcheck // stored IDs are always valid
	st := &catalog.Store{
		ID:      sid,
		Name:    m.Name,
		Kind:    catalog.StoreKind(m.Kind),
		Enabled: m.Enabled,
	}
	if m.WorkspaceID != nil {
		ws, err := s.workspaceByID(ctx, *m.WorkspaceID)
		if err != nil {
			return nil, err
		}
		st.Workspace = ws
	}
	return st, nil
}

// ──────────────────────────────────────────────────
// Resource operations
// ──────────────────────────────────────────────────

func (s *Store) Resources(ctx context.Context) ([]*catalog.Resource, error) {
	var models []resourceModel
	if err := s.pgdb.NewSelect(&models).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("palisade: list resources: %w", err)
	}
	return s.resourcesFromModels(ctx, models)
}

func (s *Store) Resource(ctx context.Context, rid id.ResourceID) (*catalog.Resource, error) {
	return s.resourceByID(ctx, rid.String())
}

func (s *Store) ResourceByName(ctx context.Context, prefix, name string) (*catalog.Resource, error) {
	ns, err := s.NamespaceByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	m := new(resourceModel)
	err = s.pgdb.NewSelect(m).
		Where("namespace_id = ?", ns.ID.String()).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("resource %q: %w", name, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get resource by name: %w", err)
	}
	return s.resourceFromModel(ctx, m)
}

func (s *Store) ResourcesByStore(ctx context.Context, sid id.StoreID) ([]*catalog.Resource, error) {
	var models []resourceModel
	err := s.pgdb.NewSelect(&models).
		Where("store_id = ?", sid.String()).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("palisade: list resources by store: %w", err)
	}
	return s.resourcesFromModels(ctx, models)
}

func (s *Store) ResourcesByNamespace(ctx context.Context, prefix string) ([]*catalog.Resource, error) {
	ns, err := s.NamespaceByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var models []resourceModel
	err = s.pgdb.NewSelect(&models).
		Where("namespace_id = ?", ns.ID.String()).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("palisade: list resources by namespace: %w", err)
	}
	return s.resourcesFromModels(ctx, models)
}

func (s *Store) resourceByID(ctx context.Context, rid string) (*catalog.Resource, error) {
	m := new(resourceModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", rid).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("resource %s: %w", rid, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get resource: %w", err)
	}
	return s.resourceFromModel(ctx, m)
}

func (s *Store) resourcesFromModels(ctx context.Context, models []resourceModel) ([]*catalog.Resource, error) {
	out := make([]*catalog.Resource, len(models))
	for i := range models {
		r, err := s.resourceFromModel(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (s *Store) resourceFromModel(ctx context.Context, m *resourceModel) (*catalog.Resource, error) {
	rid, _ := id.ParseResourceID(m.ID) //nolint:errcheck // stored IDs are always valid
	r := &catalog.Resource{
		ID:      rid,
		Name:    m.Name,
		Title:   m.Title,
		Kind:    catalog.ResourceKind(m.Kind),
		Enabled: m.Enabled,
	}
	if m.NamespaceID != nil {
		ns, err := s.namespaceByID(ctx, *m.NamespaceID)
		if err != nil {
			return nil, err
		}
		r.Namespace = ns
	}
	if m.StoreID != nil {
		st, err := s.storeByID(ctx, *m.StoreID)
		if err != nil {
			return nil, err
		}
		r.Store = st
	}
	return r, nil
}

// ──────────────────────────────────────────────────
// Layer operations
// ──────────────────────────────────────────────────

func (s *Store) Layers(ctx context.Context) ([]*catalog.Layer, error) {
	var models []layerModel
	if err := s.pgdb.NewSelect(&models).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("palisade: list layers: %w", err)
	}
	out := make([]*catalog.Layer, len(models))
	for i := range models {
		l, err := s.layerFromModel(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}

func (s *Store) Layer(ctx context.Context, lid id.LayerID) (*catalog.Layer, error) {
	return s.layerByID(ctx, lid.String())
}

func (s *Store) LayerByName(ctx context.Context, name string) (*catalog.Layer, error) {
	m := new(layerModel)
	err := s.pgdb.NewSelect(m).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("layer %q: %w", name, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get layer by name: %w", err)
	}
	return s.layerFromModel(ctx, m)
}

func (s *Store) layerByID(ctx context.Context, lid string) (*catalog.Layer, error) {
	m := new(layerModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", lid).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("layer %s: %w", lid, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get layer: %w", err)
	}
	return s.layerFromModel(ctx, m)
}

func (s *Store) layerFromModel(ctx context.Context, m *layerModel) (*catalog.Layer, error) {
	lid, _ := id.ParseLayerID(m.ID) //nolint:errcheck // stored IDs are always valid
	l := &catalog.Layer{
		ID:         lid,
		Name:       m.Name,
		Advertised: m.Advertised,
	}
	if m.ResourceID != nil {
		r, err := s.resourceByID(ctx, *m.ResourceID)
		if err != nil {
			return nil, err
		}
		l.Resource = r
	}
	if m.DefaultStyleID != nil {
		st, err := s.styleByID(ctx, *m.DefaultStyleID)
		if err != nil {
			return nil, err
		}
		l.DefaultStyle = st
	}
	for _, sid := range m.StyleIDs {
		st, err := s.styleByID(ctx, sid)
		if err != nil {
			return nil, err
		}
		l.Styles = append(l.Styles, st)
	}
	return l, nil
}

// ──────────────────────────────────────────────────
// Layer group operations
// ──────────────────────────────────────────────────

func (s *Store) LayerGroups(ctx context.Context) ([]*catalog.LayerGroup, error) {
	var models []layerGroupModel
	if err := s.pgdb.NewSelect(&models).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("palisade: list layer groups: %w", err)
	}
	return s.groupsFromModels(ctx, models)
}

func (s *Store) LayerGroup(ctx context.Context, gid id.LayerGroupID) (*catalog.LayerGroup, error) {
	return s.groupByID(ctx, gid.String(), 0)
}

func (s *Store) LayerGroupByName(ctx context.Context, workspace, name string) (*catalog.LayerGroup, error) {
	m := new(layerGroupModel)
	q := s.pgdb.NewSelect(m).Where("name = ?", name)
	if workspace == "" {
		q = q.Where("workspace_id IS NULL")
	} else {
		ws, err := s.WorkspaceByName(ctx, workspace)
		if err != nil {
			return nil, err
		}
		q = q.Where("workspace_id = ?", ws.ID.String())
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("layer group %q: %w", name, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get layer group by name: %w", err)
	}
	return s.groupFromModel(ctx, m, 0)
}

func (s *Store) LayerGroupsByWorkspace(ctx context.Context, workspace string) ([]*catalog.LayerGroup, error) {
	ws, err := s.WorkspaceByName(ctx, workspace)
	if err != nil {
		return nil, err
	}

	var models []layerGroupModel
	err = s.pgdb.NewSelect(&models).
		Where("workspace_id = ?", ws.ID.String()).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("palisade: list layer groups by workspace: %w", err)
	}
	return s.groupsFromModels(ctx, models)
}

func (s *Store) groupByID(ctx context.Context, gid string, depth int) (*catalog.LayerGroup, error) {
	m := new(layerGroupModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", gid).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("layer group %s: %w", gid, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get layer group: %w", err)
	}
	return s.groupFromModel(ctx, m, depth)
}

func (s *Store) groupsFromModels(ctx context.Context, models []layerGroupModel) ([]*catalog.LayerGroup, error) {
	out := make([]*catalog.LayerGroup, len(models))
	for i := range models {
		g, err := s.groupFromModel(ctx, &models[i], 0)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

func (s *Store) groupFromModel(ctx context.Context, m *layerGroupModel, depth int) (*catalog.LayerGroup, error) {
	if depth > maxMemberDepth {
		return nil, fmt.Errorf("palisade: layer group %q: membership nesting too deep", m.Name)
	}

	gid, _ := id.ParseLayerGroupID(m.ID) //nolint:errcheck // stored IDs are always valid
	g := &catalog.LayerGroup{
		ID:   gid,
		Name: m.Name,
		Mode: catalog.GroupMode(m.Mode),
	}
	if m.WorkspaceID != nil {
		ws, err := s.workspaceByID(ctx, *m.WorkspaceID)
		if err != nil {
			return nil, err
		}
		g.Workspace = ws
	}
	if m.RootLayerID != nil {
		root, err := s.layerByID(ctx, *m.RootLayerID)
		if err != nil {
			return nil, err
		}
		g.RootLayer = root
	}

	for _, ref := range m.Members {
		switch catalog.Kind(ref.Kind) {
		case catalog.KindLayer:
			l, err := s.layerByID(ctx, ref.ID)
			if err != nil {
				return nil, err
			}
			g.Members = append(g.Members, l)
		case catalog.KindLayerGroup:
			sub, err := s.groupByID(ctx, ref.ID, depth+1)
			if err != nil {
				return nil, err
			}
			g.Members = append(g.Members, sub)
		default:
			return nil, fmt.Errorf("%w: layer group %q has a %q member", catalog.ErrInvalid, m.Name, ref.Kind)
		}
	}
	return g, nil
}

// ──────────────────────────────────────────────────
// Style operations
// ──────────────────────────────────────────────────

func (s *Store) Styles(ctx context.Context) ([]*catalog.Style, error) {
	var models []styleModel
	if err := s.pgdb.NewSelect(&models).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("palisade: list styles: %w", err)
	}
	return s.stylesFromModels(ctx, models)
}

func (s *Store) Style(ctx context.Context, sid id.StyleID) (*catalog.Style, error) {
	return s.styleByID(ctx, sid.String())
}

func (s *Store) StyleByName(ctx context.Context, workspace, name string) (*catalog.Style, error) {
	m := new(styleModel)
	q := s.pgdb.NewSelect(m).Where("name = ?", name)
	if workspace == "" {
		q = q.Where("workspace_id IS NULL")
	} else {
		ws, err := s.WorkspaceByName(ctx, workspace)
		if err != nil {
			return nil, err
		}
		q = q.Where("workspace_id = ?", ws.ID.String())
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("style %q: %w", name, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get style by name: %w", err)
	}
	return s.styleFromModel(ctx, m)
}

func (s *Store) StylesByWorkspace(ctx context.Context, workspace string) ([]*catalog.Style, error) {
	ws, err := s.WorkspaceByName(ctx, workspace)
	if err != nil {
		return nil, err
	}

	var models []styleModel
	err = s.pgdb.NewSelect(&models).
		Where("workspace_id = ?", ws.ID.String()).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("palisade: list styles by workspace: %w", err)
	}
	return s.stylesFromModels(ctx, models)
}

func (s *Store) styleByID(ctx context.Context, sid string) (*catalog.Style, error) {
	m := new(styleModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", sid).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("style %s: %w", sid, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get style: %w", err)
	}
	return s.styleFromModel(ctx, m)
}

func (s *Store) stylesFromModels(ctx context.Context, models []styleModel) ([]*catalog.Style, error) {
	out := make([]*catalog.Style, len(models))
	for i := range models {
		st, err := s.styleFromModel(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		out[i] = st
	}
	return out, nil
}

func (s *Store) styleFromModel(ctx context.Context, m *styleModel) (*catalog.Style, error) {
	sid, _ := id.ParseStyleID(m.ID) //nolint:errcheck // stored IDs are always valid
	st := &catalog.Style{
		ID:       sid,
		Name:     m.Name,
		Filename: m.Filename,
	}
	if m.WorkspaceID != nil {
		ws, err := s.workspaceByID(ctx, *m.WorkspaceID)
		if err != nil {
			return nil, err
		}
		st.Workspace = ws
	}
	return st, nil
}

// ──────────────────────────────────────────────────
// Map operations
// ──────────────────────────────────────────────────

func (s *Store) Maps(ctx context.Context) ([]*catalog.Map, error) {
	var models []mapModel
	if err := s.pgdb.NewSelect(&models).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("palisade: list maps: %w", err)
	}
	out := make([]*catalog.Map, len(models))
	for i := range models {
		m, err := s.mapFromModel(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func (s *Store) Map(ctx context.Context, mid id.MapID) (*catalog.Map, error) {
	return s.mapByID(ctx, mid.String())
}

func (s *Store) MapByName(ctx context.Context, name string) (*catalog.Map, error) {
	m := new(mapModel)
	err := s.pgdb.NewSelect(m).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("map %q: %w", name, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get map by name: %w", err)
	}
	return s.mapFromModel(ctx, m)
}

func (s *Store) mapByID(ctx context.Context, mid string) (*catalog.Map, error) {
	m := new(mapModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", mid).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("map %s: %w", mid, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("palisade: get map: %w", err)
	}
	return s.mapFromModel(ctx, m)
}

func (s *Store) mapFromModel(ctx context.Context, m *mapModel) (*catalog.Map, error) {
	mid, _ := id.ParseMapID(m.ID) //nolint:errcheck // stored IDs are always valid
	out := &catalog.Map{
		ID:      mid,
		Name:    m.Name,
		Enabled: m.Enabled,
	}
	for _, lid := range m.LayerIDs {
		l, err := s.layerByID(ctx, lid)
		if err != nil {
			return nil, err
		}
		out.Layers = append(out.Layers, l)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Generic queries
// ──────────────────────────────────────────────────

// List loads all objects of the kind and evaluates the predicate in
// process; pagination applies to the filtered sequence.
func (s *Store) List(ctx context.Context, kind catalog.Kind, filter catalog.Predicate, opts catalog.ListOptions) ([]catalog.Object, error) {
	items, err := s.objectsOfKind(ctx, kind)
	if err != nil {
		return nil, err
	}

	matched := items[:0:0]
	for _, obj := range items {
		if filter.Matches(obj) {
			matched = append(matched, obj)
		}
	}
	return applyPagination(matched, opts), nil
}

func (s *Store) Count(ctx context.Context, kind catalog.Kind, filter catalog.Predicate) (int, error) {
	items, err := s.objectsOfKind(ctx, kind)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, obj := range items {
		if filter.Matches(obj) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Get(ctx context.Context, kind catalog.Kind, filter catalog.Predicate) (catalog.Object, error) {
	items, err := s.objectsOfKind(ctx, kind)
	if err != nil {
		return nil, err
	}

	for _, obj := range items {
		if filter.Matches(obj) {
			return obj, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", kind, catalog.ErrNotFound)
}

func (s *Store) objectsOfKind(ctx context.Context, kind catalog.Kind) ([]catalog.Object, error) {
	switch kind {
	case catalog.KindWorkspace:
		items, err := s.Workspaces(ctx)
		return asObjects(items), err
	case catalog.KindNamespace:
		items, err := s.Namespaces(ctx)
		return asObjects(items), err
	case catalog.KindStore:
		items, err := s.Stores(ctx)
		return asObjects(items), err
	case catalog.KindResource:
		items, err := s.Resources(ctx)
		return asObjects(items), err
	case catalog.KindLayer:
		items, err := s.Layers(ctx)
		return asObjects(items), err
	case catalog.KindLayerGroup:
		items, err := s.LayerGroups(ctx)
		return asObjects(items), err
	case catalog.KindStyle:
		items, err := s.Styles(ctx)
		return asObjects(items), err
	case catalog.KindMap:
		items, err := s.Maps(ctx)
		return asObjects(items), err
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", catalog.ErrInvalid, kind)
	}
}

func asObjects[T catalog.Object](items []T) []catalog.Object {
	out := make([]catalog.Object, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func applyPagination(items []catalog.Object, opts catalog.ListOptions) []catalog.Object {
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return nil
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

// ──────────────────────────────────────────────────
// Mutations
// ──────────────────────────────────────────────────

func (s *Store) Add(ctx context.Context, obj catalog.Object) error {
	if obj.ObjectID().IsNil() {
		return fmt.Errorf("%w: %s has no id", catalog.ErrInvalid, obj.ObjectKind())
	}
	exists, err := s.exists(ctx, obj)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s %q already exists", catalog.ErrInvalid, obj.ObjectKind(), obj.ObjectName())
	}

	m, err := modelOf(obj)
	if err != nil {
		return err
	}
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("palisade: add %s: %w", obj.ObjectKind(), err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, obj catalog.Object) error {
	exists, err := s.exists(ctx, obj)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s %q: %w", obj.ObjectKind(), obj.ObjectName(), catalog.ErrNotFound)
	}

	m, err := modelOf(obj)
	if err != nil {
		return err
	}
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("palisade: save %s: %w", obj.ObjectKind(), err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, obj catalog.Object) error {
	ref, err := tableRef(obj.ObjectKind())
	if err != nil {
		return err
	}

	res, err := s.pgdb.NewDelete(ref).
		Where("id = ?", obj.ObjectID().String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("palisade: remove %s: %w", obj.ObjectKind(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("palisade: remove %s rows: %w", obj.ObjectKind(), err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", obj.ObjectKind(), obj.ObjectName(), catalog.ErrNotFound)
	}
	return nil
}

// Detach reloads the object from the database; hydration always builds
// a fresh object graph, so the result is decoupled by construction.
func (s *Store) Detach(ctx context.Context, obj catalog.Object) (catalog.Object, error) {
	return s.objectByID(ctx, obj.ObjectKind(), obj.ObjectID().String())
}

func (s *Store) Validate(ctx context.Context, obj catalog.Object, isNew bool) error {
	if obj.ObjectName() == "" {
		return fmt.Errorf("%w: %s has no name", catalog.ErrInvalid, obj.ObjectKind())
	}

	exists, err := s.exists(ctx, obj)
	if err != nil {
		return err
	}
	if isNew && exists {
		return fmt.Errorf("%w: %s %q already exists", catalog.ErrInvalid, obj.ObjectKind(), obj.ObjectName())
	}
	if !isNew && !exists {
		return fmt.Errorf("%s %q: %w", obj.ObjectKind(), obj.ObjectName(), catalog.ErrNotFound)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, obj catalog.Object) (bool, error) {
	ref, err := tableRef(obj.ObjectKind())
	if err != nil {
		return false, err
	}

	n, err := s.pgdb.NewSelect(ref).
		Where("id = ?", obj.ObjectID().String()).Count(ctx)
	if err != nil {
		return false, fmt.Errorf("palisade: check %s: %w", obj.ObjectKind(), err)
	}
	return n > 0, nil
}

func (s *Store) objectByID(ctx context.Context, kind catalog.Kind, oid string) (catalog.Object, error) {
	switch kind {
	case catalog.KindWorkspace:
		return s.workspaceByID(ctx, oid)
	case catalog.KindNamespace:
		return s.namespaceByID(ctx, oid)
	case catalog.KindStore:
		return s.storeByID(ctx, oid)
	case catalog.KindResource:
		return s.resourceByID(ctx, oid)
	case catalog.KindLayer:
		return s.layerByID(ctx, oid)
	case catalog.KindLayerGroup:
		return s.groupByID(ctx, oid, 0)
	case catalog.KindStyle:
		return s.styleByID(ctx, oid)
	case catalog.KindMap:
		return s.mapByID(ctx, oid)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", catalog.ErrInvalid, kind)
	}
}

func modelOf(obj catalog.Object) (any, error) {
	switch o := obj.(type) {
	case *catalog.Workspace:
		return workspaceToModel(o), nil
	case *catalog.Namespace:
		return namespaceToModel(o), nil
	case *catalog.Store:
		return storeToModel(o), nil
	case *catalog.Resource:
		return resourceToModel(o), nil
	case *catalog.Layer:
		return layerToModel(o), nil
	case *catalog.LayerGroup:
		return layerGroupToModel(o), nil
	case *catalog.Style:
		return styleToModel(o), nil
	case *catalog.Map:
		return mapToModel(o), nil
	default:
		return nil, fmt.Errorf("%w: unsupported object %T", catalog.ErrInvalid, obj)
	}
}

func tableRef(kind catalog.Kind) (any, error) {
	switch kind {
	case catalog.KindWorkspace:
		return (*workspaceModel)(nil), nil
	case catalog.KindNamespace:
		return (*namespaceModel)(nil), nil
	case catalog.KindStore:
		return (*storeModel)(nil), nil
	case catalog.KindResource:
		return (*resourceModel)(nil), nil
	case catalog.KindLayer:
		return (*layerModel)(nil), nil
	case catalog.KindLayerGroup:
		return (*layerGroupModel)(nil), nil
	case catalog.KindStyle:
		return (*styleModel)(nil), nil
	case catalog.KindMap:
		return (*mapModel)(nil), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", catalog.ErrInvalid, kind)
	}
}
