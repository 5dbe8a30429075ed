package palisade_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mapfort/palisade"
	"github.com/mapfort/palisade/access"
	"github.com/mapfort/palisade/catalog"
	"github.com/mapfort/palisade/id"
	"github.com/mapfort/palisade/store/memory"
)

// stubAccess keys limits by object name, ignoring the principal; tests
// model different principals by swapping limits or context instead.
type stubAccess struct {
	workspaces map[string]*access.WorkspaceLimits
	data       map[string]access.DataLimits
	styles     map[string]*access.StyleLimits
	groups     map[string]*access.GroupLimits
}

func newStubAccess() *stubAccess {
	return &stubAccess{
		workspaces: make(map[string]*access.WorkspaceLimits),
		data:       make(map[string]access.DataLimits),
		styles:     make(map[string]*access.StyleLimits),
		groups:     make(map[string]*access.GroupLimits),
	}
}

func (s *stubAccess) WorkspaceAccess(_ context.Context, _ *access.Principal, ws *catalog.Workspace) (*access.WorkspaceLimits, error) {
	return s.workspaces[ws.Name], nil
}

func (s *stubAccess) DataAccess(_ context.Context, _ *access.Principal, obj catalog.Object) (access.DataLimits, error) {
	return s.data[obj.ObjectName()], nil
}

func (s *stubAccess) StyleAccess(_ context.Context, _ *access.Principal, st *catalog.Style) (*access.StyleLimits, error) {
	return s.styles[st.Name], nil
}

func (s *stubAccess) GroupAccess(_ context.Context, _ *access.Principal, g *catalog.LayerGroup) (*access.GroupLimits, error) {
	return s.groups[g.Name], nil
}

// fixture is a small two-workspace catalog:
//
//	topp/shapes (data store): states, roads (vector layers)
//	nurc/rasters (coverage store): dem (raster layer)
//	styles: point (global), polygon (topp)
//	layer group bundle (global, named): states + roads
type fixture struct {
	storage *memory.Store
	acc     *stubAccess

	topp, nurc           *catalog.Workspace
	shapes, rasters      *catalog.Store
	states, roads, dem   *catalog.Resource
	statesL, roadsL      *catalog.Layer
	demL                 *catalog.Layer
	point, polygon       *catalog.Style
	bundle               *catalog.LayerGroup
}

func newTestEngine(t *testing.T, opts ...palisade.Option) (*palisade.Engine, *fixture) {
	t.Helper()

	f := &fixture{storage: memory.New(), acc: newStubAccess()}
	ctx := context.Background()

	f.topp = &catalog.Workspace{ID: id.NewWorkspaceID(), Name: "topp"}
	f.nurc = &catalog.Workspace{ID: id.NewWorkspaceID(), Name: "nurc"}
	toppNS := &catalog.Namespace{ID: id.NewNamespaceID(), Prefix: "topp", URI: "http://topp.example.com"}
	nurcNS := &catalog.Namespace{ID: id.NewNamespaceID(), Prefix: "nurc", URI: "http://nurc.example.com"}

	f.shapes = &catalog.Store{ID: id.NewStoreID(), Name: "shapes", Kind: catalog.StoreData, Workspace: f.topp, Enabled: true}
	f.rasters = &catalog.Store{ID: id.NewStoreID(), Name: "rasters", Kind: catalog.StoreCoverage, Workspace: f.nurc, Enabled: true}

	f.states = &catalog.Resource{ID: id.NewResourceID(), Name: "states", Kind: catalog.ResourceVector, Namespace: toppNS, Store: f.shapes, Enabled: true}
	f.roads = &catalog.Resource{ID: id.NewResourceID(), Name: "roads", Kind: catalog.ResourceVector, Namespace: toppNS, Store: f.shapes, Enabled: true}
	f.dem = &catalog.Resource{ID: id.NewResourceID(), Name: "dem", Kind: catalog.ResourceRaster, Namespace: nurcNS, Store: f.rasters, Enabled: true}

	f.point = &catalog.Style{ID: id.NewStyleID(), Name: "point"}
	f.polygon = &catalog.Style{ID: id.NewStyleID(), Name: "polygon", Workspace: f.topp}

	f.statesL = &catalog.Layer{ID: id.NewLayerID(), Name: "states", Resource: f.states, DefaultStyle: f.polygon, Advertised: true}
	f.roadsL = &catalog.Layer{ID: id.NewLayerID(), Name: "roads", Resource: f.roads, DefaultStyle: f.point, Advertised: true}
	f.demL = &catalog.Layer{ID: id.NewLayerID(), Name: "dem", Resource: f.dem, DefaultStyle: f.point, Advertised: true}

	f.bundle = &catalog.LayerGroup{
		ID:      id.NewLayerGroupID(),
		Name:    "bundle",
		Mode:    catalog.GroupNamed,
		Members: []catalog.Object{f.statesL, f.roadsL},
	}

	objects := []catalog.Object{
		f.topp, f.nurc, toppNS, nurcNS,
		f.shapes, f.rasters,
		f.states, f.roads, f.dem,
		f.point, f.polygon,
		f.statesL, f.roadsL, f.demL,
		f.bundle,
	}
	for _, obj := range objects {
		if err := f.storage.Add(ctx, obj); err != nil {
			t.Fatalf("Add(%s): %v", obj.ObjectName(), err)
		}
	}

	opts = append([]palisade.Option{
		palisade.WithStorage(f.storage),
		palisade.WithAccessManager(f.acc),
	}, opts...)

	eng, err := palisade.NewEngine(opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng, f
}

func anonCtx() context.Context {
	return context.Background()
}

func userCtx(authorities ...string) context.Context {
	return palisade.WithPrincipal(context.Background(), &access.Principal{
		Name:        "tester",
		Authorities: authorities,
	})
}

func hideReadExclude() *access.VectorLimits {
	return &access.VectorLimits{CatalogMode: access.ModeHide, Read: access.Exclude}
}

func TestNewEngineRequiresCollaborators(t *testing.T) {
	if _, err := palisade.NewEngine(); err == nil {
		t.Error("expected error without storage")
	}
	if _, err := palisade.NewEngine(palisade.WithStorage(memory.New())); err == nil {
		t.Error("expected error without access manager")
	}
}

func TestListingsFilterAndPreserveOrder(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = hideReadExclude()

	layers, err := eng.Layers(anonCtx())
	if err != nil {
		t.Fatalf("Layers: %v", err)
	}
	// Storage orders by name: dem, roads, states — roads is hidden.
	if len(layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(layers))
	}
	if layers[0].Name != "dem" || layers[1].Name != "states" {
		t.Errorf("unexpected order: %s, %s", layers[0].Name, layers[1].Name)
	}
	if layers[0] != f.demL {
		t.Error("unrestricted layer should be returned by reference")
	}
}

func TestListingIsRepeatable(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = hideReadExclude()

	first, err := eng.Layers(anonCtx())
	if err != nil {
		t.Fatalf("Layers: %v", err)
	}
	second, err := eng.Layers(anonCtx())
	if err != nil {
		t.Fatalf("Layers: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Errorf("position %d: %q vs %q", i, first[i].Name, second[i].Name)
		}
	}
}

func TestHiddenSingleLookupIsNotFound(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = hideReadExclude()

	_, err := eng.LayerByName(anonCtx(), "roads")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound for hidden layer, got %v", err)
	}

	_, err = eng.Layer(anonCtx(), f.roadsL.ID)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound by ID too, got %v", err)
	}
}

func TestAdminSeesEverything(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = hideReadExclude()
	f.acc.workspaces["topp"] = &access.WorkspaceLimits{CatalogMode: access.ModeHide}

	ctx := userCtx("admin")

	layers, err := eng.Layers(ctx)
	if err != nil {
		t.Fatalf("Layers: %v", err)
	}
	if len(layers) != 3 {
		t.Errorf("expected all 3 layers for admin, got %d", len(layers))
	}
	for _, l := range layers {
		if l.Restricted != nil {
			t.Errorf("admin should get %q undecorated", l.Name)
		}
	}

	ws, err := eng.WorkspaceByName(ctx, "topp")
	if err != nil {
		t.Fatalf("WorkspaceByName: %v", err)
	}
	if ws != f.topp {
		t.Error("admin should get the original workspace")
	}
}

func TestWorkspaceRoutingHidesDependents(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.workspaces["topp"] = &access.WorkspaceLimits{CatalogMode: access.ModeHide}

	ctx := anonCtx()

	if _, err := eng.WorkspaceByName(ctx, "topp"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("workspace should be hidden, got %v", err)
	}
	if _, err := eng.NamespaceByPrefix(ctx, "topp"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("namespace should follow its workspace, got %v", err)
	}
	if _, err := eng.StoreByName(ctx, "topp", "shapes"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("store should follow its workspace, got %v", err)
	}

	stores, err := eng.Stores(ctx)
	if err != nil {
		t.Fatalf("Stores: %v", err)
	}
	if len(stores) != 1 || stores[0] != f.rasters {
		t.Errorf("expected only the nurc store, got %d", len(stores))
	}
}

func TestLayersByStyleAndResource(t *testing.T) {
	eng, f := newTestEngine(t)

	byStyle, err := eng.LayersByStyle(anonCtx(), f.point)
	if err != nil {
		t.Fatalf("LayersByStyle: %v", err)
	}
	if len(byStyle) != 2 {
		t.Fatalf("expected dem and roads, got %d layers", len(byStyle))
	}

	f.acc.data["roads"] = hideReadExclude()
	byStyle, err = eng.LayersByStyle(anonCtx(), f.point)
	if err != nil {
		t.Fatalf("LayersByStyle: %v", err)
	}
	if len(byStyle) != 1 || byStyle[0].Name != "dem" {
		t.Errorf("hidden layer should drop out of style association")
	}

	byRes, err := eng.LayersByResource(anonCtx(), f.states)
	if err != nil {
		t.Fatalf("LayersByResource: %v", err)
	}
	if len(byRes) != 1 || byRes[0] != f.statesL {
		t.Errorf("expected the states layer, got %d", len(byRes))
	}
}

func TestMapsBypassAuthorization(t *testing.T) {
	eng, f := newTestEngine(t)
	ctx := context.Background()

	m := &catalog.Map{ID: id.NewMapID(), Name: "overview", Layers: []*catalog.Layer{f.statesL}, Enabled: true}
	if err := f.storage.Add(ctx, m); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := eng.MapByName(anonCtx(), "overview")
	if err != nil {
		t.Fatalf("MapByName: %v", err)
	}
	if got != m {
		t.Error("maps should pass through untouched")
	}
}
