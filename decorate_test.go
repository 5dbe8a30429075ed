package palisade_test

import (
	"testing"

	"github.com/mapfort/palisade"
	"github.com/mapfort/palisade/access"
	"github.com/mapfort/palisade/catalog"
	"github.com/mapfort/palisade/id"
)

func hideWriteExclude() *access.VectorLimits {
	return &access.VectorLimits{CatalogMode: access.ModeHide, Write: access.Exclude}
}

func TestSecureUnrestrictedIsIdentity(t *testing.T) {
	eng, f := newTestEngine(t)

	got, err := eng.Secure(anonCtx(), f.statesL)
	if err != nil {
		t.Fatalf("Secure: %v", err)
	}
	if got != catalog.Object(f.statesL) {
		t.Error("unrestricted objects should come back untouched")
	}
}

func TestSecureHiddenIsAbsent(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = hideReadExclude()

	got, err := eng.Secure(anonCtx(), f.roadsL)
	if err != nil {
		t.Fatalf("Secure: %v", err)
	}
	if got != nil {
		t.Errorf("hidden objects should be absent, got %v", got)
	}
}

func TestSecureWrapsReadOnlyLayer(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = hideWriteExclude()

	view, err := eng.LayerByName(anonCtx(), "roads")
	if err != nil {
		t.Fatalf("LayerByName: %v", err)
	}
	if view == f.roadsL {
		t.Fatal("a restricted layer should be wrapped, not returned directly")
	}
	if view.Restricted == nil {
		t.Fatal("view should carry its restriction")
	}
	if view.Restricted.Policy.Level != access.LevelReadOnly {
		t.Errorf("expected read-only, got %v", view.Restricted.Policy.Level)
	}
	if view.Restricted.Origin != catalog.Object(f.roadsL) {
		t.Error("view should record its origin")
	}
	if view.Name != f.roadsL.Name || view.ID != f.roadsL.ID {
		t.Error("view should mirror the original's fields")
	}
}

func TestSecureIsIdempotent(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = hideWriteExclude()

	view, err := eng.LayerByName(anonCtx(), "roads")
	if err != nil {
		t.Fatalf("LayerByName: %v", err)
	}

	again, err := eng.Secure(anonCtx(), view)
	if err != nil {
		t.Fatalf("Secure: %v", err)
	}
	if again != catalog.Object(view) {
		t.Error("securing a view twice should be a no-op")
	}
}

func TestSecureStoreKinds(t *testing.T) {
	eng, f := newTestEngine(t)
	readOnly := &access.WorkspaceLimits{CatalogMode: access.ModeHide, Readable: true}
	f.acc.workspaces["topp"] = readOnly
	f.acc.workspaces["nurc"] = readOnly

	// A read-only data store is wrapped so writes can be policed.
	shapes, err := eng.StoreByName(anonCtx(), "topp", "shapes")
	if err != nil {
		t.Fatalf("StoreByName: %v", err)
	}
	if shapes == f.shapes || shapes.Restricted == nil {
		t.Error("expected a wrapped data store")
	}

	// A read-only coverage store has nothing writable to police.
	rasters, err := eng.StoreByName(anonCtx(), "nurc", "rasters")
	if err != nil {
		t.Fatalf("StoreByName: %v", err)
	}
	if rasters != f.rasters {
		t.Error("expected the coverage store untouched")
	}
}

func TestSecureResourceKeepsContentLimits(t *testing.T) {
	eng, f := newTestEngine(t)
	onlyPaved := access.FilterFunc(func(v any) bool {
		s, _ := v.(string)
		return s == "paved"
	})
	f.acc.data["roads"] = &access.VectorLimits{
		CatalogMode: access.ModeHide,
		Read:        onlyPaved,
	}

	view, err := eng.ResourceByName(anonCtx(), "topp", "roads")
	if err != nil {
		t.Fatalf("ResourceByName: %v", err)
	}
	if view == f.roads {
		t.Fatal("content limits require a view even at full access level")
	}

	rf := palisade.ReadFilter(view)
	if !rf.Allows("paved") || rf.Allows("gravel") {
		t.Error("read filter should be the one from the limits")
	}
}

func TestReadWriteFilters(t *testing.T) {
	eng, f := newTestEngine(t)

	if palisade.ReadFilter(f.statesL) != access.Include {
		t.Error("originals read unfiltered")
	}
	if palisade.WriteFilter(f.statesL) != access.Include {
		t.Error("originals write unfiltered")
	}

	f.acc.data["roads"] = hideWriteExclude()
	view, err := eng.LayerByName(anonCtx(), "roads")
	if err != nil {
		t.Fatalf("LayerByName: %v", err)
	}
	if palisade.WriteFilter(view) != access.Exclude {
		t.Error("read-only views write nothing")
	}
	if palisade.ReadFilter(view) != access.Include {
		t.Error("read-only views still read unfiltered")
	}

	f.acc.data["states"] = &access.VectorLimits{CatalogMode: access.ModeChallenge, Read: access.Exclude}
	meta, err := eng.LayerByName(anonCtx(), "states")
	if err != nil {
		t.Fatalf("LayerByName: %v", err)
	}
	if palisade.ReadFilter(meta) != access.Exclude {
		t.Error("metadata views read nothing")
	}
	if palisade.WriteFilter(meta) != access.Exclude {
		t.Error("metadata views write nothing")
	}
}

func TestSecureGroupDropsHiddenMembers(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = hideReadExclude()

	view, err := eng.LayerGroupByName(anonCtx(), "", "bundle")
	if err != nil {
		t.Fatalf("LayerGroupByName: %v", err)
	}
	if view == f.bundle {
		t.Fatal("a group with dropped members must be wrapped")
	}
	if len(view.Members) != 1 || view.Members[0] != catalog.Object(f.statesL) {
		t.Errorf("expected only the states layer, got %d members", len(view.Members))
	}
	if view.Restricted == nil || view.Restricted.Origin != catalog.Object(f.bundle) {
		t.Error("group view should record its origin")
	}
	if len(f.bundle.Members) != 2 {
		t.Error("the original group must not be mutated")
	}
}

func TestSecureGroupWrapsChangedMembers(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = hideWriteExclude()

	view, err := eng.LayerGroupByName(anonCtx(), "", "bundle")
	if err != nil {
		t.Fatalf("LayerGroupByName: %v", err)
	}
	if view == f.bundle {
		t.Fatal("a group with substituted members must be wrapped")
	}
	if len(view.Members) != 2 {
		t.Fatalf("expected both members, got %d", len(view.Members))
	}

	roads, ok := view.Members[1].(*catalog.Layer)
	if !ok {
		t.Fatalf("expected a layer member, got %T", view.Members[1])
	}
	if roads == f.roadsL || roads.Restricted == nil {
		t.Error("the restricted member should be a view")
	}
	if view.Members[0] != catalog.Object(f.statesL) {
		t.Error("the unrestricted member should pass through by reference")
	}
}

func TestSecureEarthObservationRoot(t *testing.T) {
	eng, f := newTestEngine(t)
	ctx := anonCtx()

	eo := &catalog.LayerGroup{
		ID:        id.NewLayerGroupID(),
		Name:      "mission",
		Mode:      catalog.GroupEarthObservation,
		RootLayer: f.roadsL,
		Members:   []catalog.Object{f.statesL},
	}
	if err := f.storage.Add(ctx, eo); err != nil {
		t.Fatalf("Add: %v", err)
	}

	f.acc.data["roads"] = hideReadExclude()

	got, err := eng.Secure(ctx, eo)
	if err != nil {
		t.Fatalf("Secure: %v", err)
	}
	if got != nil {
		t.Error("a hidden root layer should hide the whole group")
	}

	f.acc.data["roads"] = hideWriteExclude()
	got, err = eng.Secure(ctx, eo)
	if err != nil {
		t.Fatalf("Secure: %v", err)
	}
	view, ok := got.(*catalog.LayerGroup)
	if !ok {
		t.Fatalf("expected a layer group, got %T", got)
	}
	if view == eo {
		t.Fatal("a substituted root layer must wrap the group")
	}
	if view.RootLayer == f.roadsL || view.RootLayer.Restricted == nil {
		t.Error("the root layer should be a restricted view")
	}
}

func TestUnwrap(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = hideWriteExclude()

	view, err := eng.LayerByName(anonCtx(), "roads")
	if err != nil {
		t.Fatalf("LayerByName: %v", err)
	}

	if got := palisade.Unwrap(view); got != catalog.Object(f.roadsL) {
		t.Errorf("Unwrap should return the original, got %v", got)
	}
	if got := palisade.UnwrapLayer(view); got != f.roadsL {
		t.Errorf("UnwrapLayer should return the original, got %v", got)
	}

	// Unwrapping an original is a no-op.
	if got := palisade.Unwrap(f.statesL); got != catalog.Object(f.statesL) {
		t.Errorf("Unwrap of an original should be a no-op, got %v", got)
	}
	if palisade.UnwrapLayer(nil) != nil {
		t.Error("UnwrapLayer(nil) should be nil")
	}
}
