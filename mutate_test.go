package palisade_test

import (
	"errors"
	"testing"

	"github.com/mapfort/palisade"
	"github.com/mapfort/palisade/access"
	"github.com/mapfort/palisade/catalog"
	"github.com/mapfort/palisade/id"
)

func TestSaveThroughChallengedViewIsRefused(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = &access.VectorLimits{CatalogMode: access.ModeChallenge, Write: access.Exclude}

	view, err := eng.LayerByName(anonCtx(), "roads")
	if err != nil {
		t.Fatalf("LayerByName: %v", err)
	}

	if err := eng.Save(anonCtx(), view); !errors.Is(err, palisade.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
	if err := eng.Save(userCtx("viewer"), view); !errors.Is(err, palisade.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
	if err := eng.Remove(userCtx("viewer"), view); !errors.Is(err, palisade.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied on Remove, got %v", err)
	}
}

func TestSaveThroughHiddenResponseViewIsIgnored(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = hideWriteExclude()

	view, err := eng.LayerByName(anonCtx(), "roads")
	if err != nil {
		t.Fatalf("LayerByName: %v", err)
	}

	if err := eng.Remove(anonCtx(), view); err != nil {
		t.Fatalf("Remove through a hide-response view should be silent: %v", err)
	}

	// The mutation was swallowed, not applied.
	if _, err := f.storage.Layer(anonCtx(), f.roadsL.ID); err != nil {
		t.Errorf("layer should still exist, got %v", err)
	}
}

func TestSaveUnwrapsViews(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = &access.VectorLimits{
		CatalogMode: access.ModeHide,
		Read:        access.FilterFunc(func(any) bool { return true }),
	}

	// Read-write with content limits: wrapped but writable.
	view, err := eng.LayerByName(anonCtx(), "roads")
	if err != nil {
		t.Fatalf("LayerByName: %v", err)
	}
	if view.Restricted == nil || !view.Restricted.Policy.CanWrite() {
		t.Fatal("expected a writable view")
	}

	if err := eng.Save(anonCtx(), view); err != nil {
		t.Fatalf("Save: %v", err)
	}

	stored, err := f.storage.Layer(anonCtx(), f.roadsL.ID)
	if err != nil {
		t.Fatalf("Layer: %v", err)
	}
	if stored != f.roadsL {
		t.Error("the backend should receive the unwrapped original")
	}
	if stored.Restricted != nil {
		t.Error("enforcement state must never be persisted")
	}
}

func TestAddAndValidatePassThrough(t *testing.T) {
	eng, f := newTestEngine(t)
	ctx := anonCtx()

	ws := &catalog.Workspace{ID: id.NewWorkspaceID(), Name: "sf"}
	if err := eng.Add(ctx, ws); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := f.storage.WorkspaceByName(ctx, "sf"); err != nil {
		t.Errorf("added workspace should be in storage: %v", err)
	}

	if err := eng.Validate(ctx, ws, true); !errors.Is(err, catalog.ErrInvalid) {
		t.Errorf("expected ErrInvalid validating a stored object as new, got %v", err)
	}
	if err := eng.Validate(ctx, ws, false); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDetachUnwrapsFirst(t *testing.T) {
	eng, f := newTestEngine(t)
	f.acc.data["roads"] = hideWriteExclude()

	view, err := eng.LayerByName(anonCtx(), "roads")
	if err != nil {
		t.Fatalf("LayerByName: %v", err)
	}

	detached, err := eng.Detach(anonCtx(), view)
	if err != nil {
		t.Fatalf("Detach: %v", err)
	}
	dup, ok := detached.(*catalog.Layer)
	if !ok {
		t.Fatalf("expected a layer, got %T", detached)
	}
	if dup == f.roadsL || dup == view {
		t.Error("Detach should return a fresh copy")
	}
	if dup.Restricted != nil {
		t.Error("detached copies carry no restriction")
	}
}
