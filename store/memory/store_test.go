package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mapfort/palisade/catalog"
	"github.com/mapfort/palisade/id"
	"github.com/mapfort/palisade/store/memory"
)

func newFixture(t *testing.T) (*memory.Store, *catalog.Workspace, *catalog.Layer) {
	t.Helper()
	s := memory.New()
	ctx := context.Background()

	ws := &catalog.Workspace{ID: id.NewWorkspaceID(), Name: "topp"}
	st := &catalog.Store{ID: id.NewStoreID(), Name: "shapes", Kind: catalog.StoreData, Workspace: ws, Enabled: true}
	res := &catalog.Resource{ID: id.NewResourceID(), Name: "states", Kind: catalog.ResourceVector, Store: st, Enabled: true}
	l := &catalog.Layer{ID: id.NewLayerID(), Name: "states", Resource: res, Advertised: true}

	for _, obj := range []catalog.Object{ws, st, res, l} {
		if err := s.Add(ctx, obj); err != nil {
			t.Fatalf("Add(%s): %v", obj.ObjectName(), err)
		}
	}
	return s, ws, l
}

func TestLookupByIDAndName(t *testing.T) {
	s, ws, l := newFixture(t)
	ctx := context.Background()

	got, err := s.Workspace(ctx, ws.ID)
	if err != nil {
		t.Fatalf("Workspace: %v", err)
	}
	if got != ws {
		t.Error("expected the stored workspace pointer back")
	}

	byName, err := s.LayerByName(ctx, "states")
	if err != nil {
		t.Fatalf("LayerByName: %v", err)
	}
	if byName != l {
		t.Error("expected the stored layer pointer back")
	}
}

func TestNotFound(t *testing.T) {
	s, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := s.Workspace(ctx, id.NewWorkspaceID())
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err = s.StyleByName(ctx, "", "missing")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddDuplicateRejected(t *testing.T) {
	s, ws, _ := newFixture(t)
	if err := s.Add(context.Background(), ws); !errors.Is(err, catalog.ErrInvalid) {
		t.Errorf("expected ErrInvalid on duplicate add, got %v", err)
	}
}

func TestSaveRequiresExisting(t *testing.T) {
	s, _, _ := newFixture(t)
	ctx := context.Background()

	stray := &catalog.Style{ID: id.NewStyleID(), Name: "point"}
	if err := s.Save(ctx, stray); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound saving unknown object, got %v", err)
	}

	if err := s.Add(ctx, stray); err != nil {
		t.Fatalf("Add: %v", err)
	}
	stray.Filename = "point.sld"
	if err := s.Save(ctx, stray); err != nil {
		t.Errorf("Save: %v", err)
	}
}

func TestRemove(t *testing.T) {
	s, _, l := newFixture(t)
	ctx := context.Background()

	if err := s.Remove(ctx, l); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Layer(ctx, l.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
	if err := s.Remove(ctx, l); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound removing twice, got %v", err)
	}
}

func TestDetachReturnsCopy(t *testing.T) {
	s, _, l := newFixture(t)
	ctx := context.Background()

	detached, err := s.Detach(ctx, l)
	if err != nil {
		t.Fatalf("Detach: %v", err)
	}
	dup, ok := detached.(*catalog.Layer)
	if !ok {
		t.Fatalf("expected *catalog.Layer, got %T", detached)
	}
	if dup == l {
		t.Fatal("Detach should return a distinct copy")
	}

	dup.Name = "renamed"
	stored, err := s.Layer(ctx, l.ID)
	if err != nil {
		t.Fatalf("Layer: %v", err)
	}
	if stored.Name != "states" {
		t.Error("mutating the detached copy should not affect the stored object")
	}
}

func TestListOrderAndPagination(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	for _, name := range []string{"charlie", "alpha", "bravo"} {
		ws := &catalog.Workspace{ID: id.NewWorkspaceID(), Name: name}
		if err := s.Add(ctx, ws); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	all, err := s.List(ctx, catalog.KindWorkspace, nil, catalog.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha", "bravo", "charlie"}
	if len(all) != len(want) {
		t.Fatalf("expected %d workspaces, got %d", len(want), len(all))
	}
	for i, obj := range all {
		if obj.ObjectName() != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], obj.ObjectName())
		}
	}

	page, err := s.List(ctx, catalog.KindWorkspace, nil, catalog.ListOptions{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("List paged: %v", err)
	}
	if len(page) != 1 || page[0].ObjectName() != "bravo" {
		t.Errorf("expected [bravo], got %v", page)
	}
}

func TestListWithPredicateAndCount(t *testing.T) {
	s, _, _ := newFixture(t)
	ctx := context.Background()

	n, err := s.Count(ctx, catalog.KindLayer, catalog.NameIs("states"))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 matching layer, got %d", n)
	}

	obj, err := s.Get(ctx, catalog.KindLayer, catalog.NameIs("states"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if obj.ObjectName() != "states" {
		t.Errorf("unexpected object %q", obj.ObjectName())
	}

	_, err = s.Get(ctx, catalog.KindLayer, catalog.NameIs("absent"))
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	s, ws, _ := newFixture(t)
	ctx := context.Background()

	if err := s.Validate(ctx, ws, true); !errors.Is(err, catalog.ErrInvalid) {
		t.Errorf("expected ErrInvalid validating existing object as new, got %v", err)
	}
	if err := s.Validate(ctx, ws, false); err != nil {
		t.Errorf("Validate existing: %v", err)
	}

	nameless := &catalog.Workspace{ID: id.NewWorkspaceID()}
	if err := s.Validate(ctx, nameless, true); !errors.Is(err, catalog.ErrInvalid) {
		t.Errorf("expected ErrInvalid for empty name, got %v", err)
	}
}
