package rules_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mapfort/palisade/access"
	"github.com/mapfort/palisade/access/rules"
	"github.com/mapfort/palisade/catalog"
	"github.com/mapfort/palisade/id"
)

func fixtureLayer(workspace, name string, kind catalog.ResourceKind) *catalog.Layer {
	ws := &catalog.Workspace{ID: id.NewWorkspaceID(), Name: workspace}
	st := &catalog.Store{ID: id.NewStoreID(), Name: workspace + "-store", Kind: catalog.StoreData, Workspace: ws}
	res := &catalog.Resource{ID: id.NewResourceID(), Name: name, Kind: kind, Store: st}
	return &catalog.Layer{ID: id.NewLayerID(), Name: name, Resource: res}
}

func TestLoad(t *testing.T) {
	doc := `
mode: mixed
rules:
  - workspace: topp
    layer: "*"
    access: r
    roles: [states_reader]
  - workspace: topp
    layer: states
    access: w
    roles: ["*"]
`
	m, err := rules.Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	l := fixtureLayer("topp", "states", catalog.ResourceVector)
	dl, err := m.DataAccess(context.Background(), nil, l)
	if err != nil {
		t.Fatalf("DataAccess: %v", err)
	}
	if dl == nil {
		t.Fatal("expected limits for a ruled layer")
	}
	if dl.Mode() != access.ModeMixed {
		t.Errorf("expected mixed mode, got %v", dl.Mode())
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"bad mode":   "mode: nope\nrules: []\n",
		"bad access": "rules:\n  - workspace: a\n    layer: b\n    access: x\n    roles: [r]\n",
		"no roles":   "rules:\n  - workspace: a\n    layer: b\n    access: r\n    roles: []\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := rules.Load(strings.NewReader(doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUnruledObjectsAreUnrestricted(t *testing.T) {
	m := rules.New(access.ModeHide, rules.Rule{
		Workspace: "topp", Layer: "*", Access: rules.AccessRead, Roles: []string{"reader"},
	})
	ctx := context.Background()

	l := fixtureLayer("sf", "roads", catalog.ResourceVector)
	dl, err := m.DataAccess(ctx, nil, l)
	if err != nil {
		t.Fatalf("DataAccess: %v", err)
	}
	if dl != nil {
		t.Error("expected nil limits for an unruled layer")
	}

	wl, err := m.WorkspaceAccess(ctx, nil, &catalog.Workspace{Name: "sf"})
	if err != nil {
		t.Fatalf("WorkspaceAccess: %v", err)
	}
	if wl != nil {
		t.Error("expected nil limits for an unruled workspace")
	}
}

func TestRoleGating(t *testing.T) {
	m := rules.New(access.ModeHide,
		rules.Rule{Workspace: "topp", Layer: "*", Access: rules.AccessRead, Roles: []string{"reader"}},
		rules.Rule{Workspace: "topp", Layer: "*", Access: rules.AccessWrite, Roles: []string{"editor"}},
	)
	ctx := context.Background()
	l := fixtureLayer("topp", "states", catalog.ResourceVector)

	reader := &access.Principal{Name: "r", Authorities: []string{"reader"}}
	editor := &access.Principal{Name: "e", Authorities: []string{"reader", "editor"}}

	check := func(p *access.Principal, wantRead, wantWrite bool) {
		t.Helper()
		dl, err := m.DataAccess(ctx, p, l)
		if err != nil {
			t.Fatalf("DataAccess: %v", err)
		}
		vl, ok := dl.(*access.VectorLimits)
		if !ok {
			t.Fatalf("expected vector limits, got %T", dl)
		}
		if (vl.Read != access.Exclude) != wantRead {
			t.Errorf("read allowed = %v, want %v", vl.Read != access.Exclude, wantRead)
		}
		if (vl.Write != access.Exclude) != wantWrite {
			t.Errorf("write allowed = %v, want %v", vl.Write != access.Exclude, wantWrite)
		}
	}

	check(nil, false, false)
	check(reader, true, false)
	check(editor, true, true)
}

func TestSpecificRuleWins(t *testing.T) {
	m := rules.New(access.ModeHide,
		rules.Rule{Workspace: "topp", Layer: "*", Access: rules.AccessRead, Roles: []string{"reader"}},
		rules.Rule{Workspace: "topp", Layer: "public", Access: rules.AccessRead, Roles: []string{"*"}},
	)
	ctx := context.Background()

	dl, err := m.DataAccess(ctx, nil, fixtureLayer("topp", "public", catalog.ResourceVector))
	if err != nil {
		t.Fatalf("DataAccess: %v", err)
	}
	vl := dl.(*access.VectorLimits)
	if vl.Read == access.Exclude {
		t.Error("layer-specific wildcard-role rule should override the workspace rule")
	}
}

func TestRasterAndWMSLimits(t *testing.T) {
	m := rules.New(access.ModeHide, rules.Rule{
		Workspace: "nurc", Layer: "*", Access: rules.AccessRead, Roles: []string{"raster_reader"},
	})
	ctx := context.Background()

	dl, err := m.DataAccess(ctx, nil, fixtureLayer("nurc", "dem", catalog.ResourceRaster))
	if err != nil {
		t.Fatalf("DataAccess: %v", err)
	}
	if _, ok := dl.(*access.RasterLimits); !ok {
		t.Errorf("expected raster limits, got %T", dl)
	}

	dl, err = m.DataAccess(ctx, nil, fixtureLayer("nurc", "mosaic", catalog.ResourceWMS))
	if err != nil {
		t.Fatalf("DataAccess: %v", err)
	}
	if _, ok := dl.(*access.WMSLimits); !ok {
		t.Errorf("expected WMS limits, got %T", dl)
	}
}

func TestAdminDefaultsToDenied(t *testing.T) {
	m := rules.New(access.ModeHide,
		rules.Rule{Workspace: "topp", Layer: "*", Access: rules.AccessAdmin, Roles: []string{"topp_admin"}},
	)
	ctx := context.Background()
	ws := &catalog.Workspace{Name: "topp"}

	wl, err := m.WorkspaceAccess(ctx, &access.Principal{Name: "u", Authorities: []string{"reader"}}, ws)
	if err != nil {
		t.Fatalf("WorkspaceAccess: %v", err)
	}
	if wl == nil || wl.Adminable {
		t.Error("admin should require an explicit grant")
	}

	wl, err = m.WorkspaceAccess(ctx, &access.Principal{Name: "a", Authorities: []string{"topp_admin"}}, ws)
	if err != nil {
		t.Fatalf("WorkspaceAccess: %v", err)
	}
	if wl == nil || !wl.Adminable {
		t.Error("expected admin grant for topp_admin")
	}
}

func TestStyleAndGroupFollowWorkspaceReadability(t *testing.T) {
	m := rules.New(access.ModeChallenge,
		rules.Rule{Workspace: "secret", Layer: "*", Access: rules.AccessRead, Roles: []string{"insider"}},
	)
	ctx := context.Background()
	ws := &catalog.Workspace{Name: "secret"}

	sl, err := m.StyleAccess(ctx, nil, &catalog.Style{Name: "classified", Workspace: ws})
	if err != nil {
		t.Fatalf("StyleAccess: %v", err)
	}
	if sl == nil || sl.CatalogMode != access.ModeChallenge {
		t.Error("expected style limits for an unreadable workspace")
	}

	gl, err := m.GroupAccess(ctx, nil, &catalog.LayerGroup{Name: "bundle", Workspace: ws})
	if err != nil {
		t.Fatalf("GroupAccess: %v", err)
	}
	if gl == nil {
		t.Error("expected group limits for an unreadable workspace")
	}

	insider := &access.Principal{Name: "i", Authorities: []string{"insider"}}
	sl, err = m.StyleAccess(ctx, insider, &catalog.Style{Name: "classified", Workspace: ws})
	if err != nil {
		t.Fatalf("StyleAccess: %v", err)
	}
	if sl != nil {
		t.Error("insider should see workspace styles unrestricted")
	}

	if got, err := m.StyleAccess(ctx, nil, &catalog.Style{Name: "global"}); err != nil || got != nil {
		t.Errorf("global styles should stay unrestricted, got %v, %v", got, err)
	}
}
