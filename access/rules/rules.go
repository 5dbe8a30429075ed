// Package rules provides a declarative, role-based AccessManager.
// Rules restrict read, write or admin access on workspace/layer
// patterns to sets of roles; anything no rule matches stays
// unrestricted. Rule sets can be built in code or loaded from YAML.
package rules

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mapfort/palisade"
	"github.com/mapfort/palisade/access"
	"github.com/mapfort/palisade/catalog"
)

// Compile-time interface check.
var _ palisade.AccessManager = (*Manager)(nil)

// Access names the capability a rule restricts.
type Access string

const (
	// AccessRead restricts reading.
	AccessRead Access = "r"

	// AccessWrite restricts writing.
	AccessWrite Access = "w"

	// AccessAdmin grants workspace administration. Unlike read and
	// write, administration is denied unless a rule grants it.
	AccessAdmin Access = "a"
)

// Rule restricts one capability on the objects matching its
// workspace/layer patterns to the listed roles. A pattern is either an
// exact name or "*"; a role list containing "*" admits everyone.
type Rule struct {
	Workspace string   `yaml:"workspace"`
	Layer     string   `yaml:"layer"`
	Access    Access   `yaml:"access"`
	Roles     []string `yaml:"roles"`
}

func (r Rule) matches(workspace, layer string) bool {
	return tokenMatch(r.Workspace, workspace) && tokenMatch(r.Layer, layer)
}

// specificity orders overlapping rules: an exact workspace outranks a
// wildcard, and an exact layer breaks ties.
func (r Rule) specificity() int {
	s := 0
	if r.Workspace != "*" {
		s += 2
	}
	if r.Layer != "*" {
		s++
	}
	return s
}

func (r Rule) admits(p *access.Principal) bool {
	for _, role := range r.Roles {
		if role == "*" || p.HasAuthority(role) {
			return true
		}
	}
	return false
}

func tokenMatch(pattern, name string) bool {
	return pattern == "*" || pattern == name
}

// Manager evaluates a rule set under a single catalog mode.
type Manager struct {
	mode  access.Mode
	rules []Rule
}

// New creates a Manager from rules built in code.
func New(mode access.Mode, rules ...Rule) *Manager {
	return &Manager{mode: mode, rules: rules}
}

type ruleFile struct {
	Mode  access.Mode `yaml:"mode"`
	Rules []Rule      `yaml:"rules"`
}

// Load reads a YAML rule set:
//
//	mode: hide
//	rules:
//	  - workspace: topp
//	    layer: "*"
//	    access: r
//	    roles: [states_reader]
func Load(r io.Reader) (*Manager, error) {
	var f ruleFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("rules: decode: %w", err)
	}

	switch f.Mode {
	case "":
		f.Mode = access.ModeHide
	case access.ModeHide, access.ModeMixed, access.ModeChallenge:
	default:
		return nil, fmt.Errorf("rules: unknown mode %q", f.Mode)
	}

	for i, rule := range f.Rules {
		switch rule.Access {
		case AccessRead, AccessWrite, AccessAdmin:
		default:
			return nil, fmt.Errorf("rules: rule %d: unknown access %q", i, rule.Access)
		}
		if rule.Workspace == "" || rule.Layer == "" {
			return nil, fmt.Errorf("rules: rule %d: workspace and layer are required", i)
		}
		if len(rule.Roles) == 0 {
			return nil, fmt.Errorf("rules: rule %d: at least one role is required", i)
		}
	}

	return &Manager{mode: f.Mode, rules: f.Rules}, nil
}

// bestMatch returns the most specific rule restricting the capability
// on (workspace, layer), or nil when none applies.
func (m *Manager) bestMatch(workspace, layer string, acc Access) *Rule {
	var best *Rule
	for i := range m.rules {
		r := &m.rules[i]
		if r.Access != acc || !r.matches(workspace, layer) {
			continue
		}
		if best == nil || r.specificity() > best.specificity() {
			best = r
		}
	}
	return best
}

// allowed reports whether the principal may exercise the capability.
// Read and write default to allowed when no rule matches; admin
// defaults to denied.
func (m *Manager) allowed(p *access.Principal, workspace, layer string, acc Access) bool {
	rule := m.bestMatch(workspace, layer, acc)
	if rule == nil {
		return acc != AccessAdmin
	}
	return rule.admits(p)
}

// anyRule reports whether any rule at all touches (workspace, layer),
// which decides between returning limits and unrestricted nil.
func (m *Manager) anyRule(workspace, layer string) bool {
	for i := range m.rules {
		if m.rules[i].matches(workspace, layer) {
			return true
		}
	}
	return false
}

// WorkspaceAccess implements palisade.AccessManager.
func (m *Manager) WorkspaceAccess(_ context.Context, p *access.Principal, ws *catalog.Workspace) (*access.WorkspaceLimits, error) {
	adminable := m.allowed(p, ws.Name, "*", AccessAdmin)
	if !m.anyRule(ws.Name, "*") && !adminable {
		return nil, nil
	}

	return &access.WorkspaceLimits{
		CatalogMode: m.mode,
		Readable:    m.allowed(p, ws.Name, "*", AccessRead),
		Writable:    m.allowed(p, ws.Name, "*", AccessWrite),
		Adminable:   adminable,
	}, nil
}

// DataAccess implements palisade.AccessManager.
func (m *Manager) DataAccess(_ context.Context, p *access.Principal, obj catalog.Object) (access.DataLimits, error) {
	var (
		workspace, layer string
		kind             catalog.ResourceKind
	)
	switch o := obj.(type) {
	case *catalog.Resource:
		workspace, layer, kind = resourceScope(o)
	case *catalog.Layer:
		if o.Resource == nil {
			return nil, fmt.Errorf("rules: layer %q has no resource", o.Name)
		}
		workspace, _, kind = resourceScope(o.Resource)
		layer = o.Name
	default:
		return nil, fmt.Errorf("rules: unexpected data object %T", obj)
	}

	if !m.anyRule(workspace, layer) {
		return nil, nil
	}

	read := filterFor(m.allowed(p, workspace, layer, AccessRead))
	switch kind {
	case catalog.ResourceRaster:
		return &access.RasterLimits{CatalogMode: m.mode, Read: read}, nil
	case catalog.ResourceWMS:
		return &access.WMSLimits{CatalogMode: m.mode, Read: read}, nil
	default:
		write := filterFor(m.allowed(p, workspace, layer, AccessWrite))
		return &access.VectorLimits{CatalogMode: m.mode, Read: read, Write: write}, nil
	}
}

// StyleAccess implements palisade.AccessManager. A style is denied when
// its workspace is unreadable; global styles stay unrestricted.
func (m *Manager) StyleAccess(_ context.Context, p *access.Principal, st *catalog.Style) (*access.StyleLimits, error) {
	if st.Workspace == nil || !m.anyRule(st.Workspace.Name, "*") {
		return nil, nil
	}
	if m.allowed(p, st.Workspace.Name, "*", AccessRead) {
		return nil, nil
	}
	return &access.StyleLimits{CatalogMode: m.mode}, nil
}

// GroupAccess implements palisade.AccessManager. A group is denied as a
// container when its workspace is unreadable; global groups stay
// unrestricted and are governed by member reduction alone.
func (m *Manager) GroupAccess(_ context.Context, p *access.Principal, g *catalog.LayerGroup) (*access.GroupLimits, error) {
	if g.Workspace == nil || !m.anyRule(g.Workspace.Name, "*") {
		return nil, nil
	}
	if m.allowed(p, g.Workspace.Name, "*", AccessRead) {
		return nil, nil
	}
	return &access.GroupLimits{CatalogMode: m.mode}, nil
}

func resourceScope(r *catalog.Resource) (workspace, layer string, kind catalog.ResourceKind) {
	if r.Store != nil && r.Store.Workspace != nil {
		workspace = r.Store.Workspace.Name
	}
	return workspace, r.Name, r.Kind
}

func filterFor(allowed bool) access.Filter {
	if allowed {
		return access.Include
	}
	return access.Exclude
}
