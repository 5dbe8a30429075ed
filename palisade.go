// Package palisade is an authorization-decision and view-decoration
// engine for a hierarchical catalog of workspaces, namespaces, stores,
// resources, layers, layer groups, styles and maps.
//
// The engine sits between callers and a raw catalog.Storage backend.
// For every object retrieved it resolves a wrapper policy for the
// requesting principal and, depending on the outcome, lets the object
// through untouched, withholds it entirely, or substitutes a
// restricted view that enforces the granted access level. The engine
// holds no per-request state and caches no decisions; every call
// re-resolves policy against the current access manager.
package palisade

import (
	"context"

	"github.com/mapfort/palisade/access"
	"github.com/mapfort/palisade/catalog"
)

// AccessManager supplies the access limits the engine turns into
// wrapper policies. A nil limits value (with a nil error) means the
// principal is unrestricted for that object.
//
// Implementations must be safe for concurrent use and must not retain
// the objects they are handed.
type AccessManager interface {
	// WorkspaceAccess returns the workspace-level limits for the
	// principal, or nil when unrestricted.
	WorkspaceAccess(ctx context.Context, p *access.Principal, ws *catalog.Workspace) (*access.WorkspaceLimits, error)

	// DataAccess returns the data limits for a resource or layer, or
	// nil when unrestricted. The concrete limits type must match the
	// resource kind (vector, raster or WMS).
	DataAccess(ctx context.Context, p *access.Principal, obj catalog.Object) (access.DataLimits, error)

	// StyleAccess returns the style limits, or nil when unrestricted.
	// Any non-nil value denies access to the style.
	StyleAccess(ctx context.Context, p *access.Principal, st *catalog.Style) (*access.StyleLimits, error)

	// GroupAccess returns the container-level limits of a layer
	// group, or nil when unrestricted. Any non-nil value denies
	// access to the group as a whole, before member reduction.
	GroupAccess(ctx context.Context, p *access.Principal, g *catalog.LayerGroup) (*access.GroupLimits, error)
}
