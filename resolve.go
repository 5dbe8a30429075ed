package palisade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mapfort/palisade/access"
	"github.com/mapfort/palisade/catalog"
)

// ResolvePolicy computes the wrapper policy for obj on behalf of the
// principal carried by ctx. It is deterministic for a fixed access
// manager state and never mutates obj.
func (e *Engine) ResolvePolicy(ctx context.Context, obj catalog.Object) (access.WrapperPolicy, error) {
	return e.resolvePolicy(ctx, obj, 0)
}

func (e *Engine) resolvePolicy(ctx context.Context, obj catalog.Object, depth int) (access.WrapperPolicy, error) {
	switch obj.(type) {
	case *catalog.Workspace, *catalog.Namespace, *catalog.Store, *catalog.Resource,
		*catalog.Layer, *catalog.LayerGroup, *catalog.Style, *catalog.Map:
	default:
		return access.WrapperPolicy{}, fmt.Errorf("%w: %T", ErrUnknownObject, obj)
	}

	// Catalog administrators are never restricted.
	if e.isAdmin(ctx) {
		return access.ReadWrite(nil), nil
	}

	switch o := obj.(type) {
	case *catalog.Workspace:
		return e.workspacePolicy(ctx, o, o.Name)
	case *catalog.Namespace:
		return e.namespacePolicy(ctx, o)
	case *catalog.Store:
		return e.storePolicy(ctx, o)
	case *catalog.Resource:
		return e.dataPolicy(ctx, o, resourceWorkspace(o), o.Name)
	case *catalog.Layer:
		return e.dataPolicy(ctx, o, layerWorkspace(o), o.Name)
	case *catalog.Style:
		return e.stylePolicy(ctx, o)
	case *catalog.LayerGroup:
		return e.groupPolicy(ctx, o, depth)
	default: // *catalog.Map
		// Maps are outside the authorization model.
		return access.ReadWrite(nil), nil
	}
}

// workspacePolicy derives a policy from workspace limits. name is the
// object name used in denial errors, which differs from the workspace
// name when a store is being resolved through its owner.
func (e *Engine) workspacePolicy(ctx context.Context, ws *catalog.Workspace, name string) (access.WrapperPolicy, error) {
	canRead, canWrite, mode, lim, err := e.workspaceBits(ctx, ws)
	if err != nil {
		return access.WrapperPolicy{}, err
	}

	return e.disambiguate(ctx, canRead, canWrite, mode, lim, name)
}

// workspaceBits evaluates workspace limits into capability flags.
func (e *Engine) workspaceBits(ctx context.Context, ws *catalog.Workspace) (canRead, canWrite bool, mode access.Mode, lim access.Limits, err error) {
	wl, err := e.access.WorkspaceAccess(ctx, principalFromContext(ctx), ws)
	if err != nil {
		return false, false, "", nil, err
	}

	canRead, canWrite = true, true
	mode = access.ModeHide
	if wl != nil {
		mode = wl.CatalogMode
		lim = wl
		if !wl.Adminable {
			canRead, canWrite = wl.Readable, wl.Writable
		}
	}

	// Administrative requests only surface workspaces the caller
	// administers.
	if adminRequestFromContext(ctx) && (wl == nil || !wl.Adminable) {
		canRead, canWrite = false, false
	}

	return canRead, canWrite, mode, lim, nil
}

// namespacePolicy routes a namespace through its paired workspace,
// matched by prefix. A missing workspace is synthesized transiently so
// the pairing invariant holds even for dangling namespaces.
func (e *Engine) namespacePolicy(ctx context.Context, ns *catalog.Namespace) (access.WrapperPolicy, error) {
	ws, err := e.storage.WorkspaceByName(ctx, ns.Prefix)
	if errors.Is(err, catalog.ErrNotFound) {
		ws = &catalog.Workspace{Name: ns.Prefix, Isolated: ns.Isolated}
	} else if err != nil {
		return access.WrapperPolicy{}, err
	}

	return e.workspacePolicy(ctx, ws, ns.Prefix)
}

// storePolicy routes a store through its owning workspace.
func (e *Engine) storePolicy(ctx context.Context, st *catalog.Store) (access.WrapperPolicy, error) {
	if st.Workspace == nil {
		return access.WrapperPolicy{}, fmt.Errorf("%w: store %q has no workspace", ErrUnknownObject, st.Name)
	}

	return e.workspacePolicy(ctx, st.Workspace, st.Name)
}

// dataPolicy derives a policy for content-bearing objects (resources
// and layers) from their data limits.
func (e *Engine) dataPolicy(ctx context.Context, obj catalog.Object, ws *catalog.Workspace, name string) (access.WrapperPolicy, error) {
	p := principalFromContext(ctx)

	dl, err := e.access.DataAccess(ctx, p, obj)
	if err != nil {
		return access.WrapperPolicy{}, err
	}

	canRead, canWrite := true, true
	mode := access.ModeHide
	var lim access.Limits
	if dl != nil {
		mode = dl.Mode()
		lim = dl
		canRead = !deniesAll(dl.ReadFilter())
		if vl, ok := dl.(*access.VectorLimits); ok {
			canWrite = !deniesAll(vl.Write)
		} else {
			// Raster and cascaded WMS content is not writable.
			canWrite = false
		}
	}

	if adminRequestFromContext(ctx) && ws != nil {
		veto, err := e.workspaceAdminVeto(ctx, ws)
		if err != nil {
			return access.WrapperPolicy{}, err
		}
		if veto {
			canRead = false
		}
	}

	return e.disambiguate(ctx, canRead, canWrite, mode, lim, name)
}

// stylePolicy derives a policy for a style. Any non-nil style limits
// deny read access outright.
func (e *Engine) stylePolicy(ctx context.Context, st *catalog.Style) (access.WrapperPolicy, error) {
	sl, err := e.access.StyleAccess(ctx, principalFromContext(ctx), st)
	if err != nil {
		return access.WrapperPolicy{}, err
	}

	var lim access.Limits
	if sl != nil {
		lim = sl
	}

	return e.containerPolicy(ctx, sl != nil, lim, st.Workspace, st.Name)
}

// groupOwnPolicy derives the group's container-level policy, before
// member reduction. Any non-nil group limits deny read access outright.
func (e *Engine) groupOwnPolicy(ctx context.Context, g *catalog.LayerGroup) (access.WrapperPolicy, error) {
	gl, err := e.access.GroupAccess(ctx, principalFromContext(ctx), g)
	if err != nil {
		return access.WrapperPolicy{}, err
	}

	var lim access.Limits
	if gl != nil {
		lim = gl
	}

	return e.containerPolicy(ctx, gl != nil, lim, g.Workspace, g.Name)
}

// containerPolicy is the shared style/group path: presence of limits
// denies reads, and write capability is never granted through it.
func (e *Engine) containerPolicy(ctx context.Context, restricted bool, lim access.Limits, ws *catalog.Workspace, name string) (access.WrapperPolicy, error) {
	canRead := !restricted

	if adminRequestFromContext(ctx) && ws != nil {
		veto, err := e.workspaceAdminVeto(ctx, ws)
		if err != nil {
			return access.WrapperPolicy{}, err
		}
		if veto {
			canRead = false
		}
	}

	mode := access.ModeHide
	if lim != nil {
		mode = lim.Mode()
	}

	return e.disambiguate(ctx, canRead, false, mode, lim, name)
}

// groupPolicy resolves a layer group: its own policy first, then the
// most restrictive of the member policies. A hidden member hides the
// whole group. The accumulator starts from the group's own policy so
// container-level limits survive the reduction.
func (e *Engine) groupPolicy(ctx context.Context, g *catalog.LayerGroup, depth int) (access.WrapperPolicy, error) {
	if depth > e.config.MaxGroupDepth {
		return access.WrapperPolicy{}, fmt.Errorf("%w: %s", ErrGroupDepthExceeded, g.Name)
	}

	own, err := e.groupOwnPolicy(ctx, g)
	if err != nil {
		return access.WrapperPolicy{}, err
	}
	if own.Level == access.LevelHidden {
		return own, nil
	}

	most := own
	for _, m := range g.Members {
		mp, err := e.resolvePolicy(ctx, m, depth+1)
		if err != nil {
			return access.WrapperPolicy{}, err
		}
		if mp.Level == access.LevelHidden {
			return mp, nil
		}
		if mp.Compare(most) < 0 {
			most = mp
		}
	}

	return most, nil
}

// disambiguate turns capability flags and a catalog mode into the final
// wrapper policy. This is the single place partial access is resolved.
func (e *Engine) disambiguate(ctx context.Context, canRead, canWrite bool, mode access.Mode, lim access.Limits, name string) (access.WrapperPolicy, error) {
	if !canRead {
		switch mode {
		case access.ModeHide:
			return access.Hide(lim), nil
		case access.ModeMixed:
			// Capability documents list what exists; anything the
			// caller cannot read stays hidden there. Direct access
			// escalates instead.
			if e.isCapabilitiesRequest(ctx) {
				return access.Hide(lim), nil
			}
			return access.WrapperPolicy{}, e.unauthorized(ctx, name)
		default: // access.ModeChallenge
			return access.Metadata(lim), nil
		}
	}

	if !canWrite {
		if mode == access.ModeHide {
			return access.ReadOnlyHide(lim), nil
		}
		return access.ReadOnlyChallenge(lim), nil
	}

	return access.ReadWrite(lim), nil
}

// unauthorized builds the denial error for a named object: anonymous
// callers are challenged to authenticate, authenticated ones are
// refused outright.
func (e *Engine) unauthorized(ctx context.Context, name string) error {
	if !principalFromContext(ctx).Authenticated() {
		return fmt.Errorf("%w: %s", ErrUnauthenticated, name)
	}

	return fmt.Errorf("%w: %s", ErrAccessDenied, name)
}

// workspaceAdminVeto reports whether an admin-scoped request must drop
// read access to content owned by ws: limits exist but withhold
// administration. Absent limits leave content readable; only the
// workspace entry itself requires an explicit admin grant.
func (e *Engine) workspaceAdminVeto(ctx context.Context, ws *catalog.Workspace) (bool, error) {
	wl, err := e.access.WorkspaceAccess(ctx, principalFromContext(ctx), ws)
	if err != nil {
		return false, err
	}

	return wl != nil && !wl.Adminable, nil
}

// isAdmin reports whether the context principal holds the configured
// administrative authority.
func (e *Engine) isAdmin(ctx context.Context) bool {
	return principalFromContext(ctx).HasAuthority(e.config.AdminAuthority)
}

func (e *Engine) isCapabilitiesRequest(ctx context.Context) bool {
	kind := requestKindFromContext(ctx)

	return kind != "" && strings.EqualFold(kind, e.config.CapabilitiesRequest)
}

// deniesAll reports whether a content filter rejects everything.
func deniesAll(f access.Filter) bool {
	return f == access.Exclude
}

func resourceWorkspace(r *catalog.Resource) *catalog.Workspace {
	if r.Store == nil {
		return nil
	}

	return r.Store.Workspace
}

func layerWorkspace(l *catalog.Layer) *catalog.Workspace {
	if l.Resource == nil {
		return nil
	}

	return resourceWorkspace(l.Resource)
}
