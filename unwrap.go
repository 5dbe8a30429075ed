package palisade

import "github.com/mapfort/palisade/catalog"

// Unwrap returns the original catalog object underneath any restricted
// views, walking nested views until it reaches an unrestricted object.
// Objects that are not views are returned as-is.
func Unwrap(obj catalog.Object) catalog.Object {
	for {
		r := catalog.RestrictionOf(obj)
		if r == nil || r.Origin == nil {
			return obj
		}
		obj = r.Origin
	}
}

// UnwrapStore unwraps a store view to its original.
func UnwrapStore(st *catalog.Store) *catalog.Store {
	if st == nil {
		return nil
	}

	return Unwrap(st).(*catalog.Store)
}

// UnwrapResource unwraps a resource view to its original.
func UnwrapResource(r *catalog.Resource) *catalog.Resource {
	if r == nil {
		return nil
	}

	return Unwrap(r).(*catalog.Resource)
}

// UnwrapLayer unwraps a layer view to its original.
func UnwrapLayer(l *catalog.Layer) *catalog.Layer {
	if l == nil {
		return nil
	}

	return Unwrap(l).(*catalog.Layer)
}

// UnwrapLayerGroup unwraps a layer group view to its original, with
// the unfiltered member list.
func UnwrapLayerGroup(g *catalog.LayerGroup) *catalog.LayerGroup {
	if g == nil {
		return nil
	}

	return Unwrap(g).(*catalog.LayerGroup)
}
