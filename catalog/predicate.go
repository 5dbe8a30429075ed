package catalog

import "github.com/mapfort/palisade/id"

// Predicate is an in-process filter over catalog objects, used by the
// query surface of storage backends and by the engine's security
// filtering. A nil Predicate accepts everything.
type Predicate func(Object) bool

// AcceptAll matches every object.
var AcceptAll Predicate = func(Object) bool { return true }

// Matches evaluates the predicate, treating nil as accept-all.
func (p Predicate) Matches(obj Object) bool {
	if p == nil {
		return true
	}

	return p(obj)
}

// And combines predicates conjunctively.
func And(preds ...Predicate) Predicate {
	return func(obj Object) bool {
		for _, p := range preds {
			if !p.Matches(obj) {
				return false
			}
		}

		return true
	}
}

// Or combines predicates disjunctively. With no operands it matches
// nothing.
func Or(preds ...Predicate) Predicate {
	return func(obj Object) bool {
		for _, p := range preds {
			if p.Matches(obj) {
				return true
			}
		}

		return false
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(obj Object) bool {
		return !p.Matches(obj)
	}
}

// NameIs matches objects published under the given name.
func NameIs(name string) Predicate {
	return func(obj Object) bool {
		return obj.ObjectName() == name
	}
}

// IDIs matches the object with the given identifier.
func IDIs(oid id.ID) Predicate {
	return func(obj Object) bool {
		return obj.ObjectID() == oid
	}
}
