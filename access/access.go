// Package access defines the vocabulary of catalog authorization decisions:
// principals, catalog modes, access levels, wrapper policies and the
// access-limit payloads attached to them.
//
// The package is deliberately dependency-free so that both the catalog
// object model and the decision engine can build on it.
package access

// Principal is the authenticated (or anonymous) caller a decision is
// evaluated for. A nil *Principal means an anonymous request.
type Principal struct {
	// Name is the login or service account name.
	Name string `json:"name"`

	// Authorities are the granted role names.
	Authorities []string `json:"authorities,omitempty"`
}

// HasAuthority reports whether the principal holds the named authority.
func (p *Principal) HasAuthority(name string) bool {
	if p == nil {
		return false
	}

	for _, a := range p.Authorities {
		if a == name {
			return true
		}
	}

	return false
}

// Authenticated reports whether the principal represents a real,
// non-anonymous login. A principal with no authorities is treated the
// same as an anonymous one when deciding between a challenge and a
// plain denial.
func (p *Principal) Authenticated() bool {
	return p != nil && len(p.Authorities) > 0
}

// Mode is the catalog-wide disclosure strategy applied when a caller
// lacks a capability.
type Mode string

const (
	// ModeHide keeps unauthorized objects invisible, as if they did
	// not exist.
	ModeHide Mode = "hide"

	// ModeMixed hides objects from listings but escalates direct,
	// named access so the caller can be challenged to authenticate.
	ModeMixed Mode = "mixed"

	// ModeChallenge discloses metadata for unauthorized objects and
	// defers the challenge to first content access.
	ModeChallenge Mode = "challenge"
)
