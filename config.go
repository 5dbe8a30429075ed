package palisade

// Config holds configuration for the catalog authorization engine.
type Config struct {
	// AdminAuthority is the authority name that grants full catalog
	// administration and bypasses security filtering.
	// Defaults to "admin".
	AdminAuthority string `json:"admin_authority,omitempty"`

	// CapabilitiesRequest is the request kind (matched
	// case-insensitively) under which mixed-mode denials hide objects
	// instead of challenging. Defaults to "GetCapabilities".
	CapabilitiesRequest string `json:"capabilities_request,omitempty"`

	// MaxGroupDepth is the maximum layer group nesting depth for
	// composite policy reduction. Defaults to 10.
	MaxGroupDepth int `json:"max_group_depth,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		AdminAuthority:      "admin",
		CapabilitiesRequest: "GetCapabilities",
		MaxGroupDepth:       10,
	}
}
