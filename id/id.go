// Package id defines TypeID-based identity types for all catalog objects.
//
// Every object in the catalog uses a single ID struct with a prefix that
// identifies the object type. IDs are K-sortable (UUIDv7-based), globally
// unique, and URL-safe in the format "prefix_suffix".
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the catalog object type encoded in a TypeID.
type Prefix string

// Prefix constants for all catalog object types.
const (
	PrefixWorkspace  Prefix = "ws"
	PrefixNamespace  Prefix = "ns"
	PrefixStore      Prefix = "cst"
	PrefixResource   Prefix = "res"
	PrefixLayer      Prefix = "lyr"
	PrefixLayerGroup Prefix = "lg"
	PrefixStyle      Prefix = "sty"
	PrefixMap        Prefix = "map"
)

// ID is the primary identifier type for all catalog objects.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "ws_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// MustParseWithPrefix is like ParseWithPrefix but panics on error.
func MustParseWithPrefix(s string, expected Prefix) ID {
	parsed, err := ParseWithPrefix(s, expected)
	if err != nil {
		panic(fmt.Sprintf("id: must parse with prefix %q: %v", expected, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases per catalog object type
// ──────────────────────────────────────────────────

// WorkspaceID is a type-safe identifier for workspaces (prefix: "ws").
type WorkspaceID = ID

// NamespaceID is a type-safe identifier for namespaces (prefix: "ns").
type NamespaceID = ID

// StoreID is a type-safe identifier for data/coverage/WMS stores (prefix: "cst").
type StoreID = ID

// ResourceID is a type-safe identifier for published resources (prefix: "res").
type ResourceID = ID

// LayerID is a type-safe identifier for layers (prefix: "lyr").
type LayerID = ID

// LayerGroupID is a type-safe identifier for layer groups (prefix: "lg").
type LayerGroupID = ID

// StyleID is a type-safe identifier for styles (prefix: "sty").
type StyleID = ID

// MapID is a type-safe identifier for maps (prefix: "map").
type MapID = ID

// AnyID is a type alias that accepts any valid prefix.
type AnyID = ID

// ──────────────────────────────────────────────────
// Convenience constructors
// ──────────────────────────────────────────────────

// NewWorkspaceID generates a new unique workspace ID.
func NewWorkspaceID() ID { return New(PrefixWorkspace) }

// NewNamespaceID generates a new unique namespace ID.
func NewNamespaceID() ID { return New(PrefixNamespace) }

// NewStoreID generates a new unique store ID.
func NewStoreID() ID { return New(PrefixStore) }

// NewResourceID generates a new unique resource ID.
func NewResourceID() ID { return New(PrefixResource) }

// NewLayerID generates a new unique layer ID.
func NewLayerID() ID { return New(PrefixLayer) }

// NewLayerGroupID generates a new unique layer group ID.
func NewLayerGroupID() ID { return New(PrefixLayerGroup) }

// NewStyleID generates a new unique style ID.
func NewStyleID() ID { return New(PrefixStyle) }

// NewMapID generates a new unique map ID.
func NewMapID() ID { return New(PrefixMap) }

// ──────────────────────────────────────────────────
// Convenience parsers
// ──────────────────────────────────────────────────

// ParseWorkspaceID parses a string and validates the "ws" prefix.
func ParseWorkspaceID(s string) (ID, error) { return ParseWithPrefix(s, PrefixWorkspace) }

// ParseNamespaceID parses a string and validates the "ns" prefix.
func ParseNamespaceID(s string) (ID, error) { return ParseWithPrefix(s, PrefixNamespace) }

// ParseStoreID parses a string and validates the "cst" prefix.
func ParseStoreID(s string) (ID, error) { return ParseWithPrefix(s, PrefixStore) }

// ParseResourceID parses a string and validates the "res" prefix.
func ParseResourceID(s string) (ID, error) { return ParseWithPrefix(s, PrefixResource) }

// ParseLayerID parses a string and validates the "lyr" prefix.
func ParseLayerID(s string) (ID, error) { return ParseWithPrefix(s, PrefixLayer) }

// ParseLayerGroupID parses a string and validates the "lg" prefix.
func ParseLayerGroupID(s string) (ID, error) { return ParseWithPrefix(s, PrefixLayerGroup) }

// ParseStyleID parses a string and validates the "sty" prefix.
func ParseStyleID(s string) (ID, error) { return ParseWithPrefix(s, PrefixStyle) }

// ParseMapID parses a string and validates the "map" prefix.
func ParseMapID(s string) (ID, error) { return ParseWithPrefix(s, PrefixMap) }

// ParseAny parses a string into an ID without type checking the prefix.
func ParseAny(s string) (ID, error) { return Parse(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so that optional foreign key columns store NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}
