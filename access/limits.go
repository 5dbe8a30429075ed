package access

// Filter is an opaque content-level predicate attached to data limits.
// The engine never evaluates filters beyond recognizing the Exclude
// sentinel; they travel on the resulting policies for the data access
// layer to enforce.
type Filter interface {
	// Allows reports whether the given content item passes the filter.
	Allows(item any) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(item any) bool

// Allows implements Filter.
func (f FilterFunc) Allows(item any) bool { return f(item) }

type includeAll struct{}

func (includeAll) Allows(any) bool { return true }

type excludeAll struct{}

func (excludeAll) Allows(any) bool { return false }

// Include is the filter that lets all content through. A nil Filter is
// treated the same way.
var Include Filter = includeAll{}

// Exclude is the filter that rejects all content. Returning Exclude as
// a read filter makes the object unreadable; as a write filter it makes
// the object unwritable.
var Exclude Filter = excludeAll{}

// Limits is the common surface of all access-limit payloads. Every
// payload carries the catalog mode under which the granting rules were
// evaluated, so the policy resolver can disambiguate partial access.
type Limits interface {
	// Mode returns the catalog mode attached to these limits.
	Mode() Mode
}

// DataLimits are limits on content-bearing objects (resources and
// layers). The read filter decides both coarse visibility (Exclude
// means not readable at all) and fine-grained content filtering.
type DataLimits interface {
	Limits

	// ReadFilter returns the content read filter. Exclude denies
	// reading entirely; nil or Include grants unfiltered reads.
	ReadFilter() Filter
}

// WorkspaceLimits restrict access to a workspace and everything routed
// through it (namespaces and stores).
type WorkspaceLimits struct {
	CatalogMode Mode
	Readable    bool
	Writable    bool

	// Adminable grants workspace administration; it implies Readable
	// and Writable.
	Adminable bool
}

// Mode implements Limits.
func (l *WorkspaceLimits) Mode() Mode { return l.CatalogMode }

// VectorLimits restrict access to vector data: independent read and
// write content filters.
type VectorLimits struct {
	CatalogMode Mode
	Read        Filter
	Write       Filter
}

// Mode implements Limits.
func (l *VectorLimits) Mode() Mode { return l.CatalogMode }

// ReadFilter implements DataLimits.
func (l *VectorLimits) ReadFilter() Filter { return l.Read }

// WriteFilter returns the content write filter. Exclude denies writing
// entirely; nil or Include grants unfiltered writes.
func (l *VectorLimits) WriteFilter() Filter { return l.Write }

// RasterLimits restrict access to raster data. Raster content is never
// writable through the catalog, so only a read filter applies.
type RasterLimits struct {
	CatalogMode Mode
	Read        Filter
}

// Mode implements Limits.
func (l *RasterLimits) Mode() Mode { return l.CatalogMode }

// ReadFilter implements DataLimits.
func (l *RasterLimits) ReadFilter() Filter { return l.Read }

// WMSLimits restrict access to cascaded WMS data, read-only by nature.
type WMSLimits struct {
	CatalogMode Mode
	Read        Filter
}

// Mode implements Limits.
func (l *WMSLimits) Mode() Mode { return l.CatalogMode }

// ReadFilter implements DataLimits.
func (l *WMSLimits) ReadFilter() Filter { return l.Read }

// StyleLimits restrict access to a style. Presence of a non-nil
// *StyleLimits alone denies read access; there is no partial grant.
type StyleLimits struct {
	CatalogMode Mode
}

// Mode implements Limits.
func (l *StyleLimits) Mode() Mode { return l.CatalogMode }

// GroupLimits restrict access to a layer group as a container, before
// member policies are considered. Presence alone denies read access.
type GroupLimits struct {
	CatalogMode Mode
}

// Mode implements Limits.
func (l *GroupLimits) Mode() Mode { return l.CatalogMode }
