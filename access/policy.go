package access

// Level is the effective access level granted on a catalog object,
// ordered from most to least restrictive.
type Level int

const (
	// LevelHidden denies all access; the object behaves as nonexistent.
	LevelHidden Level = iota

	// LevelMetadata exposes the object's metadata but denies its contents.
	LevelMetadata

	// LevelReadOnly allows reads and denies writes.
	LevelReadOnly

	// LevelReadWrite allows both reads and writes.
	LevelReadWrite
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelHidden:
		return "hidden"
	case LevelMetadata:
		return "metadata"
	case LevelReadOnly:
		return "read-only"
	case LevelReadWrite:
		return "read-write"
	default:
		return "unknown"
	}
}

// Response tells a restricted view how to react when a caller attempts
// an operation beyond the granted level.
type Response string

const (
	// ResponseHide makes the attempt fail silently, preserving the
	// illusion that the capability does not exist.
	ResponseHide Response = "hide"

	// ResponseChallenge raises an authorization error so the caller
	// can be challenged to authenticate.
	ResponseChallenge Response = "challenge"
)

// WrapperPolicy is the outcome of a policy resolution: the granted
// level, how over-level attempts are answered, and the fine-grained
// limits (if any) to enforce at content access time.
type WrapperPolicy struct {
	Level    Level
	Response Response
	Limits   Limits
}

// Hide returns a policy that makes the object invisible.
func Hide(limits Limits) WrapperPolicy {
	return WrapperPolicy{Level: LevelHidden, Response: ResponseHide, Limits: limits}
}

// Metadata returns a policy that exposes metadata but challenges
// content access.
func Metadata(limits Limits) WrapperPolicy {
	return WrapperPolicy{Level: LevelMetadata, Response: ResponseChallenge, Limits: limits}
}

// ReadOnlyHide returns a read-only policy whose write attempts fail
// silently.
func ReadOnlyHide(limits Limits) WrapperPolicy {
	return WrapperPolicy{Level: LevelReadOnly, Response: ResponseHide, Limits: limits}
}

// ReadOnlyChallenge returns a read-only policy whose write attempts
// raise an authorization error.
func ReadOnlyChallenge(limits Limits) WrapperPolicy {
	return WrapperPolicy{Level: LevelReadOnly, Response: ResponseChallenge, Limits: limits}
}

// ReadWrite returns an unrestricted-level policy, optionally still
// carrying content limits.
func ReadWrite(limits Limits) WrapperPolicy {
	return WrapperPolicy{Level: LevelReadWrite, Response: ResponseHide, Limits: limits}
}

// Compare orders policies by restrictiveness: negative if p is more
// restrictive than other, zero if equal, positive if less restrictive.
func (p WrapperPolicy) Compare(other WrapperPolicy) int {
	return int(p.Level) - int(other.Level)
}

// CanRead reports whether the policy grants at least read-only access.
func (p WrapperPolicy) CanRead() bool {
	return p.Level >= LevelReadOnly
}

// CanWrite reports whether the policy grants write access.
func (p WrapperPolicy) CanWrite() bool {
	return p.Level == LevelReadWrite
}
