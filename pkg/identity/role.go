package identity

import "strings"

// Role describes what a column means to the reconciliation engine.
type Role int

// Column roles.
const (
	// RoleData is an ordinary free-form column.
	RoleData Role = iota
	// RoleIdentity holds profile URLs eligible for matching.
	RoleIdentity
	// RoleAcceptance is the user-controlled acceptance flag.
	RoleAcceptance
	// RoleDerivedAcceptance is the flag synced from roster membership.
	RoleDerivedAcceptance
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleIdentity:
		return "identity"
	case RoleAcceptance:
		return "acceptance"
	case RoleDerivedAcceptance:
		return "derived_acceptance"
	default:
		return "data"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Classify returns the role of a column header.
//
// Headers containing "linkedin" but neither "accepted" nor "request" are
// identity columns; a category may carry several of them.
func Classify(header string) Role {
	h := strings.ToLower(strings.TrimSpace(header))
	switch {
	case h == "linkedin accepted?" || h == "linkedin accepted":
		return RoleDerivedAcceptance
	case h == "accepted":
		return RoleAcceptance
	case strings.Contains(h, "linkedin") &&
		!strings.Contains(h, "accepted") &&
		!strings.Contains(h, "request"):
		return RoleIdentity
	default:
		return RoleData
	}
}
