package categories

import (
	"strings"

	"github.com/cofina/leads/pkg/constants"
)

// IsAffirmative reports whether a textual acceptance flag reads as true:
// the checkmark, the digit "1", or "yes" in any case.
func IsAffirmative(v string) bool {
	v = strings.TrimSpace(v)
	return v == constants.Checkmark || v == constants.One || strings.EqualFold(v, constants.Yes)
}

// Glyph returns the canonical textual form of a flag.
func Glyph(b bool) string {
	if b {
		return constants.Checkmark
	}
	return ""
}
