package oauth

import "strings"

// ScopeGranted reports whether the requested scope name appears in the
// granted scope string. The granted string is a space-separated set of
// scope names; a nil/empty string is the empty set. Membership is exact
// and case-sensitive, with no wildcard or hierarchy semantics.
func ScopeGranted(requested, granted string) bool {
	for _, name := range strings.Split(granted, " ") {
		if name != "" && name == requested {
			return true
		}
	}
	return false
}
