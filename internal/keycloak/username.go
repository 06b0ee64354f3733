package keycloak

import (
	"strings"
)

// SanitizeUsername derives a username from the local part of an email
// address: lowercased, ASCII letters, digits and ._- kept, spaces turned
// into underscores, everything else dropped.
func SanitizeUsername(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	local = strings.ToLower(local)

	var b strings.Builder
	for _, c := range local {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '.', c == '-', c == '_':
			b.WriteRune(c)
		case c == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}
