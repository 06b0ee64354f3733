package model

import (
	"strings"
)

// TargetUser is a snapshot of one user account in the identity service,
// including group memberships. Immutable per run; the ID is an opaque
// identifier used only for mutation calls.
type TargetUser struct {
	ID            string
	Username      string
	Email         string
	FirstName     string
	LastName      string
	Enabled       bool
	EmailVerified bool
	Groups        []string
	// CampaiID holds the membership-service identifier stored as a user
	// attribute, used as the preferred correlation signal when present.
	CampaiID string
}

// Key returns the correlation key for this user.
func (u TargetUser) Key() string {
	return strings.ToLower(strings.TrimSpace(u.Email))
}

// InGroup reports whether the user is currently a member of the named group.
func (u TargetUser) InGroup(name string) bool {
	for _, g := range u.Groups {
		if g == name {
			return true
		}
	}
	return false
}
