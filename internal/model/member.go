package model

import (
	"strings"
)

// Membership status values reported by the membership service. The set is
// open ended on the remote side; anything not listed here is treated as
// StatusUnknown by the engine.
const (
	StatusIsActive     = "isActive"
	StatusWillLeave    = "willLeave"
	StatusWillJoin     = "willJoin"
	StatusIsPending    = "isPending"
	StatusIsInactive   = "isInactive"
	StatusHasLeft      = "hasLeft"
	StatusIsTerminated = "isTerminated"
)

// Member is a normalized membership record from the membership service.
// It is rebuilt from a fresh snapshot every run and never mutated.
type Member struct {
	CampaiID  string `json:"campaiId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Status    string `json:"status"`
	// Number is the membership number used as a tie-break when two
	// records share an email address. Nil when the service omits it.
	Number *int `json:"number,omitempty"`
}

// Key returns the correlation key used to match this member against a
// target user. The identity service lowercases emails, so matching is
// done on the lowercased, trimmed address.
func (m Member) Key() string {
	return strings.ToLower(strings.TrimSpace(m.Email))
}

// DisplayName renders the member's name for plan previews and logs.
func (m Member) DisplayName() string {
	name := strings.TrimSpace(m.FirstName + " " + m.LastName)
	if name == "" {
		return m.Key()
	}
	return name
}
