package engine

import (
	"github.com/les-ev/membersync/internal/model"
)

// Access is the account access a membership status entitles a member to.
type Access int

const (
	// AccessUnknown covers status values the mapping does not know.
	// Treated like pending: no grant, no revoke, so a new status value
	// introduced upstream can never flap accounts.
	AccessUnknown Access = iota
	// AccessActive grants an enabled account with default group membership.
	AccessActive
	// AccessPending grants nothing but revokes nothing either. Pending
	// members are not yet given access, and access already granted is
	// left alone.
	AccessPending
	// AccessInactive revokes the default group and disables the account.
	AccessInactive
)

// MapStatus maps every membership status value to an access level. The
// mapping is total: members who announced leaving keep access until they
// actually leave, joiners get access only once active, and everything
// terminal revokes it.
func MapStatus(status string) Access {
	switch status {
	case model.StatusIsActive, model.StatusWillLeave:
		return AccessActive
	case model.StatusWillJoin, model.StatusIsPending:
		return AccessPending
	case model.StatusIsInactive, model.StatusHasLeft, model.StatusIsTerminated:
		return AccessInactive
	default:
		return AccessUnknown
	}
}

// String renders the access level for logs.
func (a Access) String() string {
	switch a {
	case AccessActive:
		return "active"
	case AccessPending:
		return "pending"
	case AccessInactive:
		return "inactive"
	default:
		return "unknown"
	}
}
