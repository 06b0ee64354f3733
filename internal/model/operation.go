package model

import (
	"fmt"
	"sort"
	"strings"
)

// OperationKind identifies the mutation an Operation performs.
type OperationKind string

const (
	// OpUpdateAttributes updates changed personal attributes on a user.
	OpUpdateAttributes OperationKind = "update_attributes"
	// OpAddToGroup adds a user to a group.
	OpAddToGroup OperationKind = "add_to_group"
	// OpRemoveFromGroup removes a user from a group.
	OpRemoveFromGroup OperationKind = "remove_from_group"
	// OpEnableAccount enables a disabled account.
	OpEnableAccount OperationKind = "enable_account"
	// OpDisableAccount disables an enabled account.
	OpDisableAccount OperationKind = "disable_account"
	// OpCreateUser creates a new account for a member without one.
	OpCreateUser OperationKind = "create_user"
	// OpNoOp records a member that needs no change. Never applied.
	OpNoOp OperationKind = "noop"
)

// Operation describes one required mutation against the identity service.
// Each operation is self-contained: it carries the target identifier and
// the full delta, so the applier needs no further lookups.
type Operation struct {
	Kind   OperationKind
	Key    string
	UserID string
	// Group is set for group membership operations.
	Group string
	// Fields holds changed attribute values for OpUpdateAttributes.
	Fields map[string]string
	// Member carries the source record for OpCreateUser.
	Member *Member
	// Reason explains OpNoOp entries in previews and summaries.
	Reason string
}

// Mutates reports whether applying this operation calls the identity service.
func (o Operation) Mutates() bool {
	return o.Kind != OpNoOp
}

// Describe renders a one-line human readable description.
func (o Operation) Describe() string {
	switch o.Kind {
	case OpUpdateAttributes:
		keys := make([]string, 0, len(o.Fields))
		for k := range o.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Sprintf("update %s (%s)", o.Key, strings.Join(keys, ", "))
	case OpAddToGroup:
		return fmt.Sprintf("add %s to group %q", o.Key, o.Group)
	case OpRemoveFromGroup:
		return fmt.Sprintf("remove %s from group %q", o.Key, o.Group)
	case OpEnableAccount:
		return fmt.Sprintf("enable account for %s", o.Key)
	case OpDisableAccount:
		return fmt.Sprintf("disable account for %s", o.Key)
	case OpCreateUser:
		name := o.Key
		if o.Member != nil {
			name = fmt.Sprintf("%s (%s)", o.Member.DisplayName(), o.Key)
		}
		return fmt.Sprintf("create account for %s", name)
	case OpNoOp:
		if o.Reason != "" {
			return fmt.Sprintf("no change for %s: %s", o.Key, o.Reason)
		}
		return fmt.Sprintf("no change for %s", o.Key)
	default:
		return fmt.Sprintf("%s %s", o.Kind, o.Key)
	}
}
