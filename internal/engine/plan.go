package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/les-ev/membersync/internal/model"
	syncerrors "github.com/les-ev/membersync/pkg/errors"
)

// Policy carries the reconciliation settings the engine needs.
type Policy struct {
	// DefaultGroup is the group representing active membership.
	DefaultGroup string
}

// ComputePlan diffs the member snapshot against the target user snapshot
// and returns the ordered plan of operations required to converge the
// identity service to the membership records. It is a pure function of its
// inputs: neither snapshot is mutated, and identical inputs always yield
// identical plans.
//
// Plan order follows the member snapshot; users present only in the
// identity service come last, sorted by correlation key so runs stay
// reproducible. The returned errors are per-record classification
// failures; they exclude the affected record from the plan but are never
// fatal.
func ComputePlan(members []model.Member, users map[string]model.TargetUser, policy Policy) (*model.Plan, []error) {
	plan := &model.Plan{}
	var errs []error

	byCampaiID := make(map[string]string)
	for key, u := range users {
		if u.CampaiID != "" {
			byCampaiID[u.CampaiID] = key
		}
	}

	matched := make(map[string]bool, len(users))
	seen := make(map[string]bool, len(members))

	for _, m := range members {
		key := m.Key()
		if key == "" {
			errs = append(errs, syncerrors.NewClassificationError(m.CampaiID, "missing email address"))
			continue
		}
		if seen[key] {
			errs = append(errs, syncerrors.NewClassificationError(key, "duplicate correlation key in member snapshot"))
			continue
		}
		seen[key] = true

		userKey, found := key, false
		if m.CampaiID != "" {
			if k, ok := byCampaiID[m.CampaiID]; ok {
				userKey, found = k, true
			}
		}
		if !found {
			_, found = users[key]
			userKey = key
		}

		access := MapStatus(m.Status)
		if access == AccessUnknown {
			errs = append(errs, syncerrors.NewClassificationError(key,
				fmt.Sprintf("unknown membership status %q, leaving access unchanged", m.Status)))
		}

		if !found {
			classifyUnmatchedMember(plan, m, access, policy)
			continue
		}

		// Two members can resolve to the same user when one matches by
		// campai-id and another by email. Classifying both would emit
		// duplicate (user, kind) operations with conflicting payloads, so
		// the user stays with whoever claimed it first.
		if matched[userKey] {
			errs = append(errs, syncerrors.NewClassificationError(key,
				fmt.Sprintf("user %q is already claimed by another member record", userKey)))
			continue
		}

		matched[userKey] = true
		classifyPair(plan, m, users[userKey], access, policy)
	}

	var departed []string
	for key := range users {
		if !matched[key] {
			departed = append(departed, key)
		}
	}
	sort.Strings(departed)

	for _, key := range departed {
		classifyDepartedUser(plan, users[key], policy)
	}

	return plan, errs
}

// classifyUnmatchedMember handles a member with no account: only currently
// active members get one created, so people who never had access and are
// not active now do not accumulate accounts.
func classifyUnmatchedMember(plan *model.Plan, m model.Member, access Access, policy Policy) {
	if access == AccessActive {
		member := m
		plan.Add(model.Operation{
			Kind:   model.OpCreateUser,
			Key:    m.Key(),
			Group:  policy.DefaultGroup,
			Member: &member,
		})
		return
	}

	plan.Add(model.Operation{
		Kind:   model.OpNoOp,
		Key:    m.Key(),
		Reason: fmt.Sprintf("no account and status %q does not grant one", m.Status),
	})
}

// classifyPair computes the attribute delta plus the status transition for
// a matched member/user pair. Enabling is ordered before group adds and
// group removals before disabling, so an interrupted run never strands a
// user with access state that contradicts group membership.
func classifyPair(plan *model.Plan, m model.Member, u model.TargetUser, access Access, policy Policy) {
	fields := make(map[string]string)

	if strings.TrimSpace(m.FirstName) != strings.TrimSpace(u.FirstName) {
		fields["firstName"] = strings.TrimSpace(m.FirstName)
	}
	if strings.TrimSpace(m.LastName) != strings.TrimSpace(u.LastName) {
		fields["lastName"] = strings.TrimSpace(m.LastName)
	}
	// The identity service lowercases emails, so the comparison is on the
	// lowercased form.
	if m.Key() != u.Key() {
		fields["email"] = m.Key()
	}
	if m.CampaiID != "" && m.CampaiID != u.CampaiID {
		fields["campaiId"] = m.CampaiID
	}
	if !u.EmailVerified {
		fields["emailVerified"] = "true"
	}

	if len(fields) > 0 {
		plan.Add(model.Operation{
			Kind:   model.OpUpdateAttributes,
			Key:    m.Key(),
			UserID: u.ID,
			Fields: fields,
		})
	}

	switch access {
	case AccessActive:
		if !u.Enabled {
			plan.Add(model.Operation{Kind: model.OpEnableAccount, Key: m.Key(), UserID: u.ID})
		}
		if !u.InGroup(policy.DefaultGroup) {
			plan.Add(model.Operation{
				Kind:   model.OpAddToGroup,
				Key:    m.Key(),
				UserID: u.ID,
				Group:  policy.DefaultGroup,
			})
		}
	case AccessInactive:
		if u.InGroup(policy.DefaultGroup) {
			plan.Add(model.Operation{
				Kind:   model.OpRemoveFromGroup,
				Key:    m.Key(),
				UserID: u.ID,
				Group:  policy.DefaultGroup,
			})
		}
		if u.Enabled {
			plan.Add(model.Operation{Kind: model.OpDisableAccount, Key: m.Key(), UserID: u.ID})
		}
	}
	// Pending and unknown statuses change nothing on the access axis.
}

// classifyDepartedUser deactivates a user whose member record is gone from
// the membership service entirely. Accounts are never deleted, only
// disabled and removed from the default group.
func classifyDepartedUser(plan *model.Plan, u model.TargetUser, policy Policy) {
	if u.InGroup(policy.DefaultGroup) {
		plan.Add(model.Operation{
			Kind:   model.OpRemoveFromGroup,
			Key:    u.Key(),
			UserID: u.ID,
			Group:  policy.DefaultGroup,
		})
	}
	if u.Enabled {
		plan.Add(model.Operation{Kind: model.OpDisableAccount, Key: u.Key(), UserID: u.ID})
	}
}
