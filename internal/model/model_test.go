package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemberKeyLowercasesEmail(t *testing.T) {
	t.Parallel()

	m := Member{Email: " Anna.Schmidt@Example.COM "}
	require.Equal(t, "anna.schmidt@example.com", m.Key())
}

func TestMemberDisplayNameFallsBackToKey(t *testing.T) {
	t.Parallel()

	m := Member{Email: "a@example.com"}
	require.Equal(t, "a@example.com", m.DisplayName())

	m.FirstName = "Anna"
	m.LastName = "Schmidt"
	require.Equal(t, "Anna Schmidt", m.DisplayName())
}

func TestTargetUserInGroup(t *testing.T) {
	t.Parallel()

	u := TargetUser{Groups: []string{"Mitglied", "Vorstand"}}
	require.True(t, u.InGroup("Mitglied"))
	require.False(t, u.InGroup("mitglied"))
	require.False(t, u.InGroup("Kassenwart"))
}

func TestOperationDescribe(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		op   Operation
		want string
	}{
		{
			name: "update lists changed fields sorted",
			op: Operation{
				Kind:   OpUpdateAttributes,
				Key:    "a@example.com",
				Fields: map[string]string{"lastName": "Schmidt", "firstName": "Anna"},
			},
			want: "update a@example.com (firstName, lastName)",
		},
		{
			name: "group add names the group",
			op:   Operation{Kind: OpAddToGroup, Key: "a@example.com", Group: "Mitglied"},
			want: `add a@example.com to group "Mitglied"`,
		},
		{
			name: "noop carries its reason",
			op:   Operation{Kind: OpNoOp, Key: "b@example.com", Reason: "not active, never had access"},
			want: "no change for b@example.com: not active, never had access",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.op.Describe())
		})
	}
}

func TestPlanMutationsIgnoresNoOps(t *testing.T) {
	t.Parallel()

	plan := &Plan{}
	plan.Add(Operation{Kind: OpNoOp, Key: "a@example.com"})
	plan.Add(Operation{Kind: OpCreateUser, Key: "b@example.com"})

	require.Equal(t, 1, plan.Mutations())
	require.False(t, plan.Empty())

	onlyNoOps := &Plan{}
	onlyNoOps.Add(Operation{Kind: OpNoOp, Key: "a@example.com"})
	require.True(t, onlyNoOps.Empty())
}

func TestRunResultCountsAndStatus(t *testing.T) {
	t.Parallel()

	result := &RunResult{}
	result.Record(OperationResult{Operation: Operation{Kind: OpCreateUser}, Outcome: OutcomeApplied})
	result.Record(OperationResult{
		Operation: Operation{Kind: OpDisableAccount},
		Outcome:   OutcomeFailed,
		Reason:    "timeout",
		Error:     errors.New("deadline exceeded"),
	})
	result.Record(OperationResult{Operation: Operation{Kind: OpNoOp}, Outcome: OutcomeSkipped})

	require.Equal(t, 1, result.Applied)
	require.Equal(t, 1, result.Failed)
	require.Equal(t, 1, result.Skipped)
	require.False(t, result.Succeeded())
	require.Equal(t, "failed:timeout", result.Results[1].Status())
	require.Equal(t, "1 applied, 1 failed, 1 skipped", result.Summary())
}

func TestRunResultAbortedNeverSucceeds(t *testing.T) {
	t.Parallel()

	result := &RunResult{Aborted: true}
	require.False(t, result.Succeeded())
	require.Equal(t, "aborted before applying", result.Summary())
}
