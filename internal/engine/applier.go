package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/les-ev/membersync/internal/logger"
	"github.com/les-ev/membersync/internal/model"
	syncerrors "github.com/les-ev/membersync/pkg/errors"
)

// TargetProvider is the mutation surface the applier needs from the
// identity service. The engine depends only on this contract so tests can
// substitute doubles.
type TargetProvider interface {
	UpdateUser(ctx context.Context, id string, fields map[string]string) error
	AddUserToGroup(ctx context.Context, id, group string) error
	RemoveUserFromGroup(ctx context.Context, id, group string) error
	SetUserEnabled(ctx context.Context, id string, enabled bool) error
	// CreateUser provisions an enabled account for the member, including
	// default group membership, in a single create call.
	CreateUser(ctx context.Context, member model.Member, group string) (string, error)
}

// Applier executes a plan against the identity service, one operation at a
// time, collecting per-operation outcomes. A failed operation is recorded
// and the next one is attempted; one broken account must not block fixing
// the rest.
type Applier struct {
	target  TargetProvider
	timeout time.Duration
	log     *logger.Logger
}

// NewApplier creates an applier with the given per-operation timeout.
func NewApplier(target TargetProvider, timeout time.Duration, log *logger.Logger) *Applier {
	return &Applier{target: target, timeout: timeout, log: log}
}

// Apply runs the plan strictly in plan order and returns the accumulated
// result. Cancellation stops before the next operation starts; operations
// not attempted are recorded as skipped. In-flight work is not rolled
// back: the next run recomputes the plan from live state.
func (a *Applier) Apply(ctx context.Context, plan *model.Plan) *model.RunResult {
	result := &model.RunResult{}
	if plan == nil {
		return result
	}

	for _, op := range plan.Operations {
		if !op.Mutates() {
			result.Record(model.OperationResult{
				Operation: op,
				Outcome:   model.OutcomeSkipped,
				Reason:    "no change required",
				Timestamp: time.Now(),
			})
			continue
		}

		if ctx.Err() != nil {
			result.Record(model.OperationResult{
				Operation: op,
				Outcome:   model.OutcomeSkipped,
				Reason:    "cancelled",
				Timestamp: time.Now(),
			})
			continue
		}

		opCtx := ctx
		var cancel context.CancelFunc
		if a.timeout > 0 {
			opCtx, cancel = context.WithTimeout(ctx, a.timeout)
		}

		start := time.Now()
		err := a.applyOperation(opCtx, op)
		if cancel != nil {
			cancel()
		}

		res := model.OperationResult{
			Operation: op,
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		}

		if err != nil {
			res.Outcome = model.OutcomeFailed
			res.Reason = failureReason(err)
			res.Error = syncerrors.NewOperationError(op.Key, string(op.Kind), err)
			a.log.WithFields(map[string]any{
				"key":  op.Key,
				"kind": string(op.Kind),
			}).Error(err, "operation failed, continuing")
		} else {
			res.Outcome = model.OutcomeApplied
			a.log.WithFields(map[string]any{
				"key":  op.Key,
				"kind": string(op.Kind),
			}).Debug("operation applied")
		}

		result.Record(res)
	}

	return result
}

func (a *Applier) applyOperation(ctx context.Context, op model.Operation) error {
	switch op.Kind {
	case model.OpUpdateAttributes:
		return a.target.UpdateUser(ctx, op.UserID, op.Fields)
	case model.OpAddToGroup:
		return a.target.AddUserToGroup(ctx, op.UserID, op.Group)
	case model.OpRemoveFromGroup:
		return a.target.RemoveUserFromGroup(ctx, op.UserID, op.Group)
	case model.OpEnableAccount:
		return a.target.SetUserEnabled(ctx, op.UserID, true)
	case model.OpDisableAccount:
		return a.target.SetUserEnabled(ctx, op.UserID, false)
	case model.OpCreateUser:
		if op.Member == nil {
			return fmt.Errorf("create operation without member payload")
		}
		_, err := a.target.CreateUser(ctx, *op.Member, op.Group)
		return err
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

func failureReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	return err.Error()
}
