// Package gate is the single control point before mutations: it presents
// the computed plan and proceeds only on explicit approval, unless
// auto-apply is configured.
package gate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/les-ev/membersync/internal/model"
	syncerrors "github.com/les-ev/membersync/pkg/errors"
)

// Options controls gate behaviour.
type Options struct {
	// AutoApply skips the prompt entirely.
	AutoApply bool
	// Interactive reports whether a human can answer the prompt. With
	// AutoApply off and Interactive false the gate aborts instead of
	// hanging on a prompt nobody sees.
	Interactive bool
	// In and Out default to stdin/stdout.
	In  io.Reader
	Out io.Writer
}

// Confirm renders the plan and waits for approval. A nil return means the
// run may proceed to apply; an AbortError means no mutation must happen.
// Plan computation is read-only, so aborting here is always safe.
func Confirm(plan *model.Plan, opts Options) error {
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprint(out, Render(plan))

	if plan.Empty() {
		return nil
	}

	if opts.AutoApply {
		return nil
	}

	if !opts.Interactive {
		return syncerrors.NewAbortError("confirmation required but no terminal is attached (use auto_apply for unattended runs)")
	}

	fmt.Fprint(out, "\nContinue? [y/N] ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return syncerrors.NewAbortError("confirmation input closed")
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return nil
	default:
		return syncerrors.NewAbortError("confirmation declined")
	}
}

// renderOrder fixes the display grouping: grants first, then updates,
// then revocations, no-ops last.
var renderOrder = []model.OperationKind{
	model.OpCreateUser,
	model.OpEnableAccount,
	model.OpAddToGroup,
	model.OpUpdateAttributes,
	model.OpRemoveFromGroup,
	model.OpDisableAccount,
	model.OpNoOp,
}

func markerFor(kind model.OperationKind) string {
	switch kind {
	case model.OpCreateUser:
		return createStyle.Render("[+]")
	case model.OpEnableAccount, model.OpAddToGroup:
		return grantStyle.Render("[*]")
	case model.OpUpdateAttributes:
		return updateStyle.Render("[~]")
	case model.OpRemoveFromGroup, model.OpDisableAccount:
		return revokeStyle.Render("[-]")
	default:
		return noopStyle.Render("[ ]")
	}
}

// Render formats the plan as a human readable list of intended changes,
// grouped by operation kind.
func Render(plan *model.Plan) string {
	if plan == nil || len(plan.Operations) == 0 {
		return titleStyle.Render("Everything is in sync, nothing to do.") + "\n"
	}

	byKind := make(map[model.OperationKind][]model.Operation)
	for _, op := range plan.Operations {
		byKind[op.Kind] = append(byKind[op.Kind], op)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Planned changes") + "\n")

	for _, kind := range renderOrder {
		for _, op := range byKind[kind] {
			fmt.Fprintf(&b, "%s %s\n", markerFor(kind), op.Describe())
		}
	}

	if plan.Empty() {
		b.WriteString(summaryStyle.Render("No changes required.") + "\n")
	} else {
		b.WriteString(summaryStyle.Render(fmt.Sprintf("%d change(s): %s", plan.Mutations(), plan.String())) + "\n")
	}

	return b.String()
}
