package model

import (
	"fmt"
	"strings"
)

// Plan is the ordered sequence of operations computed for one run.
// Invariant: at most one operation per (user, kind) pair; order is
// significant and the applier must not reorder it. Plans exist only for
// the duration of one run and are never persisted.
type Plan struct {
	Operations []Operation
}

// Add appends an operation to the plan.
func (p *Plan) Add(op Operation) {
	p.Operations = append(p.Operations, op)
}

// Mutations counts operations that would call the identity service.
func (p *Plan) Mutations() int {
	n := 0
	for _, op := range p.Operations {
		if op.Mutates() {
			n++
		}
	}
	return n
}

// Empty reports whether the plan contains no mutating operations.
func (p *Plan) Empty() bool {
	return p.Mutations() == 0
}

// String renders a short summary of the plan grouped by operation kind.
func (p *Plan) String() string {
	if p == nil {
		return ""
	}

	counts := make(map[OperationKind]int)
	for _, op := range p.Operations {
		counts[op.Kind]++
	}

	order := []OperationKind{
		OpCreateUser, OpEnableAccount, OpAddToGroup,
		OpUpdateAttributes, OpRemoveFromGroup, OpDisableAccount, OpNoOp,
	}

	var parts []string
	for _, kind := range order {
		if counts[kind] > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", kind, counts[kind]))
		}
	}
	if len(parts) == 0 {
		return "empty plan"
	}
	return strings.Join(parts, " ")
}
