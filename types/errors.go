package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/smasher164/stlc/ast"
)

var (
	ErrTypeMismatch            = errors.New("type mismatch")
	ErrInsufficientAnnotations = errors.New("insufficient annotations")
)

// TypeMismatchError reports two terms that cannot be made equal.
type TypeMismatchError struct {
	// Left and Right are the conflicting terms, resolved through the
	// substitution at the point of failure.
	Left, Right ast.Type
	// Occurs is set when Left is a variable occurring inside Right.
	Occurs bool
	// Constraint is the constraint being solved when unification failed.
	Constraint Constraint
}

func (e *TypeMismatchError) Error() string {
	var b strings.Builder
	if !e.Constraint.Span.IsZero() {
		fmt.Fprintf(&b, "%s: ", e.Constraint.Span)
	}
	if e.Occurs {
		fmt.Fprintf(&b, "type mismatch: %s occurs in %s", e.Left, e.Right)
	} else {
		fmt.Fprintf(&b, "type mismatch: %s and %s", e.Left, e.Right)
	}
	fmt.Fprintf(&b, " (solving %s)", e.Constraint)
	return b.String()
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// InsufficientAnnotationsError reports type variables that no constraint
// determined.
type InsufficientAnnotationsError struct {
	// Vars are the unresolved variables, ordered by id.
	Vars []ast.TypeVar
	// Node is the first node, in pre-order, whose type is not ground. Its
	// type has the substitution applied.
	Node *ast.TypedExpr
}

func (e *InsufficientAnnotationsError) Error() string {
	var b strings.Builder
	if e.Node != nil && !e.Node.Span.IsZero() {
		fmt.Fprintf(&b, "%s: ", e.Node.Span)
	}
	vars := lo.Map(e.Vars, func(v ast.TypeVar, _ int) string { return v.String() })
	fmt.Fprintf(&b, "insufficient annotations: cannot determine %s", strings.Join(vars, ", "))
	if e.Node != nil {
		fmt.Fprintf(&b, " in the type %s of %s", e.Node.Type, e.Node)
	}
	return b.String()
}

func (e *InsufficientAnnotationsError) Is(target error) bool {
	return target == ErrInsufficientAnnotations
}
