package types

import (
	"cmp"
	"slices"

	"github.com/hashicorp/go-set/v3"
	"github.com/smasher164/stlc/ast"
)

// ground applies the substitution to every type slot of e. If a variable
// survives, the tree cannot be fully typed from its annotations.
func (c *checker) ground(e *ast.TypedExpr) (*ast.TypedExpr, error) {
	resolved := ast.MapTypes(e, c.subst.apply)
	vars := set.New[ast.TypeVar](0)
	ast.ForEachType(resolved, func(t ast.Type) {
		ast.TypeVars(t, func(v ast.TypeVar) {
			vars.Insert(v)
		})
	})
	if vars.Empty() {
		return resolved, nil
	}
	unresolved := vars.Slice()
	sortVars(unresolved)
	c.logf("unresolved %v", unresolved)
	return nil, &InsufficientAnnotationsError{
		Vars: unresolved,
		Node: firstUngrounded(resolved),
	}
}

func firstUngrounded(e *ast.TypedExpr) *ast.TypedExpr {
	var first *ast.TypedExpr
	ast.Inspect(e, func(n *ast.TypedExpr) bool {
		if first != nil {
			return false
		}
		if !ast.IsGroundedType(n.Type, true) {
			first = n
			return false
		}
		return true
	})
	return first
}

// sortVars orders vars by id.
func sortVars(vars []ast.TypeVar) {
	slices.SortFunc(vars, func(a, b ast.TypeVar) int {
		return cmp.Compare(a.ID, b.ID)
	})
}
