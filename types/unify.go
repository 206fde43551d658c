package types

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"
	"github.com/smasher164/stlc/ast"
)

// substitution maps bound variables to their terms. It is kept acyclic by the
// occurs check.
type substitution map[ast.TypeVar]ast.Type

// get follows variable bindings at the top of t, compressing the chain so
// later lookups take one step.
func (s substitution) get(t ast.Type) ast.Type {
	v, ok := t.(ast.TypeVar)
	if !ok {
		return t
	}
	bound, ok := s[v]
	if !ok {
		return v
	}
	root := s.get(bound)
	if root != bound {
		s[v] = root
	}
	return root
}

// apply replaces every bound variable in t, at any depth.
func (s substitution) apply(t ast.Type) ast.Type {
	switch t := s.get(t).(type) {
	case ast.Arrow:
		return ast.Arrow{Arg: s.apply(t.Arg), Ret: s.apply(t.Ret)}
	default:
		return t
	}
}

// freeVars adds the unbound variables of t to vars.
func (s substitution) freeVars(t ast.Type, vars *set.Set[ast.TypeVar]) {
	ast.TypeVars(s.apply(t), func(v ast.TypeVar) {
		vars.Insert(v)
	})
}

func (s substitution) occurs(v ast.TypeVar, t ast.Type) bool {
	vars := set.New[ast.TypeVar](0)
	s.freeVars(t, vars)
	return vars.Contains(v)
}

func (c *checker) bind(v ast.TypeVar, t ast.Type) *TypeMismatchError {
	if c.subst.occurs(v, t) {
		return &TypeMismatchError{Left: v, Right: c.subst.apply(t), Occurs: true}
	}
	c.logf("%s := %s", v, t)
	c.subst[v] = t
	return nil
}

// unify makes a and b equal by extending the substitution.
func (c *checker) unify(a, b ast.Type) *TypeMismatchError {
	a, b = c.subst.get(a), c.subst.get(b)
	if a == b {
		return nil
	}
	if v, ok := a.(ast.TypeVar); ok {
		return c.bind(v, b)
	}
	if v, ok := b.(ast.TypeVar); ok {
		return c.bind(v, a)
	}
	switch a := a.(type) {
	case ast.Arrow:
		if b, ok := b.(ast.Arrow); ok {
			if mismatch := c.unify(a.Arg, b.Arg); mismatch != nil {
				return mismatch
			}
			return c.unify(a.Ret, b.Ret)
		}
	case ast.Primitive, ast.Named:
	default:
		panic(fmt.Sprintf("unknown type %T", a))
	}
	return &TypeMismatchError{Left: c.subst.apply(a), Right: c.subst.apply(b)}
}

// solve unifies every constraint in order, stopping at the first failure.
func (c *checker) solve() error {
	for _, con := range c.constraints {
		if mismatch := c.unify(con.Left, con.Right); mismatch != nil {
			mismatch.Constraint = con
			return mismatch
		}
	}
	return nil
}
