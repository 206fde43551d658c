package types

import (
	"fmt"

	"github.com/smasher164/stlc/ast"
	"github.com/smasher164/stlc/lexer"
)

// Constraint requires Left and Right to be the same type. Span is the node
// that produced it.
type Constraint struct {
	Left, Right ast.Type
	Span        lexer.Span
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s = %s", c.Left, c.Right)
}

func (c *checker) constrain(left, right ast.Type, span lexer.Span) {
	if left == right {
		return
	}
	con := Constraint{Left: left, Right: right, Span: span}
	c.logf("%s", con)
	c.constraints = append(c.constraints, con)
}

// generate walks e, constraining every type slot against the type its form
// computes, and returns e's type.
func (c *checker) generate(env *Env, e *ast.TypedExpr) ast.Type {
	switch x := e.Expr.(type) {
	case ast.Number:
		c.constrain(e.Type, ast.Int, e.Span)
	case ast.Boolean:
		c.constrain(e.Type, ast.Bool, e.Span)
	case ast.Ident:
		// A free identifier stays unconstrained; grounding reports it.
		if b, _, ok := env.LookupStack(x.Name); ok {
			c.constrain(e.Type, b.Type, e.Span)
		}
	case ast.Lambda:
		body := c.generate(env.Extend(x.Decl), x.Body)
		c.constrain(x.Ret, body, x.Body.Span)
		c.constrain(e.Type, ast.Arrow{Arg: x.Decl.Type, Ret: x.Ret}, e.Span)
	case ast.App:
		fn := c.generate(env, x.Func)
		arg := c.generate(env, x.Arg)
		r := c.supply.Fresh()
		c.constrain(fn, ast.Arrow{Arg: arg, Ret: r}, e.Span)
		c.constrain(e.Type, r, e.Span)
	case ast.Let:
		defn := c.generate(env, x.Defn)
		c.constrain(x.Decl.Type, defn, x.Defn.Span)
		body := c.generate(env.Extend(x.Decl), x.Body)
		c.constrain(e.Type, body, e.Span)
	default:
		panic(fmt.Sprintf("unknown expression %T", e.Expr))
	}
	return e.Type
}
