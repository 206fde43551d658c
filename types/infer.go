// Package types infers the omitted annotations of a program.
//
// Inference runs in three phases. Generation walks the tree and emits an
// equality constraint for every type slot. Unification solves the
// constraints in order into a substitution. Grounding applies the
// substitution to the tree and fails if any variable is left.
package types

import (
	"fmt"
	"log"

	"github.com/smasher164/stlc/ast"
	"golang.org/x/exp/maps"
)

type Phase int

const (
	Generating Phase = iota
	Unifying
	Grounding
)

func (p Phase) String() string {
	switch p {
	case Generating:
		return "generating"
	case Unifying:
		return "unifying"
	case Grounding:
		return "grounding"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Config holds inference options. The zero Config is ready to use, and a
// Config may be used by several goroutines at once.
type Config struct {
	// Logger, if set, receives each constraint, binding, and phase change.
	Logger *log.Logger
}

// Infer is shorthand for (&Config{}).Infer(e).
func Infer(e *ast.TypedExpr) (*ast.TypedExpr, error) {
	var conf Config
	return conf.Infer(e)
}

// Infer resolves every internal type variable in e and returns a new tree in
// which each type slot is concrete. e is left unchanged.
//
// Every slot of e must be set, and the only variables allowed are internal
// ones, as produced by ast.Instantiate or the parser.
//
// A failure to unify two terms yields a *TypeMismatchError. If unification
// succeeds but some variable is still undetermined, the result is an
// *InsufficientAnnotationsError.
func (conf *Config) Infer(e *ast.TypedExpr) (*ast.TypedExpr, error) {
	if e == nil {
		panic("types: Infer called with a nil expression")
	}
	if !ast.IsGrounded(e, false) {
		panic(fmt.Sprintf("types: expression has a missing or non-internal type: %s", e))
	}
	c := &checker{
		conf:   conf,
		supply: ast.SupplyAfter(e),
		subst:  make(substitution),
	}
	c.generate(nil, e)
	c.enter(Unifying)
	if err := c.solve(); err != nil {
		c.logf("%v", err)
		return nil, err
	}
	c.logSubst()
	c.enter(Grounding)
	return c.ground(e)
}

// checker is the state of one inference run.
type checker struct {
	conf        *Config
	phase       Phase
	supply      *ast.Supply
	constraints []Constraint
	subst       substitution
}

func (c *checker) enter(p Phase) {
	c.phase = p
	c.logf("%d constraints", len(c.constraints))
}

func (c *checker) logf(format string, args ...any) {
	if c.conf.Logger == nil {
		return
	}
	c.conf.Logger.Printf("%s: %s", c.phase, fmt.Sprintf(format, args...))
}

func (c *checker) logSubst() {
	if c.conf.Logger == nil {
		return
	}
	vars := maps.Keys(c.subst)
	sortVars(vars)
	for _, v := range vars {
		c.logf("%s = %s", v, c.subst.apply(v))
	}
}
