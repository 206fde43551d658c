package types

import (
	"github.com/smasher164/stlc/ast"
	"github.com/smasher164/stlc/lexer"
)

// Env is a chain of scopes, innermost first. Scopes are never mutated once
// a child has been made from them, so an Env can be shared freely.
type Env struct {
	parent  *Env
	symbols map[string]Bind
}

// Bind records the declared type of a bound variable.
type Bind struct {
	Type ast.Type
	Span lexer.Span
}

func NewEnv(parent *Env) *Env {
	return &Env{
		parent:  parent,
		symbols: make(map[string]Bind),
	}
}

func (e *Env) AddScope() *Env {
	return NewEnv(e)
}

// Extend returns a new scope binding decl on top of e. A declaration named
// "_" binds nothing.
func (e *Env) Extend(decl ast.VarDecl) *Env {
	scope := e.AddScope()
	if decl.Name != "_" {
		scope.symbols[decl.Name] = Bind{Type: decl.Type, Span: decl.Span}
	}
	return scope
}

func (e *Env) LookupLocal(name string) (Bind, bool) {
	if e == nil {
		return Bind{}, false
	}
	b, ok := e.symbols[name]
	return b, ok
}

func (e *Env) LookupStack(name string) (b Bind, p *Env, ok bool) {
	p = e
	for p != nil {
		if b, ok = p.LookupLocal(name); ok {
			return b, p, ok
		}
		p = p.parent
	}
	return Bind{}, nil, false
}
