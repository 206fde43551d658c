package ast

import (
	"fmt"
	"strconv"
)

// Type is a type term. All implementations are comparable values, so == is
// structural equality and types can be used directly as map keys.
type Type interface {
	isType()
	String() string
}

var (
	_ Type = Primitive(0)
	_ Type = Named{}
	_ Type = Arrow{}
	_ Type = TypeVar{}
)

type Primitive int

const (
	Int Primitive = iota
	Bool
)

func (Primitive) isType() {}

func (p Primitive) String() string {
	switch p {
	case Int:
		return "int"
	case Bool:
		return "bool"
	default:
		panic("unreachable")
	}
}

var PrimitiveMap = map[string]Primitive{
	"int":  Int,
	"bool": Bool,
}

// Named is an opaque user type. Two Named types are the same type iff their
// names are equal.
type Named struct {
	Name string
}

func (Named) isType() {}

func (n Named) String() string { return n.Name }

// TypeName returns the primitive spelled name, or a Named type otherwise.
func TypeName(name string) Type {
	if p, ok := PrimitiveMap[name]; ok {
		return p
	}
	return Named{Name: name}
}

type Arrow struct {
	Arg Type
	Ret Type
}

func (Arrow) isType() {}

func (a Arrow) String() string {
	arg := typeString(a.Arg)
	if _, ok := a.Arg.(Arrow); ok {
		arg = "(" + arg + ")"
	}
	return arg + " -> " + typeString(a.Ret)
}

// Func builds the right-associated arrow t0 -> t1 -> ... -> tn.
func Func(t0 Type, ts ...Type) Type {
	if len(ts) == 0 {
		return t0
	}
	return Arrow{Arg: t0, Ret: Func(ts[0], ts[1:]...)}
}

// TypeVar is a placeholder for a type that is not yet known. Internal
// variables stand in for annotations omitted from the source and must be
// resolved by inference.
type TypeVar struct {
	ID       int
	Internal bool
}

func (TypeVar) isType() {}

func (v TypeVar) String() string {
	if v.Internal {
		return "?" + strconv.Itoa(v.ID)
	}
	return "$" + strconv.Itoa(v.ID)
}

func IsInternal(t Type) bool {
	v, ok := t.(TypeVar)
	return ok && v.Internal
}

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// TypeVars calls fn on every type variable occurring in t, left to right.
func TypeVars(t Type, fn func(TypeVar)) {
	switch t := t.(type) {
	case TypeVar:
		fn(t)
	case Arrow:
		TypeVars(t.Arg, fn)
		TypeVars(t.Ret, fn)
	case Primitive, Named, nil:
	default:
		panic(fmt.Sprintf("unknown type %T", t))
	}
}

// Complete reports whether t has no missing (nil) components.
func Complete(t Type) bool {
	switch t := t.(type) {
	case nil:
		return false
	case Arrow:
		return Complete(t.Arg) && Complete(t.Ret)
	}
	return true
}

// IsGroundedType reports whether t is usable as output. With
// requireFullyAnnotated, no variables may remain; otherwise only internal
// variables are allowed.
func IsGroundedType(t Type, requireFullyAnnotated bool) bool {
	if !Complete(t) {
		return false
	}
	grounded := true
	TypeVars(t, func(v TypeVar) {
		if requireFullyAnnotated || !v.Internal {
			grounded = false
		}
	})
	return grounded
}

// Supply hands out fresh internal type variables. A Supply must not be shared
// between trees that are inferred independently.
type Supply struct {
	last int
}

func (s *Supply) Fresh() TypeVar {
	s.last++
	return TypeVar{ID: s.last, Internal: true}
}

// SupplyAfter returns a Supply whose variables cannot collide with any
// variable already present in e.
func SupplyAfter(e *TypedExpr) *Supply {
	s := &Supply{}
	ForEachType(e, func(t Type) {
		TypeVars(t, func(v TypeVar) {
			if v.ID > s.last {
				s.last = v.ID
			}
		})
	})
	return s
}
