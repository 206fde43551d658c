package ast

import (
	"fmt"
	"strconv"

	"github.com/smasher164/stlc/lexer"
)

// Expr is the syntactic part of an expression. Its type lives in the
// enclosing TypedExpr.
type Expr interface {
	isExpr()
	ASTString(depth int) string
}

var (
	_ Expr = Ident{}
	_ Expr = Number{}
	_ Expr = Boolean{}
	_ Expr = Let{}
	_ Expr = Lambda{}
	_ Expr = App{}
)

// TypedExpr is an expression together with its type slot. Trees are treated
// as immutable: passes that change types build new nodes.
type TypedExpr struct {
	Expr Expr
	Type Type
	Span lexer.Span
}

type VarDecl struct {
	Name string
	Type Type
	Span lexer.Span
}

type Ident struct {
	Name string
}

type Number struct {
	Value int64
}

type Boolean struct {
	Value bool
}

type Let struct {
	Decl VarDecl
	Defn *TypedExpr
	Body *TypedExpr
}

// Lambda binds Decl in Body. Ret is the declared result type.
type Lambda struct {
	Decl VarDecl
	Body *TypedExpr
	Ret  Type
}

type App struct {
	Func *TypedExpr
	Arg  *TypedExpr
}

func (Ident) isExpr()   {}
func (Number) isExpr()  {}
func (Boolean) isExpr() {}
func (Let) isExpr()     {}
func (Lambda) isExpr()  {}
func (App) isExpr()     {}

// Constructors leave every type slot nil. Pass the result through Instantiate
// before inference.

func NewIdent(name string) *TypedExpr { return &TypedExpr{Expr: Ident{Name: name}} }

func NewNumber(n int64) *TypedExpr { return &TypedExpr{Expr: Number{Value: n}} }

func NewBoolean(b bool) *TypedExpr { return &TypedExpr{Expr: Boolean{Value: b}} }

func NewDecl(name string, t Type) VarDecl { return VarDecl{Name: name, Type: t} }

func NewLambda(decl VarDecl, body *TypedExpr) *TypedExpr {
	return &TypedExpr{Expr: Lambda{Decl: decl, Body: body}}
}

func NewApp(fn, arg *TypedExpr) *TypedExpr {
	return &TypedExpr{Expr: App{Func: fn, Arg: arg}}
}

func NewLet(decl VarDecl, defn, body *TypedExpr) *TypedExpr {
	return &TypedExpr{Expr: Let{Decl: decl, Defn: defn, Body: body}}
}

// Apply left-folds args onto fn: Apply(f, x, y) is (f x) y.
func Apply(fn *TypedExpr, args ...*TypedExpr) *TypedExpr {
	for _, arg := range args {
		fn = NewApp(fn, arg)
	}
	return fn
}

// ForEachType calls fn on every type slot of e in pre-order: the node's own
// type first, then declaration and result types, then children.
func ForEachType(e *TypedExpr, fn func(Type)) {
	Inspect(e, func(e *TypedExpr) bool {
		fn(e.Type)
		switch x := e.Expr.(type) {
		case Let:
			fn(x.Decl.Type)
		case Lambda:
			fn(x.Decl.Type)
			fn(x.Ret)
		}
		return true
	})
}

// Inspect traverses e in pre-order, calling f for each node. Children are
// skipped when f returns false.
func Inspect(e *TypedExpr, f func(*TypedExpr) bool) {
	if e == nil || !f(e) {
		return
	}
	switch x := e.Expr.(type) {
	case Let:
		Inspect(x.Defn, f)
		Inspect(x.Body, f)
	case Lambda:
		Inspect(x.Body, f)
	case App:
		Inspect(x.Func, f)
		Inspect(x.Arg, f)
	}
}

// Equal reports whether a and b have the same shape and types. Spans are
// ignored.
func Equal(a, b *TypedExpr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type {
		return false
	}
	switch x := a.Expr.(type) {
	case Ident, Number, Boolean:
		return a.Expr == b.Expr
	case Let:
		y, ok := b.Expr.(Let)
		return ok && declEqual(x.Decl, y.Decl) && Equal(x.Defn, y.Defn) && Equal(x.Body, y.Body)
	case Lambda:
		y, ok := b.Expr.(Lambda)
		return ok && declEqual(x.Decl, y.Decl) && x.Ret == y.Ret && Equal(x.Body, y.Body)
	case App:
		y, ok := b.Expr.(App)
		return ok && Equal(x.Func, y.Func) && Equal(x.Arg, y.Arg)
	}
	panic(fmt.Sprintf("unknown expression %T", a.Expr))
}

func declEqual(a, b VarDecl) bool {
	return a.Name == b.Name && a.Type == b.Type
}

// IsGrounded reports whether every type slot of e is grounded; see
// IsGroundedType.
func IsGrounded(e *TypedExpr, requireFullyAnnotated bool) bool {
	grounded := true
	ForEachType(e, func(t Type) {
		if grounded && !IsGroundedType(t, requireFullyAnnotated) {
			grounded = false
		}
	})
	return grounded
}

// Instantiate returns a copy of e in which every missing type, including
// missing parts of arrows, is replaced by a distinct fresh internal variable.
func Instantiate(e *TypedExpr) *TypedExpr {
	s := SupplyAfter(e)
	return MapTypes(e, func(t Type) Type { return freshType(s, t) })
}

// MapTypes returns a copy of e with fn applied to every type slot, in the
// same order as ForEachType.
func MapTypes(e *TypedExpr, fn func(Type) Type) *TypedExpr {
	out := &TypedExpr{Type: fn(e.Type), Span: e.Span}
	switch x := e.Expr.(type) {
	case Ident, Number, Boolean:
		out.Expr = x
	case Let:
		decl := VarDecl{Name: x.Decl.Name, Type: fn(x.Decl.Type), Span: x.Decl.Span}
		defn := MapTypes(x.Defn, fn)
		out.Expr = Let{Decl: decl, Defn: defn, Body: MapTypes(x.Body, fn)}
	case Lambda:
		decl := VarDecl{Name: x.Decl.Name, Type: fn(x.Decl.Type), Span: x.Decl.Span}
		ret := fn(x.Ret)
		out.Expr = Lambda{Decl: decl, Body: MapTypes(x.Body, fn), Ret: ret}
	case App:
		f := MapTypes(x.Func, fn)
		out.Expr = App{Func: f, Arg: MapTypes(x.Arg, fn)}
	default:
		panic(fmt.Sprintf("unknown expression %T", e.Expr))
	}
	return out
}

func freshType(s *Supply, t Type) Type {
	switch t := t.(type) {
	case nil:
		return s.Fresh()
	case Arrow:
		return Arrow{Arg: freshType(s, t.Arg), Ret: freshType(s, t.Ret)}
	}
	return t
}

func indent(depth int) string {
	return fmt.Sprintf("%*s", depth*2, "")
}

func (e *TypedExpr) ASTString(depth int) string {
	return fmt.Sprintf("TypedExpr\n%sExpr: %s\n%sType: %s", indent(depth+1), e.Expr.ASTString(depth+1), indent(depth+1), typeString(e.Type))
}

func (d VarDecl) ASTString(depth int) string {
	return fmt.Sprintf("VarDecl\n%sName: %s\n%sType: %s", indent(depth+1), d.Name, indent(depth+1), typeString(d.Type))
}

func (i Ident) ASTString(depth int) string {
	return fmt.Sprintf("Ident: %s", i.Name)
}

func (n Number) ASTString(depth int) string {
	return fmt.Sprintf("Number: %s", strconv.FormatInt(n.Value, 10))
}

func (b Boolean) ASTString(depth int) string {
	return fmt.Sprintf("Boolean: %t", b.Value)
}

func (l Let) ASTString(depth int) string {
	return fmt.Sprintf(
		"Let\n%sDecl: %s\n%sDefn: %s\n%sBody: %s",
		indent(depth+1), l.Decl.ASTString(depth+1),
		indent(depth+1), l.Defn.ASTString(depth+1),
		indent(depth+1), l.Body.ASTString(depth+1))
}

func (l Lambda) ASTString(depth int) string {
	return fmt.Sprintf(
		"Lambda\n%sDecl: %s\n%sBody: %s\n%sRet: %s",
		indent(depth+1), l.Decl.ASTString(depth+1),
		indent(depth+1), l.Body.ASTString(depth+1),
		indent(depth+1), typeString(l.Ret))
}

func (a App) ASTString(depth int) string {
	return fmt.Sprintf(
		"App\n%sFunc: %s\n%sArg: %s",
		indent(depth+1), a.Func.ASTString(depth+1),
		indent(depth+1), a.Arg.ASTString(depth+1))
}
