package ast

import (
	"strconv"
	"strings"
)

type position int

const (
	top position = iota
	fun          // function of an application
	arg          // argument of an application
)

// String renders e as source text. Annotations that are internal variables
// are left out, so the output of the parser prints back as it was written,
// and a resolved tree prints with every annotation spelled out.
func (e *TypedExpr) String() string {
	var b strings.Builder
	writeTyped(&b, e, top)
	return b.String()
}

func writeTyped(b *strings.Builder, e *TypedExpr, pos position) {
	if e.Type == nil || IsInternal(e.Type) {
		writeExpr(b, e.Expr, pos)
		return
	}
	b.WriteByte('(')
	writeExpr(b, e.Expr, top)
	b.WriteString(" : ")
	b.WriteString(e.Type.String())
	b.WriteByte(')')
}

func writeExpr(b *strings.Builder, x Expr, pos position) {
	switch x := x.(type) {
	case Ident:
		b.WriteString(x.Name)
	case Number:
		b.WriteString(strconv.FormatInt(x.Value, 10))
	case Boolean:
		if x.Value {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case Let:
		openParen(b, pos != top)
		b.WriteString("let ")
		b.WriteString(x.Decl.Name)
		if annotated(x.Decl.Type) {
			b.WriteString(" : ")
			b.WriteString(x.Decl.Type.String())
		}
		b.WriteString(" = ")
		writeTyped(b, x.Defn, top)
		b.WriteString(" in ")
		writeTyped(b, x.Body, top)
		closeParen(b, pos != top)
	case Lambda:
		openParen(b, pos != top)
		b.WriteByte('\\')
		switch {
		case annotated(x.Ret):
			b.WriteByte('(')
			b.WriteString(x.Decl.Name)
			if annotated(x.Decl.Type) {
				b.WriteString(" : ")
				b.WriteString(x.Decl.Type.String())
			}
			b.WriteString(") : ")
			b.WriteString(x.Ret.String())
		case annotated(x.Decl.Type):
			b.WriteString(x.Decl.Name)
			b.WriteString(" : ")
			b.WriteString(x.Decl.Type.String())
		default:
			b.WriteString(x.Decl.Name)
		}
		b.WriteString(". ")
		writeTyped(b, x.Body, top)
		closeParen(b, pos != top)
	case App:
		openParen(b, pos == arg)
		writeTyped(b, x.Func, fun)
		b.WriteByte(' ')
		writeTyped(b, x.Arg, arg)
		closeParen(b, pos == arg)
	default:
		panic("unreachable")
	}
}

func annotated(t Type) bool {
	return t != nil && !IsInternal(t)
}

func openParen(b *strings.Builder, paren bool) {
	if paren {
		b.WriteByte('(')
	}
}

func closeParen(b *strings.Builder, paren bool) {
	if paren {
		b.WriteByte(')')
	}
}
