// Package codegen translates a resolved program into a Go program that
// evaluates it.
package codegen

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"go/format"
	"io"
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/hashicorp/go-set/v3"
	"github.com/smasher164/stlc/ast"
	"github.com/smasher164/stlc/fsx"
	"github.com/smasher164/stlc/types"
)

/*
int -> int64, bool -> bool, T -> struct type t_T, A -> B -> func(A) B
\x : A. e -> func(v_x A) B { ...; return e }
let x : A = d in e -> a block in which v_x is declared
a program -> a "go:build ignore" main package that prints the result
*/

const formatSource = true

var (
	ErrUnresolved = errors.New("codegen: program has unresolved types")
	ErrUnbound    = errors.New("codegen: unbound identifier")
)

type Codegen struct {
	buf bytes.Buffer
	tmp int
}

// Generate writes a Go program to w that evaluates e and prints its value, or
// its Go type if e is not an int or bool. Every type in e must be resolved
// and every identifier bound.
func Generate(w io.Writer, e *ast.TypedExpr) error {
	b, err := render(e)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// GenerateFile writes the program for e to name in fsys. Nothing is created
// if e cannot be compiled.
func GenerateFile(fsys fs.FS, name string, e *ast.TypedExpr) (err error) {
	b, err := render(e)
	if err != nil {
		return err
	}
	f, err := fsx.Create(fsys, name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = f.Write(b)
	return err
}

func render(e *ast.TypedExpr) ([]byte, error) {
	if !ast.IsGrounded(e, true) {
		return nil, ErrUnresolved
	}
	if err := checkBound(nil, e); err != nil {
		return nil, err
	}
	c := &Codegen{}
	c.program(e)
	b := c.buf.Bytes()
	if formatSource {
		var err error
		if b, err = format.Source(b); err != nil {
			return nil, fmt.Errorf("codegen: formatting output: %w", err)
		}
	}
	return b, nil
}

// checkBound reports the first identifier in e that no enclosing binder
// declares. Inference accepts a free identifier if it is ascribed a type, but
// there is no Go value to give it.
func checkBound(env *types.Env, e *ast.TypedExpr) error {
	switch x := e.Expr.(type) {
	case ast.Ident:
		if _, _, ok := env.LookupStack(x.Name); !ok {
			return fmt.Errorf("%s: %w %s", e.Span, ErrUnbound, x.Name)
		}
	case ast.App:
		if err := checkBound(env, x.Func); err != nil {
			return err
		}
		return checkBound(env, x.Arg)
	case ast.Lambda:
		return checkBound(env.Extend(x.Decl), x.Body)
	case ast.Let:
		if err := checkBound(env, x.Defn); err != nil {
			return err
		}
		return checkBound(env.Extend(x.Decl), x.Body)
	}
	return nil
}

func (c *Codegen) printf(format string, args ...any) {
	fmt.Fprintf(&c.buf, format, args...)
}

func (c *Codegen) freshName() string {
	name := "tmp" + strconv.Itoa(c.tmp)
	c.tmp++
	return name
}

func (c *Codegen) program(e *ast.TypedExpr) {
	c.printf("//go:build ignore\n\npackage main\n\nimport \"fmt\"\n\n")
	for _, name := range namedTypes(e) {
		c.printf("type %s struct{}\n\n", typeName(name))
	}
	c.printf("func main() {\n")
	result := c.codegenExpr(e)
	c.printf("var result %s = %s\n", typeString(e.Type), result)
	switch e.Type {
	case ast.Int, ast.Bool:
		c.printf("fmt.Println(result)\n")
	default:
		c.printf("fmt.Printf(\"%%T\\n\", result)\n")
	}
	c.printf("}\n")
}

// codegenExpr writes the statements that compute e and returns a Go
// expression for its value.
func (c *Codegen) codegenExpr(e *ast.TypedExpr) string {
	switch x := e.Expr.(type) {
	case ast.Number:
		return "int64(" + strconv.FormatInt(x.Value, 10) + ")"
	case ast.Boolean:
		return strconv.FormatBool(x.Value)
	case ast.Ident:
		return varName(x.Name)
	case ast.App:
		fn := c.codegenExpr(x.Func)
		arg := c.codegenExpr(x.Arg)
		return fn + "(" + arg + ")"
	case ast.Lambda:
		fvar := c.freshName()
		c.printf("var %s %s = func(%s %s) %s {\n", fvar, typeString(e.Type), varName(x.Decl.Name), typeString(x.Decl.Type), typeString(x.Ret))
		body := c.codegenExpr(x.Body)
		c.printf("return %s\n", body)
		c.printf("}\n")
		return fvar
	case ast.Let:
		// The block keeps the binding from clashing with an enclosing one
		// of the same name.
		lvar := c.freshName()
		c.printf("var %s %s\n", lvar, typeString(e.Type))
		c.printf("{\n")
		defn := c.codegenExpr(x.Defn)
		name := varName(x.Decl.Name)
		c.printf("var %s %s = %s\n", name, typeString(x.Decl.Type), defn)
		if name != "_" {
			c.printf("_ = %s\n", name)
		}
		body := c.codegenExpr(x.Body)
		c.printf("%s = %s\n", lvar, body)
		c.printf("}\n")
		return lvar
	}
	panic(fmt.Sprintf("unhandled node: %T", e.Expr))
}

func typeString(t ast.Type) string {
	switch t := t.(type) {
	case ast.Primitive:
		switch t {
		case ast.Int:
			return "int64"
		case ast.Bool:
			return "bool"
		}
	case ast.Named:
		return typeName(t.Name)
	case ast.Arrow:
		return "func(" + typeString(t.Arg) + ") " + typeString(t.Ret)
	}
	panic(fmt.Sprintf("typeString: %v", t))
}

func namedTypes(e *ast.TypedExpr) []string {
	names := set.New[string](0)
	var collect func(ast.Type)
	collect = func(t ast.Type) {
		switch t := t.(type) {
		case ast.Named:
			names.Insert(t.Name)
		case ast.Arrow:
			collect(t.Arg)
			collect(t.Ret)
		}
	}
	ast.ForEachType(e, collect)
	sorted := names.Slice()
	slices.SortFunc(sorted, cmp.Compare[string])
	return sorted
}

func varName(name string) string {
	if name == "_" {
		return name
	}
	return "v_" + mangle(name)
}

func typeName(name string) string {
	return "t_" + mangle(name)
}

// mangle maps a source identifier to a valid Go identifier suffix. Distinct
// names stay distinct: underscores are doubled, so an escape is the only
// place a single underscore appears.
func mangle(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '_':
			b.WriteString("__")
		case unicode.IsLetter(r), '0' <= r && r <= '9':
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "_u%04x", r)
		}
	}
	return b.String()
}
