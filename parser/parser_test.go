package parser_test

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"testing/fstest"
	"testing/iotest"

	"github.com/kr/pretty"
	"github.com/smasher164/stlc/ast"
	"github.com/smasher164/stlc/lexer"
	"github.com/smasher164/stlc/parser"
)

func decl(name string, t ...ast.Type) ast.VarDecl {
	if len(t) == 0 {
		return ast.NewDecl(name, nil)
	}
	return ast.NewDecl(name, t[0])
}

func id(name string) *ast.TypedExpr { return ast.NewIdent(name) }
func num(n int64) *ast.TypedExpr    { return ast.NewNumber(n) }
func boolean(b bool) *ast.TypedExpr { return ast.NewBoolean(b) }
func app(f, x *ast.TypedExpr) *ast.TypedExpr {
	return ast.NewApp(f, x)
}
func lam(d ast.VarDecl, body *ast.TypedExpr) *ast.TypedExpr {
	return ast.NewLambda(d, body)
}
func let(d ast.VarDecl, defn, body *ast.TypedExpr) *ast.TypedExpr {
	return ast.NewLet(d, defn, body)
}

func TestParseValid(t *testing.T) {
	named := func(name string) ast.Type { return ast.Named{Name: name} }
	cases := []struct {
		program  string
		expected *ast.TypedExpr
	}{
		// identifiers
		{"x", id("x")},
		{"foo", id("foo")},
		// numbers
		{"0", num(0)},
		{"42", num(42)},
		{"1_000", num(1000)},
		// booleans
		{"True", boolean(true)},
		{"False", boolean(false)},
		// lambda without type
		{`\x. x`, lam(decl("x"), id("x"))},
		{`\x y. x`, lam(decl("x"), lam(decl("y"), id("x")))},
		{`\x. 5`, lam(decl("x"), num(5))},
		{`λx. x`, lam(decl("x"), id("x"))},
		// lambda with type
		{`\x : int. x`, lam(decl("x", ast.Int), id("x"))},
		{`\x : int. \y : Bool. x`, lam(decl("x", ast.Int), lam(decl("y", named("Bool")), id("x")))},
		{`\(x : int) (y : Bool). x`, lam(decl("x", ast.Int), lam(decl("y", named("Bool")), id("x")))},
		{`\f : int -> bool. f`, lam(decl("f", ast.Func(ast.Int, ast.Bool)), id("f"))},
		// application
		{"5 y", app(num(5), id("y"))},
		{"z 4", app(id("z"), num(4))},
		{"True y", app(boolean(true), id("y"))},
		{"z False", app(id("z"), boolean(false))},
		{"x y", app(id("x"), id("y"))},
		{"(x y) z", app(app(id("x"), id("y")), id("z"))},
		{"x y z", app(app(id("x"), id("y")), id("z"))},
		{"x (y z)", app(id("x"), app(id("y"), id("z")))},
		// let without type
		{"let x = y in z", let(decl("x"), id("y"), id("z"))},
		{"let x = 5 in x", let(decl("x"), num(5), id("x"))},
		// let with type
		{"let x : int = 5 in x", let(decl("x", ast.Int), num(5), id("x"))},
		// let with lambda
		{
			`let x : (int -> int) = (\y : int. y) in x`,
			let(decl("x", ast.Func(ast.Int, ast.Int)), lam(decl("y", ast.Int), id("y")), id("x")),
		},
		// complex nesting
		{
			`let id : (int -> int) = (\x : int. x) in id 3`,
			let(decl("id", ast.Func(ast.Int, ast.Int)), lam(decl("x", ast.Int), id("x")), app(id("id"), num(3))),
		},
		// comments are trivia
		{"# the identity\n\\x. x", lam(decl("x"), id("x"))},
	}
	for _, c := range cases {
		t.Run(c.program, func(t *testing.T) {
			got, err := parser.Parse(c.program)
			if err != nil {
				t.Fatal(err)
			}
			want := ast.Instantiate(c.expected)
			if !ast.Equal(got, want) {
				t.Errorf("got %s, want %s", got.ASTString(0), want.ASTString(0))
			}
			if !ast.IsGrounded(got, false) {
				t.Errorf("%s: parser left a missing or non-internal type", c.program)
			}
		})
	}
}

func TestParseAnnotations(t *testing.T) {
	got, err := parser.Parse(`\(x : int) : int. (x : int)`)
	if err != nil {
		t.Fatal(err)
	}
	l, ok := got.Expr.(ast.Lambda)
	if !ok {
		t.Fatalf("got %T, want ast.Lambda", got.Expr)
	}
	if l.Ret != ast.Int {
		t.Errorf("result type: got %v, want int", l.Ret)
	}
	if l.Body.Type != ast.Int {
		t.Errorf("ascription: got %v, want int", l.Body.Type)
	}
	if !ast.IsInternal(got.Type) {
		t.Errorf("lambda type: got %v, want an internal variable", got.Type)
	}
}

func TestPlaceholdersAreDistinct(t *testing.T) {
	e, err := parser.Parse(`let f = \x y. x in f (\z. z) 1`)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[ast.TypeVar]bool)
	ast.ForEachType(e, func(typ ast.Type) {
		ast.TypeVars(typ, func(v ast.TypeVar) {
			if seen[v] {
				t.Errorf("variable %v allocated twice", v)
			}
			seen[v] = true
		})
	})
	if len(seen) == 0 {
		t.Fatal("no placeholders allocated")
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []struct {
		program string
		msg     string
	}{
		{"let", "expected identifier, found end of input"},
		{`\`, "expected parameter, found end of input"},
		{"let x = in y", "expected expression, found 'in'"},
		{`\x y : int. x`, "a result type needs a single parenthesized parameter"},
		{"(x", "expected ')', found end of input"},
		{"x )", "expected end of input, found ')'"},
		{"((1 : int) : int)", "expression already has a type annotation"},
		{"99999999999999999999", "integer literal 99999999999999999999 out of range"},
		{"9_223_372_036_854_775_808", "integer literal 9_223_372_036_854_775_808 out of range"},
		{"1 @", "expected end of input, found unexpected character '@'"},
	}
	for _, c := range cases {
		_, err := parser.Parse(c.program)
		var perr *parser.Error
		if !errors.As(err, &perr) {
			t.Errorf("%q: got %v, want *parser.Error", c.program, err)
			continue
		}
		if perr.Msg != c.msg {
			t.Errorf("%q: got %q, want %q", c.program, perr.Msg, c.msg)
		}
	}
}

func TestParseLargestInteger(t *testing.T) {
	e, err := parser.Parse("9_223_372_036_854_775_807")
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := e.Expr.(ast.Number); !ok || n.Value != math.MaxInt64 {
		t.Errorf("got %# v, want the largest int64", pretty.Formatter(e.Expr))
	}
}

func TestParseType(t *testing.T) {
	cases := []struct {
		src  string
		want ast.Type
	}{
		{"int", ast.Int},
		{"bool", ast.Bool},
		{"real", ast.Named{Name: "real"}},
		{"int -> int -> bool", ast.Func(ast.Int, ast.Int, ast.Bool)},
		{"(int -> int) -> bool", ast.Func(ast.Func(ast.Int, ast.Int), ast.Bool)},
	}
	for _, c := range cases {
		got, err := parser.ParseType(c.src)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.want {
			t.Errorf("%q: %v", c.src, pretty.Diff(c.want, got))
		}
	}
}

func TestParseReaderError(t *testing.T) {
	errRead := errors.New("disk on fire")
	r := io.MultiReader(strings.NewReader("1"), iotest.ErrReader(errRead))
	e, err := parser.ParseReader(r)
	if !errors.Is(err, errRead) {
		t.Fatalf("got %v, want %v", err, errRead)
	}
	if e != nil {
		t.Errorf("got tree %v along with a read error", e)
	}
}

func TestParseFile(t *testing.T) {
	fsys := fstest.MapFS{
		"id.lam":  &fstest.MapFile{Data: []byte("\\x : int.\n  x\n")},
		"bad.lam": &fstest.MapFile{Data: []byte("let x =\n  in y")},
	}
	e, err := parser.ParseFile(fsys, "id.lam")
	if err != nil {
		t.Fatal(err)
	}
	want := lexer.Span{Start: lexer.Pos{Offset: 0, Line: 1, Column: 1}, End: lexer.Pos{Offset: 12, Line: 2, Column: 3}}
	if e.Span != want {
		t.Errorf("span: %v", pretty.Diff(want, e.Span))
	}
	_, err = parser.ParseFile(fsys, "bad.lam")
	if err == nil || err.Error() != "bad.lam:2:3-4: expected expression, found 'in'" {
		t.Errorf("got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	programs := []string{
		`\x. x`,
		`\x : int. \y : Bool. x`,
		`let f : int -> int = \x. x in f 3`,
		`(\x. x) ((\y. y) 1)`,
		`f (\x. x) (let y = 1 in y)`,
		`\(x) : int. x`,
		`(1 : int)`,
	}
	for _, src := range programs {
		e, err := parser.Parse(src)
		if err != nil {
			t.Fatal(err)
		}
		again, err := parser.Parse(e.String())
		if err != nil {
			t.Fatalf("%q printed as %q: %v", src, e.String(), err)
		}
		if !ast.Equal(e, again) {
			t.Errorf("%q printed as %q, which parses differently", src, e.String())
		}
	}
}
