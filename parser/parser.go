package parser

import (
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/smasher164/stlc/ast"
	"github.com/smasher164/stlc/lexer"
)

const debug = false

type parser struct {
	l      Lexer
	tok    lexer.Token
	buf    []lexer.Token
	indent int
}

type Lexer interface {
	Next() lexer.Token
}

// Error is a syntax error at a position in the source.
type Error struct {
	Span lexer.Span
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

// bailout unwinds the parser to the entry point after the first error.
type bailout struct {
	err *Error
}

func (p *parser) trace(msg string) func() {
	if debug {
		fmt.Printf("%*s%s\n", p.indent*2, "", msg)
		p.indent++
		return func() {
			p.indent--
		}
	}
	return func() {}
}

func (p *parser) errorf(span lexer.Span, format string, args ...any) {
	panic(bailout{&Error{Span: span, Msg: fmt.Sprintf(format, args...)}})
}

func (p *parser) unexpected(what string) {
	p.errorf(p.tok.Span, "expected %s, found %s", what, p.tok.Describe())
}

// Parse parses a program. Every annotation left out of the source is filled
// with a distinct internal type variable.
func Parse(src string) (*ast.TypedExpr, error) {
	return ParseReader(strings.NewReader(src))
}

func ParseReader(r io.Reader) (*ast.TypedExpr, error) {
	l := lexer.New(r)
	e, err := parseProgram(l)
	if err != nil {
		return nil, err
	}
	if err := l.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

func ParseFile(fsys fs.FS, filename string) (*ast.TypedExpr, error) {
	l, err := lexer.NewLexer(fsys, filename)
	if err != nil {
		return nil, err
	}
	e, err := parseProgram(l)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", filename, err)
	}
	return e, nil
}

// ParseType parses a type such as "int -> (bool -> T)".
func ParseType(src string) (t ast.Type, err error) {
	p := &parser{l: lexer.New(strings.NewReader(src))}
	defer p.catch(&err)
	p.next()
	t = p.parseType()
	p.expect(lexer.EOF, "end of input")
	return t, nil
}

func parseProgram(l Lexer) (e *ast.TypedExpr, err error) {
	p := &parser{l: l}
	defer p.catch(&err)
	e = p.parseFile()
	return ast.Instantiate(e), nil
}

func (p *parser) catch(err *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*err = b.err
	}
}

func (p *parser) next() {
	if len(p.buf) > 0 {
		p.tok = p.buf[0]
		p.buf = p.buf[1:]
		return
	}
	p.tok = p.l.Next()
}

func (p *parser) peek() lexer.Token {
	if len(p.buf) == 0 {
		p.buf = append(p.buf, p.l.Next())
	}
	return p.buf[0]
}

func (p *parser) expect(ttyp lexer.TokenType, what string) lexer.Token {
	if p.tok.Type != ttyp {
		p.unexpected(what)
	}
	tok := p.tok
	p.next()
	return tok
}

func (p *parser) parseFile() *ast.TypedExpr {
	defer p.trace("parseFile")()
	p.next()
	e := p.parseExpr()
	p.expect(lexer.EOF, "end of input")
	return e
}

func (p *parser) parseExpr() *ast.TypedExpr {
	defer p.trace("parseExpr")()
	switch p.tok.Type {
	case lexer.Let:
		return p.parseLet()
	case lexer.Backslash:
		return p.parseLambda()
	}
	return p.parseApp()
}

func (p *parser) parseLet() *ast.TypedExpr {
	defer p.trace("parseLet")()
	let := p.expect(lexer.Let, "'let'")
	decl := p.parseDecl()
	p.expect(lexer.Equals, "'='")
	defn := p.parseExpr()
	p.expect(lexer.In, "'in'")
	body := p.parseExpr()
	e := ast.NewLet(decl, defn, body)
	e.Span = let.Span.Add(body.Span)
	return e
}

// parseDecl parses ident [":" type].
func (p *parser) parseDecl() ast.VarDecl {
	defer p.trace("parseDecl")()
	id := p.expect(lexer.Ident, "identifier")
	decl := ast.VarDecl{Name: id.Data, Span: id.Span}
	if p.tok.Type == lexer.Colon {
		p.next()
		decl.Type = p.parseType()
	}
	return decl
}

// parseParenDecl parses "(" ident [":" type] ")".
func (p *parser) parseParenDecl() ast.VarDecl {
	defer p.trace("parseParenDecl")()
	lparen := p.expect(lexer.LeftParen, "'('")
	decl := p.parseDecl()
	rparen := p.expect(lexer.RightParen, "')'")
	decl.Span = lparen.Span.Add(rparen.Span)
	return decl
}

// parseLambda parses one of
//
//	\x y (z : T). e
//	\x : T. e
//	\(x [: T]) : R. e
func (p *parser) parseLambda() *ast.TypedExpr {
	defer p.trace("parseLambda")()
	backslash := p.expect(lexer.Backslash, "'\\'")
	var (
		decls  []ast.VarDecl
		ret    ast.Type
		parens int
	)
	if p.tok.Type == lexer.Ident && p.peek().Type == lexer.Colon {
		decls = append(decls, p.parseDecl())
	} else {
	loop:
		for {
			switch p.tok.Type {
			case lexer.Ident:
				decls = append(decls, ast.VarDecl{Name: p.tok.Data, Span: p.tok.Span})
				p.next()
			case lexer.LeftParen:
				decls = append(decls, p.parseParenDecl())
				parens++
			default:
				break loop
			}
		}
		if len(decls) == 0 {
			p.unexpected("parameter")
		}
		if p.tok.Type == lexer.Colon {
			if len(decls) != 1 || parens != 1 {
				p.errorf(p.tok.Span, "a result type needs a single parenthesized parameter")
			}
			p.next()
			ret = p.parseType()
		}
	}
	p.expect(lexer.Period, "'.'")
	body := p.parseExpr()
	for i := len(decls) - 1; i >= 0; i-- {
		lam := &ast.TypedExpr{Expr: ast.Lambda{Decl: decls[i], Body: body, Ret: ret}}
		lam.Span = decls[i].Span.Add(body.Span)
		body = lam
	}
	body.Span = backslash.Span.Add(body.Span)
	return body
}

func (p *parser) parseApp() *ast.TypedExpr {
	defer p.trace("parseApp")()
	fn := p.parseAtom()
	for p.tok.BeginsAtom() {
		arg := p.parseAtom()
		app := ast.NewApp(fn, arg)
		app.Span = fn.Span.Add(arg.Span)
		fn = app
	}
	return fn
}

func (p *parser) parseAtom() *ast.TypedExpr {
	defer p.trace("parseAtom")()
	tok := p.tok
	var e *ast.TypedExpr
	switch tok.Type {
	case lexer.Ident:
		e = ast.NewIdent(tok.Data)
	case lexer.Number:
		n, err := strconv.ParseInt(strings.ReplaceAll(tok.Data, "_", ""), 10, 64)
		if err != nil {
			p.errorf(tok.Span, "integer literal %s out of range", tok.Data)
		}
		e = ast.NewNumber(n)
	case lexer.True, lexer.False:
		e = ast.NewBoolean(tok.Type == lexer.True)
	case lexer.LeftParen:
		return p.parseParenExpr()
	default:
		p.unexpected("expression")
	}
	e.Span = tok.Span
	p.next()
	return e
}

// parseParenExpr parses "(" expr [":" type] ")".
func (p *parser) parseParenExpr() *ast.TypedExpr {
	defer p.trace("parseParenExpr")()
	lparen := p.expect(lexer.LeftParen, "'('")
	e := p.parseExpr()
	if p.tok.Type == lexer.Colon {
		colon := p.tok
		if e.Type != nil {
			p.errorf(colon.Span, "expression already has a type annotation")
		}
		p.next()
		e = &ast.TypedExpr{Expr: e.Expr, Type: p.parseType()}
	}
	rparen := p.expect(lexer.RightParen, "')'")
	e.Span = lparen.Span.Add(rparen.Span)
	return e
}

// parseType parses a right-associative arrow type.
func (p *parser) parseType() ast.Type {
	defer p.trace("parseType")()
	t := p.parseTypeAtom()
	if p.tok.Type == lexer.RightArrow {
		p.next()
		return ast.Arrow{Arg: t, Ret: p.parseType()}
	}
	return t
}

func (p *parser) parseTypeAtom() ast.Type {
	defer p.trace("parseTypeAtom")()
	switch p.tok.Type {
	case lexer.Ident:
		t := ast.TypeName(p.tok.Data)
		p.next()
		return t
	case lexer.LeftParen:
		p.next()
		t := p.parseType()
		p.expect(lexer.RightParen, "')'")
		return t
	}
	p.unexpected("type")
	return nil
}
