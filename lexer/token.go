package lexer

import (
	"fmt"

	"golang.org/x/exp/slices"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type=TokenType
type TokenType int

const (
	EOF TokenType = iota
	Backslash
	Period
	Colon
	Equals
	LeftParen
	RightParen
	RightArrow

	Let
	In
	True
	False

	Ident
	Number
	Whitespace
	SingleLineComment
	Illegal
)

var tokenNames = [...]string{
	EOF:               "EOF",
	Backslash:         "Backslash",
	Period:            "Period",
	Colon:             "Colon",
	Equals:            "Equals",
	LeftParen:         "LeftParen",
	RightParen:        "RightParen",
	RightArrow:        "RightArrow",
	Let:               "Let",
	In:                "In",
	True:              "True",
	False:             "False",
	Ident:             "Ident",
	Number:            "Number",
	Whitespace:        "Whitespace",
	SingleLineComment: "SingleLineComment",
	Illegal:           "Illegal",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var SingleCharTokens = map[rune]TokenType{
	'\\': Backslash,
	'λ':  Backslash,
	'.':  Period,
	':':  Colon,
	'=':  Equals,
	'(':  LeftParen,
	')':  RightParen,
	eof:  EOF,
}

var DoubleCharTokens = map[[2]rune]TokenType{
	{'-', '>'}: RightArrow,
}

var Keywords = map[string]TokenType{
	"let":   Let,
	"in":    In,
	"True":  True,
	"False": False,
}

type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) Min(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset < other.Offset {
		return p
	}
	return other
}

func (p Pos) Max(other Pos) Pos {
	if p.Column == 0 {
		return other
	}
	if other.Column == 0 {
		return p
	}
	if p.Offset > other.Offset {
		return p
	}
	return other
}

type Span struct {
	Start Pos
	End   Pos
}

func (span Span) Add(other Span) Span {
	return Span{span.Start.Min(other.Start), span.End.Max(other.End)}
}

// IsZero reports whether the span was never set, e.g. for nodes built by hand.
func (s Span) IsZero() bool {
	return s.Start.Line == 0 && s.End.Line == 0
}

func (s Span) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
	}
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

type Token struct {
	LeadingTrivia []Token
	Type          TokenType
	Span          Span
	Data          string
}

func (t Token) String() string {
	if t.Data == "" {
		return fmt.Sprintf("%s:%s", t.Span, t.Type)
	}
	return fmt.Sprintf("%s:%s %q", t.Span, t.Type, t.Data)
}

func (a Token) ExactEq(b Token) bool {
	return a.Type == b.Type && a.Span == b.Span && a.Data == b.Data && slices.EqualFunc(a.LeadingTrivia, b.LeadingTrivia, Token.ExactEq)
}

// BeginsAtom reports whether t can start an operand of an application.
func (t Token) BeginsAtom() bool {
	switch t.Type {
	case Ident, Number, True, False, LeftParen:
		return true
	}
	return false
}

// Describe renders the token the way it would appear in a diagnostic.
func (t Token) Describe() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case Ident, Number:
		return fmt.Sprintf("%q", t.Data)
	case Illegal:
		return t.Data
	case Let:
		return "'let'"
	case In:
		return "'in'"
	case True:
		return "'True'"
	case False:
		return "'False'"
	case RightArrow:
		return "'->'"
	}
	for r, ttyp := range SingleCharTokens {
		if ttyp == t.Type && r != 'λ' {
			return fmt.Sprintf("%q", r)
		}
	}
	return t.Type.String()
}
