// Package suite runs programs against their expected types.
//
// A suite file is YAML:
//
//	cases:
//	  - name: identity
//	    program: \x : int. x
//	    type: int -> int
//	  - name: free variable
//	    program: x
//	    error: insufficient-annotations
//
// Each case expects either a type or one of the error kinds.
package suite

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/samber/lo"
	"github.com/smasher164/stlc/ast"
	"github.com/smasher164/stlc/parser"
	"github.com/smasher164/stlc/types"
	"gopkg.in/yaml.v3"
)

// Ext is the file extension of suite files.
const Ext = ".yaml"

// Error kinds a case can expect.
const (
	TypeMismatch            = "type-mismatch"
	InsufficientAnnotations = "insufficient-annotations"
	SyntaxError             = "syntax-error"
)

var errorKinds = []string{TypeMismatch, InsufficientAnnotations, SyntaxError}

type Suite struct {
	// Path is the file the suite was loaded from.
	Path  string `yaml:"-"`
	Cases []Case `yaml:"cases"`
}

type Case struct {
	Name    string `yaml:"name"`
	Program string `yaml:"program"`
	// Type is the expected type of the program. Mutually exclusive with Error.
	Type string `yaml:"type,omitempty"`
	// Error is the expected error kind. Mutually exclusive with Type.
	Error string `yaml:"error,omitempty"`
}

// Load reads and validates the suite at path in fsys.
func Load(fsys fs.FS, path string) (*Suite, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading suite %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadAll loads every suite file matching pattern, in lexical order.
func LoadAll(fsys fs.FS, pattern string) ([]*Suite, error) {
	paths, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	paths = lo.Filter(paths, func(p string, _ int) bool {
		info, err := fs.Stat(fsys, p)
		return err == nil && !info.IsDir()
	})
	if len(paths) == 0 {
		return nil, fmt.Errorf("no suite files match %s", pattern)
	}
	var suites []*Suite
	for _, p := range paths {
		s, err := Load(fsys, p)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	return suites, nil
}

// Parse decodes a suite. path is used in error messages.
func Parse(data []byte, path string) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s.Path = path
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Suite) validate() error {
	if len(s.Cases) == 0 {
		return fmt.Errorf("%s: no cases defined", s.Path)
	}
	seen := make(map[string]bool)
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("%s: cases[%d]: name is required", s.Path, i)
		}
		if seen[c.Name] {
			return fmt.Errorf("%s: cases[%d] (%s): duplicate name", s.Path, i, c.Name)
		}
		seen[c.Name] = true
		if c.Program == "" {
			return fmt.Errorf("%s: cases[%d] (%s): program is required", s.Path, i, c.Name)
		}
		switch {
		case c.Type == "" && c.Error == "":
			return fmt.Errorf("%s: cases[%d] (%s): one of type or error is required", s.Path, i, c.Name)
		case c.Type != "" && c.Error != "":
			return fmt.Errorf("%s: cases[%d] (%s): type and error are mutually exclusive", s.Path, i, c.Name)
		case c.Type != "":
			if _, err := parser.ParseType(c.Type); err != nil {
				return fmt.Errorf("%s: cases[%d] (%s): type: %w", s.Path, i, c.Name, err)
			}
		case !lo.Contains(errorKinds, c.Error):
			return fmt.Errorf("%s: cases[%d] (%s): unknown error kind %q", s.Path, i, c.Name, c.Error)
		}
	}
	return nil
}

// Result is the outcome of one case.
type Result struct {
	Case Case
	// Resolved is the inferred tree, if inference succeeded.
	Resolved *ast.TypedExpr
	// Err is the error from parsing or inference, if any.
	Err error
	// Failure explains why the case did not meet its expectation. It is nil
	// when the case passed.
	Failure error
}

func (r Result) Passed() bool {
	return r.Failure == nil
}

// Kind classifies an error from parsing or inference as one of the error
// kinds, or returns "" for nil and unrecognized errors.
func Kind(err error) string {
	var perr *parser.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, types.ErrTypeMismatch):
		return TypeMismatch
	case errors.Is(err, types.ErrInsufficientAnnotations):
		return InsufficientAnnotations
	case errors.As(err, &perr):
		return SyntaxError
	}
	return ""
}

// Run evaluates each case with conf.
func (s *Suite) Run(conf *types.Config) []Result {
	return lo.Map(s.Cases, func(c Case, _ int) Result {
		return runCase(conf, c)
	})
}

func runCase(conf *types.Config, c Case) Result {
	r := Result{Case: c}
	e, err := parser.Parse(c.Program)
	if err == nil {
		r.Resolved, err = conf.Infer(e)
	}
	r.Err = err
	if c.Error != "" {
		if kind := Kind(err); kind != c.Error {
			if err == nil {
				r.Failure = fmt.Errorf("expected %s, got type %s", c.Error, r.Resolved.Type)
			} else {
				r.Failure = fmt.Errorf("expected %s, got %w", c.Error, err)
			}
		}
		return r
	}
	if err != nil {
		r.Failure = fmt.Errorf("expected type %s, got %w", c.Type, err)
		return r
	}
	// Validated on load.
	want, _ := parser.ParseType(c.Type)
	if r.Resolved.Type != want {
		r.Failure = fmt.Errorf("expected type %s, got %s", want, r.Resolved.Type)
	}
	return r
}

// Failures joins the failures of results, each prefixed by its case name.
// It returns nil if every case passed.
func Failures(results []Result) error {
	failed := lo.Filter(results, func(r Result, _ int) bool { return !r.Passed() })
	return errors.Join(lo.Map(failed, func(r Result, _ int) error {
		return fmt.Errorf("%s: %w", r.Case.Name, r.Failure)
	})...)
}
