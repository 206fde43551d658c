// Command stlc infers the types of lambda calculus programs.
//
// Usage:
//
//	stlc infer [-ast] [-annotate] [-go out.go] [-v] [-e expr | file.lam]
//	stlc check [-v] [-color=auto|always|never] suite.yaml|dir|'glob'...
//
// infer prints the type of a program read from a file, from -e, or from
// standard input. With -go it also writes a Go program that evaluates it.
// check runs the suites named by its arguments, which may also be directories
// or patterns, and reports each case.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/samber/lo"
	"github.com/sanity-io/litter"
	"github.com/smasher164/stlc/ast"
	"github.com/smasher164/stlc/codegen"
	"github.com/smasher164/stlc/fsx"
	"github.com/smasher164/stlc/parser"
	"github.com/smasher164/stlc/suite"
	"github.com/smasher164/stlc/types"
)

const usageText = `usage: stlc infer [-ast] [-annotate] [-go out.go] [-v] [-e expr | file.lam]
       stlc check [-v] [-color=auto|always|never] suite.yaml|dir|'glob'...

stlc infers the types of simply-typed lambda calculus programs with optional annotations.
`

// errUsage reports a malformed command line whose usage text has already been
// printed.
var errUsage = errors.New("usage")

type command struct {
	stdin          io.Reader
	stdout, stderr io.Writer
}

func main() {
	c := &command{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(c.run(os.Args[1:]))
}

func (c *command) usage() {
	fmt.Fprint(c.stderr, usageText)
}

func (c *command) run(args []string) int {
	if len(args) == 0 {
		c.usage()
		return 2
	}
	var err error
	switch args[0] {
	case "infer":
		err = c.infer(args[1:])
	case "check":
		err = c.check(args[1:])
	case "help", "-h", "-help", "--help":
		c.usage()
		return 0
	default:
		fmt.Fprintf(c.stderr, "stlc: unknown command %q\n", args[0])
		c.usage()
		return 2
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	}
	fmt.Fprintf(c.stderr, "stlc: %v\n", err)
	return 1
}

func (c *command) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() {
		c.usage()
		fmt.Fprintf(c.stderr, "\nflags for %s:\n", name)
		fs.PrintDefaults()
	}
	return fs
}

func (c *command) config(verbose bool) *types.Config {
	conf := &types.Config{}
	if verbose {
		conf.Logger = log.New(c.stderr, "", 0)
	}
	return conf
}

func (c *command) infer(args []string) error {
	fs := c.flagSet("infer")
	var (
		expr     = fs.String("e", "", "infer the program `expr` instead of reading a file")
		dumpAST  = fs.Bool("ast", false, "dump the resolved syntax tree")
		annotate = fs.Bool("annotate", false, "print the program with every type annotation")
		goOut    = fs.String("go", "", "write a Go program that evaluates the input to `file` (- for standard output)")
		verbose  = fs.Bool("v", false, "log constraints and bindings to standard error")
	)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	var (
		e      *ast.TypedExpr
		source string
		err    error
	)
	switch {
	case *expr != "" && fs.NArg() == 0:
		e, err = parser.Parse(*expr)
	case *expr == "" && fs.NArg() == 1 && fs.Arg(0) != "-":
		source = fs.Arg(0)
		e, err = parser.ParseFile(fsx.Split(source))
		// ParseFile only knows the base name.
		var perr *parser.Error
		if errors.As(err, &perr) {
			err = fmt.Errorf("%s:%w", source, perr)
		}
	case *expr == "" && fs.NArg() <= 1:
		e, err = parser.ParseReader(c.stdin)
	default:
		fs.Usage()
		return errUsage
	}
	if err != nil {
		return err
	}
	resolved, err := c.config(*verbose).Infer(e)
	if err != nil {
		if source != "" {
			return fmt.Errorf("%s:%w", source, err)
		}
		return err
	}
	switch *goOut {
	case "":
	case "-":
		return codegen.Generate(c.stdout, resolved)
	default:
		dir, name := fsx.Split(*goOut)
		if err := codegen.GenerateFile(dir, name, resolved); err != nil {
			return err
		}
	}
	switch {
	case *dumpAST:
		fmt.Fprintln(c.stdout, dumper.Sdump(resolved))
	case *annotate:
		fmt.Fprintln(c.stdout, resolved)
	default:
		fmt.Fprintln(c.stdout, resolved.Type)
	}
	return nil
}

var dumper = litter.Options{
	StripPackageNames: true,
	HideZeroValues:    true,
	FieldExclusions:   regexp.MustCompile(`^Span$`),
}

func (c *command) check(args []string) error {
	fs := c.flagSet("check")
	var (
		color   = fs.String("color", "auto", "colorize output: `auto`, always, or never")
		verbose = fs.Bool("v", false, "log constraints and bindings to standard error")
	)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	colorize, err := c.useColor(*color)
	if err != nil {
		return err
	}
	conf := c.config(*verbose)
	var (
		errs           []error
		passed, failed int
	)
	for _, arg := range fs.Args() {
		suites, err := loadSuites(arg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, s := range suites {
			results := s.Run(conf)
			for _, r := range results {
				if r.Passed() {
					fmt.Fprintf(c.stdout, "%s %s\n", paint(colorize, green, "PASS"), r.Case.Name)
				} else {
					fmt.Fprintf(c.stdout, "%s %s: %v\n", paint(colorize, red, "FAIL"), r.Case.Name, r.Failure)
				}
			}
			n := lo.CountBy(results, suite.Result.Passed)
			passed += n
			failed += len(results) - n
			if err := suite.Failures(results); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", s.Path, err))
			}
		}
	}
	fmt.Fprintf(c.stdout, "%d passed, %d failed\n", passed, failed)
	return errors.Join(errs...)
}

// loadSuites loads the suite file at path. A directory loads every suite in
// it, and a pattern in the last element loads every match.
func loadSuites(path string) ([]*suite.Suite, error) {
	var (
		dir     fsx.DirFS
		pattern string
	)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		dir, pattern = fsx.DirFS(path), "*"+suite.Ext
	} else if dir, pattern = fsx.Split(path); !strings.ContainsAny(pattern, `*?[\`) {
		s, err := suite.Load(dir, pattern)
		if err != nil {
			return nil, err
		}
		s.Path = path
		return []*suite.Suite{s}, nil
	}
	suites, err := suite.LoadAll(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, s := range suites {
		s.Path = filepath.Join(string(dir), s.Path)
	}
	return suites, nil
}

const (
	red   = "\x1b[31m"
	green = "\x1b[32m"
	reset = "\x1b[0m"
)

func paint(colorize bool, color, s string) string {
	if !colorize {
		return s
	}
	return color + s + reset
}

func (c *command) useColor(mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := c.stdout.(*os.File)
		if !ok {
			return false, nil
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	}
	return false, fmt.Errorf("invalid -color value %q", mode)
}
