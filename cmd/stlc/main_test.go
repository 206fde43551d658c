package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func runCmd(stdin string, args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	c := &command{stdin: strings.NewReader(stdin), stdout: &out, stderr: &errOut}
	code = c.run(args)
	return code, out.String(), errOut.String()
}

func TestInferExpr(t *testing.T) {
	code, out, errOut := runCmd("", "infer", "-e", `\x : int. x`)
	assert.Equal(t, 0, code, errOut)
	assert.Equal(t, "int -> int\n", out)
}

func TestInferFile(t *testing.T) {
	code, out, errOut := runCmd("", "infer", "testdata/gift3.lam")
	assert.Equal(t, 0, code, errOut)
	assert.Equal(t, "(int -> real -> real) -> (real -> unreal -> int) -> real -> unreal -> real\n", out)
}

func TestInferStdin(t *testing.T) {
	code, out, _ := runCmd("let f = \\x. x in f True", "infer")
	assert.Equal(t, 0, code)
	assert.Equal(t, "bool\n", out)

	code, out, _ = runCmd("1", "infer", "-")
	assert.Equal(t, 0, code)
	assert.Equal(t, "int\n", out)
}

func TestInferErrors(t *testing.T) {
	code, out, errOut := runCmd("", "infer", "testdata/mismatch.lam")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Equal(t, "stlc: testdata/mismatch.lam:1:16: type mismatch: bool and int (solving bool = ?2)\n", errOut)

	code, _, errOut = runCmd("", "infer", "-e", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "insufficient annotations")

	code, _, errOut = runCmd("", "infer", "-e", "let x = in y")
	assert.Equal(t, 1, code)
	assert.Equal(t, "stlc: 1:9-10: expected expression, found 'in'\n", errOut)
}

func TestInferOutputs(t *testing.T) {
	code, out, _ := runCmd("", "infer", "-annotate", "-e", `\x : int. x`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "(\\(x : int) : int. (x : int) : int -> int)\n", out)

	code, out, _ = runCmd("", "infer", "-ast", "-e", `\x : int. x`)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Lambda{")
	assert.Contains(t, out, `Name: "x"`)
	assert.NotContains(t, out, "Span")

	code, _, errOut := runCmd("", "infer", "-v", "-e", `\x : int. x`)
	assert.Equal(t, 0, code)
	assert.Contains(t, errOut, "generating: ")
	assert.Contains(t, errOut, "unifying: ")
}

func TestInferGo(t *testing.T) {
	code, out, errOut := runCmd("", "infer", "-go", "-", "-e", `let x = 1 in x`)
	assert.Equal(t, 0, code, errOut)
	assert.True(t, strings.HasPrefix(out, "//go:build ignore\n\npackage main\n"), out)
	assert.Contains(t, out, "fmt.Println(result)")

	path := filepath.Join(t.TempDir(), "main.go")
	code, out, errOut = runCmd("", "infer", "-go", path, "testdata/gift3.lam")
	assert.Equal(t, 0, code, errOut)
	assert.Equal(t, "(int -> real -> real) -> (real -> unreal -> int) -> real -> unreal -> real\n", out)
	b, err := os.ReadFile(path)
	if assert.NoError(t, err) {
		assert.Contains(t, string(b), "type t_unreal struct{}")
	}

	unbound := filepath.Join(t.TempDir(), "main.go")
	code, _, errOut = runCmd("", "infer", "-go", unbound, "-e", "(y : int)")
	assert.Equal(t, 1, code)
	assert.Equal(t, "stlc: 1:1-9: codegen: unbound identifier y\n", errOut)
	_, err = os.Stat(unbound)
	assert.True(t, os.IsNotExist(err), "output written for an unbound identifier")

	code, _, errOut = runCmd("", "infer", "-go", filepath.Join(t.TempDir(), "missing", "main.go"), "-e", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "main.go")
}

func TestCheck(t *testing.T) {
	code, out, errOut := runCmd("", "check", "-color=never", "testdata/mixed.yaml")
	assert.Equal(t, 1, code)
	assert.Equal(t, "PASS identity\n"+
		"FAIL wrong expectation: expected type bool -> bool, got int -> int\n"+
		"1 passed, 1 failed\n", out)
	assert.Equal(t, "stlc: testdata/mixed.yaml: wrong expectation: expected type bool -> bool, got int -> int\n", errOut)

	code, out, errOut = runCmd("", "check", "-color=always", "../../suite/testdata/lambda.yaml")
	assert.Equal(t, 0, code, errOut)
	assert.Contains(t, out, green+"PASS"+reset+" gift 3\n")
	assert.NotContains(t, out, "FAIL")

	// Output to a buffer is never a terminal.
	code, out, _ = runCmd("", "check", "../../suite/testdata/lambda.yaml")
	assert.Equal(t, 0, code)
	assert.NotContains(t, out, "\x1b[")
}

func TestCheckDirAndPattern(t *testing.T) {
	code, out, errOut := runCmd("", "check", "-color=never", "../../suite/testdata")
	assert.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "PASS gift 3\n")
	assert.Contains(t, out, " 0 failed\n")

	code, out, errOut = runCmd("", "check", "-color=never", "testdata/*.yaml", "../../suite/testdata/lambda.yaml")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "FAIL wrong expectation")
	assert.Contains(t, out, "PASS gift 3\n")
	assert.Equal(t, "stlc: testdata/mixed.yaml: wrong expectation: expected type bool -> bool, got int -> int\n", errOut)

	code, _, errOut = runCmd("", "check", "testdata/*.json")
	assert.Equal(t, 1, code)
	assert.Equal(t, "stlc: testdata/*.json: no suite files match *.json\n", errOut)
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"frobnicate"},
		{"infer", "-e", "1", "file.lam"},
		{"infer", "-nope"},
		{"check"},
	} {
		code, _, errOut := runCmd("", args...)
		assert.Equal(t, 2, code, "%q", args)
		assert.Contains(t, errOut, "usage: stlc", "%q", args)
	}
	code, _, errOut := runCmd("", "check", "-color=rainbow", "testdata/mixed.yaml")
	assert.Equal(t, 1, code)
	assert.Equal(t, "stlc: invalid -color value \"rainbow\"\n", errOut)
}
