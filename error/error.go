package error

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Code is a short, machine-checkable classification of a SpecError.
type Code string

const (
	CodeSyntax            = Code("syntax")
	CodeUndefinedSymbol   = Code("undefined-symbol")
	CodeUnreachableSymbol = Code("unreachable-symbol")
	CodeDuplicateSymbol   = Code("duplicate-symbol")
	CodeSpelling          = Code("spelling")
	CodeIllegalInParser   = Code("illegal-in-parser")
	CodeRecursiveHelper   = Code("recursive-helper")
	CodeConflictSR        = Code("conflict-sr")
	CodeConflictRR        = Code("conflict-rr")
	CodeScannerEmptyWord  = Code("scanner-empty-word")
	CodeScannerTooBig     = Code("scanner-too-big")
	CodeScannerAmbiguous  = Code("scanner-ambiguous")
	CodeUnknownSymbol     = Code("unknown-symbol")
	CodeUnknownFunction   = Code("unknown-function")
	CodeNotAssignable     = Code("not-assignable")
	CodeDeadEndPath       = Code("dead-end-path")
	CodeCyclicAttribute   = Code("cyclic-attribute")
	CodeInvalidOption     = Code("invalid-option")
	CodeInternal          = Code("internal")
)

type SpecError struct {
	Code       Code
	Cause      error
	Detail     string
	FilePath   string
	SourceName string
	Row        int
	Col        int
}

func (e *SpecError) Error() string {
	var b strings.Builder
	if e.SourceName != "" {
		fmt.Fprintf(&b, "%v: ", e.SourceName)
	}
	if e.Row != 0 {
		if e.Col != 0 {
			fmt.Fprintf(&b, "%v:%v: ", e.Row, e.Col)
		} else {
			fmt.Fprintf(&b, "%v: ", e.Row)
		}
	}
	fmt.Fprintf(&b, "error: ")
	if e.Code != "" {
		fmt.Fprintf(&b, "%v: ", e.Code)
	}
	fmt.Fprintf(&b, "%v", e.Cause)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %v", e.Detail)
	}

	line := readLine(e.FilePath, e.Row)
	if line != "" {
		fmt.Fprintf(&b, "\n    %v", line)
	}

	return b.String()
}

func (e *SpecError) Unwrap() error {
	return e.Cause
}

type SpecErrors []*SpecError

func (e SpecErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%v", e[0])
	for _, err := range e[1:] {
		fmt.Fprintf(&b, "\n%v", err)
	}

	return b.String()
}

// CodeOf returns the code of the first SpecError found in err's chain.
func CodeOf(err error) Code {
	var specErr *SpecError
	if errors.As(err, &specErr) {
		return specErr.Code
	}
	var specErrs SpecErrors
	if errors.As(err, &specErrs) && len(specErrs) > 0 {
		return specErrs[0].Code
	}
	return ""
}

func readLine(filePath string, row int) string {
	if filePath == "" || row <= 0 {
		return ""
	}

	f, err := os.Open(filePath)
	if err != nil {
		return ""
	}
	defer f.Close()

	i := 1
	s := bufio.NewScanner(f)
	for s.Scan() {
		if i == row {
			return s.Text()
		}
		i++
	}

	return ""
}
