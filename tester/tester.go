package tester

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/ordo/driver"
	"github.com/nihei9/ordo/semantics"
	"github.com/nihei9/ordo/spec/mapper"
)

// TestCase is one run of a mapper. A test case file consists of three parts separated by
// lines of `---`: a description, the source and the expected result. The result is the
// main attribute of the start symbol formatted with %v. A result starting with `error:`
// expects the run to fail with an error containing the rest of the line.
type TestCase struct {
	Description string
	Source      []byte
	Expected    string
}

const errorPrefix = "error:"

func (c *TestCase) expectsError() (string, bool) {
	if !strings.HasPrefix(c.Expected, errorPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(c.Expected, errorPrefix)), true
}

func ParseTestCase(r io.Reader) (*TestCase, error) {
	var parts [][]string
	part := []string{}
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if strings.TrimSpace(line) == "---" && len(parts) < 2 {
			parts = append(parts, part)
			part = []string{}
			continue
		}
		part = append(part, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	parts = append(parts, part)
	if len(parts) != 3 {
		return nil, fmt.Errorf("a test case needs a description, a source and a result separated by ---")
	}
	return &TestCase{
		Description: strings.TrimSpace(strings.Join(parts[0], "\n")),
		Source:      []byte(strings.Join(parts[1], "\n")),
		Expected:    strings.TrimSpace(strings.Join(parts[2], "\n")),
	}, nil
}

type TestResult struct {
	TestCasePath string
	Error        error
	Expected     string
	Actual       string
}

func (r *TestResult) String() string {
	if r.Error != nil {
		const indent1 = "    "
		const indent2 = indent1 + indent1

		msgLines := strings.Split(r.Error.Error(), "\n")
		msg := fmt.Sprintf("Failed %v:\n%v%v", r.TestCasePath, indent1, strings.Join(msgLines, "\n"+indent1))
		if r.Expected == "" && r.Actual == "" {
			return msg
		}
		return fmt.Sprintf("%v\n%vexpected: %v\n%vactual:   %v", msg, indent2, r.Expected, indent2, r.Actual)
	}
	return fmt.Sprintf("Passed %v", r.TestCasePath)
}

type TestCaseWithMetadata struct {
	TestCase *TestCase
	FilePath string
	Error    error
}

func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		c, err := parseTestCase(testPath)
		return []*TestCaseWithMetadata{
			{
				TestCase: c,
				FilePath: testPath,
				Error:    err,
			},
		}
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cs := ListTestCases(filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func parseTestCase(testCasePath string) (*TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTestCase(f)
}

type Tester struct {
	Mapper *mapper.CompiledMapper
	// Library defaults to semantics.Standard().
	Library *semantics.Library
	Cases   []*TestCaseWithMetadata
}

func (t *Tester) Run() []*TestResult {
	lib := t.Library
	if lib == nil {
		lib = semantics.Standard()
	}
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, runTest(t.Mapper, lib, c))
	}
	return rs
}

func runTest(m *mapper.CompiledMapper, lib *semantics.Library, c *TestCaseWithMetadata) *TestResult {
	v, err := driver.Run(m, lib, bytes.NewReader(c.TestCase.Source))
	if msg, ok := c.TestCase.expectsError(); ok {
		if err == nil {
			return &TestResult{
				TestCasePath: c.FilePath,
				Error:        fmt.Errorf("an error was expected"),
				Expected:     c.TestCase.Expected,
				Actual:       fmt.Sprintf("%v", v),
			}
		}
		if !strings.Contains(err.Error(), msg) {
			return &TestResult{
				TestCasePath: c.FilePath,
				Error:        fmt.Errorf("unexpected error"),
				Expected:     c.TestCase.Expected,
				Actual:       errorPrefix + " " + err.Error(),
			}
		}
		return &TestResult{
			TestCasePath: c.FilePath,
		}
	}
	if err != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}

	actual := fmt.Sprintf("%v", v)
	if actual != c.TestCase.Expected {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        fmt.Errorf("output mismatch"),
			Expected:     c.TestCase.Expected,
			Actual:       actual,
		}
	}
	return &TestResult{
		TestCasePath: c.FilePath,
	}
}
