package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nihei9/ordo/compiler"
	"github.com/nihei9/ordo/tester"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "test <description file path> <test file path>|<test directory path>",
		Short:   "Test a description",
		Example: `  ordo test calc.ordo test`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	s, err := readDescription(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a description: %w", err)
	}
	m, _, err := compiler.Compile(s)
	if err != nil {
		return fmt.Errorf("Cannot compile the description: %w", err)
	}

	var cs []*tester.TestCaseWithMetadata
	{
		cs = tester.ListTestCases(args[1])
		errOccurred := false
		for _, c := range cs {
			if c.Error != nil {
				fmt.Fprintf(os.Stderr, "Failed to read a test case or a directory: %v\n%v\n", c.FilePath, c.Error)
				errOccurred = true
			}
		}
		if errOccurred {
			return errors.New("Cannot run test")
		}
	}

	t := &tester.Tester{
		Mapper: m,
		Cases:  cs,
	}
	rs := t.Run()
	testFailed := false
	for _, r := range rs {
		fmt.Fprintln(os.Stdout, r)
		if r.Error != nil {
			testFailed = true
		}
	}
	if testFailed {
		return errors.New("Test failed")
	}
	return nil
}
