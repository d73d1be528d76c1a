package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nihei9/ordo/compiler"
	"github.com/nihei9/ordo/spec/mapper"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print a report in a readable format",
		Example: `  ordo show calc-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	pterm.Info.Println(fmt.Sprintf("%v: %v productions, %v states, %v scanner modes",
		report.Name, len(report.Productions), len(report.States), len(report.Modes)))
	compiler.WriteListing(os.Stdout, report)

	return nil
}

func readReport(path string) (*mapper.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	report := &mapper.Report{}
	err = json.Unmarshal(d, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}
