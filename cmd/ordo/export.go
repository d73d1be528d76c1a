package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nihei9/ordo/grammar/lexical"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export the scanner section as a maleeni lexical specification",
		Example: `  ordo export calc.ordo > calc-lex.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runExport,
	}
	rootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	var descPath string
	if len(args) > 0 {
		descPath = args[0]
	}
	s, err := readDescription(descPath)
	if err != nil {
		return err
	}

	lexSpec, err := lexical.ExportLexSpec(s.LexSpec)
	if err != nil {
		return err
	}
	lexSpec.Name = s.Name

	b, err := json.Marshal(lexSpec)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%v\n", string(b))
	return nil
}
