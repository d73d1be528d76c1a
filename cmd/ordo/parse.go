package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nihei9/ordo/driver"
	"github.com/nihei9/ordo/semantics"
	"github.com/nihei9/ordo/spec/mapper"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source    *string
	onlyParse *bool
	tree      *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <mapper file path>",
		Short:   "Parse a text stream and print the result",
		Example: `  echo '1+2*3' | ordo parse calc.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.onlyParse = cmd.Flags().Bool("only-parse", false, "check the syntax only and skip the attribute evaluation")
	parseFlags.tree = cmd.Flags().Bool("tree", false, "print the result as a tree")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	m, err := readMapper(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a mapper: %w", err)
	}

	var src io.Reader = os.Stdin
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	if *parseFlags.onlyParse {
		toks, err := driver.NewTokenStream(m, src)
		if err != nil {
			return err
		}
		return driver.NewParser(m, toks, nil).Parse()
	}

	v, err := driver.Run(m, semantics.Standard(), src)
	if err != nil {
		return err
	}
	if *parseFlags.tree {
		return printTree(m.Name, v)
	}
	fmt.Fprintf(os.Stdout, "%v\n", v)
	return nil
}

func readMapper(path string) (*mapper.CompiledMapper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	m := &mapper.CompiledMapper{}
	err = json.Unmarshal(data, m)
	if err != nil {
		return nil, err
	}
	fp, err := m.ComputeFingerprint()
	if err != nil {
		return nil, err
	}
	if fp != m.Fingerprint {
		return nil, fmt.Errorf("the fingerprint does not match; the file may be broken")
	}
	return m, nil
}
