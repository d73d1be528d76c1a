package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nihei9/ordo/compiler"
	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/spec"
	"github.com/nihei9/ordo/spec/mapper"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output    *string
	lookahead *int
	threads   *int
	listing   *string
	verbose   *bool
	stat      *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile a description into a mapper",
		Example: `  ordo compile calc.ordo -o calc.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.lookahead = cmd.Flags().IntP("lookahead", "k", 1, "lookahead length (1 to 4)")
	compileFlags.threads = cmd.Flags().IntP("threads", "t", 1, "number of threads building the automaton")
	compileFlags.listing = cmd.Flags().String("lst", "", "write a listing to a file")
	compileFlags.verbose = cmd.Flags().BoolP("verbose", "v", false, "print progress messages")
	compileFlags.stat = cmd.Flags().Bool("stat", false, "print statistics")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	var descPath string
	if len(args) > 0 {
		descPath = args[0]
	}
	defer func() {
		if retErr == nil {
			return
		}
		name := descPath
		if name == "" {
			name = "stdin"
		}
		switch e := retErr.(type) {
		case verr.SpecErrors:
			for _, err := range e {
				err.FilePath = descPath
				err.SourceName = name
			}
		case *verr.SpecError:
			e.FilePath = descPath
			e.SourceName = name
		}
	}()

	s, err := readDescription(descPath)
	if err != nil {
		return err
	}

	opts := []compiler.CompileOption{
		compiler.Lookahead(*compileFlags.lookahead),
		compiler.Threads(*compileFlags.threads),
		compiler.EnableReporting(),
	}
	out := compiler.Output{}
	if *compileFlags.verbose {
		out.Verbose = os.Stderr
	}
	if *compileFlags.stat {
		out.Statistics = os.Stderr
	}
	if *compileFlags.listing != "" {
		f, err := os.OpenFile(*compileFlags.listing, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("Cannot open the listing file %s: %w", *compileFlags.listing, err)
		}
		defer f.Close()
		out.Listing = f
	}
	opts = append(opts, compiler.WithOutput(out))

	m, report, err := compiler.Compile(s, opts...)
	if err != nil {
		return err
	}

	err = writeMapperAndReport(m, report, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output files: %w", err)
	}
	if *compileFlags.verbose {
		pterm.Success.Println(fmt.Sprintf("%v: %v states, %v resolvers", m.Name, m.Parser.StateCount, len(m.Resolvers)))
	}

	return nil
}

// readDescription parses and checks a description. An empty path reads stdin.
func readDescription(path string) (*compiler.Spec, error) {
	var src io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("Cannot open the description %s: %w", path, err)
		}
		defer f.Close()
		src = f
	}

	ast, err := spec.Parse(src)
	if err != nil {
		return nil, err
	}

	b := compiler.GrammarBuilder{
		AST: ast,
	}
	return b.Build()
}

// writeMapperAndReport writes a mapper and its report. The output path is handled as follows.
//
// 1. When the path is a directory path, the files are <path>/<name>.json and
//    <path>/<name>-report.json.
// 2. When the path is a file path or a non-existent path, the mapper is written to the path
//    and the report to <name>-report.json in the same directory.
// 3. When the path is empty, the mapper is written to stdout and the report to
//    <current directory>/<name>-report.json.
func writeMapperAndReport(m *mapper.CompiledMapper, report *mapper.Report, path string) error {
	mapperPath, reportPath, err := makeOutputFilePaths(m.Name, path)
	if err != nil {
		return err
	}

	{
		var w io.Writer
		if mapperPath != "" {
			f, err := os.OpenFile(mapperPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		} else {
			w = os.Stdout
		}

		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%v\n", string(b))
	}

	{
		f, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()

		b, err := json.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Fprintf(f, "%v\n", string(b))
	}

	return nil
}

func makeOutputFilePaths(name string, path string) (string, string, error) {
	reportFileName := name + "-report.json"

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return "", filepath.Join(wd, reportFileName), nil
	}

	fi, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", err
	}
	if os.IsNotExist(err) || !fi.IsDir() {
		dir, _ := filepath.Split(path)
		return path, filepath.Join(dir, reportFileName), nil
	}

	return filepath.Join(path, name+".json"), filepath.Join(path, reportFileName), nil
}
