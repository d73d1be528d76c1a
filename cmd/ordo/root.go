package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ordo",
	Short: "Generate a mapper from a description",
	Long: `ordo translates a description into a mapper: an LR(k) parser, a mode-aware
scanner and an attribute evaluator, packed into one JSON file.
- compile translates a description.
- parse runs a mapper over a text stream and prints the result.
- show prints the report of a translation.
- repl parses each line typed at a prompt.
- export writes the scanner section as a maleeni lexical specification.
- test runs test cases against a description.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	initDisplay()
	err := rootCmd.Execute()
	if err != nil {
		pterm.Error.Println(err)
		return err
	}
	return nil
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " INFO ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
