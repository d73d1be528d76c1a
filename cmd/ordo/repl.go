package main

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/nihei9/ordo/driver"
	"github.com/nihei9/ordo/semantics"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "repl <mapper file path>",
		Short:   "Parse each line typed at a prompt",
		Example: `  ordo repl calc.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runREPL,
	}
	rootCmd.AddCommand(cmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	m, err := readMapper(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a mapper: %w", err)
	}
	lib := semantics.Standard()

	rl, err := readline.New(m.Name + "> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	pterm.Info.Println(fmt.Sprintf("%v (LR(%v)); quit with <ctrl>D", m.Name, m.K))
	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		v, err := driver.Run(m, lib, strings.NewReader(line))
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		if err := printTree(line, v); err != nil {
			return err
		}
	}
	return nil
}

// printTree renders a value as a tree; every []interface{} becomes a subtree.
func printTree(label string, v interface{}) error {
	ll := leveledValue(v, pterm.LeveledList{}, 0)
	root := pterm.NewTreeFromLeveledList(ll)
	pterm.Println(label)
	return pterm.DefaultTree.WithRoot(root).Render()
}

func leveledValue(v interface{}, ll pterm.LeveledList, level int) pterm.LeveledList {
	vs, ok := v.([]interface{})
	if !ok {
		return append(ll, pterm.LeveledListItem{
			Level: level,
			Text:  fmt.Sprintf("%v", v),
		})
	}
	ll = append(ll, pterm.LeveledListItem{
		Level: level,
		Text:  fmt.Sprintf("[%v]", len(vs)),
	})
	for _, e := range vs {
		ll = leveledValue(e, ll, level+1)
	}
	return ll
}
