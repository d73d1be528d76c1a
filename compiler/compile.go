package compiler

import (
	"fmt"
	"io"
	"strings"
	"time"

	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/grammar"
	"github.com/nihei9/ordo/grammar/lexical"
	"github.com/nihei9/ordo/grammar/lr"
	"github.com/nihei9/ordo/grammar/prefix"
	"github.com/nihei9/ordo/semantics"
	"github.com/nihei9/ordo/spec/mapper"
	"golang.org/x/sync/errgroup"
)

// Output holds the text channels of a translation. A nil writer suppresses its channel.
type Output struct {
	Verbose    io.Writer
	Listing    io.Writer
	Statistics io.Writer
}

func (o Output) verbosef(format string, a ...interface{}) {
	if o.Verbose == nil {
		return
	}
	fmt.Fprintf(o.Verbose, format+"\n", a...)
}

type compileConfig struct {
	k                  int
	threads            int
	output             Output
	lib                *semantics.Library
	isReportingEnabled bool
}

type CompileOption func(config *compileConfig)

// Lookahead sets the lookahead length k of the automaton. The default is 1.
func Lookahead(k int) CompileOption {
	return func(config *compileConfig) {
		config.k = k
	}
}

// Threads sets the number of workers building the automaton. The default is 1.
func Threads(n int) CompileOption {
	return func(config *compileConfig) {
		config.threads = n
	}
}

func WithOutput(out Output) CompileOption {
	return func(config *compileConfig) {
		config.output = out
	}
}

// WithLibrary sets the functions mappings can call. The default is semantics.Standard().
func WithLibrary(lib *semantics.Library) CompileOption {
	return func(config *compileConfig) {
		config.lib = lib
	}
}

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// Compile translates s into a mapper. The automaton and the scanner DFA do not depend on
// each other and are built concurrently; the scanner modes, the parser table and the
// attribute schedule follow. The report is nil unless reporting is enabled or a listing
// is requested.
func Compile(s *Spec, opts ...CompileOption) (*mapper.CompiledMapper, *mapper.Report, error) {
	config := &compileConfig{
		k:       1,
		threads: 1,
		lib:     semantics.Standard(),
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.k < 1 || config.k > prefix.MaxLength {
		return nil, nil, &verr.SpecError{
			Code:   verr.CodeInvalidOption,
			Cause:  semErrInvalidLookahead,
			Detail: fmt.Sprintf("%v", config.k),
		}
	}
	if config.threads < 1 {
		return nil, nil, &verr.SpecError{
			Code:   verr.CodeInvalidOption,
			Cause:  semErrInvalidThreads,
			Detail: fmt.Sprintf("%v", config.threads),
		}
	}
	g := s.Grammar
	if g.SymbolCount() > prefix.MaxSymbol+1 {
		return nil, nil, &verr.SpecError{
			Code:   verr.CodeInvalidOption,
			Cause:  semErrTooManySymbols,
			Detail: fmt.Sprintf("%v", g.SymbolCount()),
		}
	}
	out := config.output
	begin := time.Now()

	first := grammar.First(g, config.k)

	var pda *lr.PDA
	var auto *lexical.Automaton
	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		pda, err = lr.Build(g, first, config.threads)
		return err
	})
	eg.Go(func() error {
		var err error
		auto, err = lexical.Build(s.LexSpec)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	out.verbosef("LR(%v) automaton: %v states", config.k, len(pda.States))
	out.verbosef("scanner: %v", auto)

	tab, err := lr.CreateTable(pda)
	if err != nil {
		return nil, nil, err
	}
	shiftable := make([][]int, tab.StateCount())
	for state := range shiftable {
		shiftable[state] = tab.Shiftable(state)
	}
	scanner, ms, err := auto.Compile(shiftable)
	if err != nil {
		return nil, nil, err
	}
	out.verbosef("scanner modes: %v", len(ms.Modes))
	parserTab, err := tab.ParserTable(ms.StateModes)
	if err != nil {
		return nil, nil, err
	}

	oag, err := semantics.Translate(g, s.Mappings, config.lib)
	if err != nil {
		return nil, nil, err
	}
	out.verbosef("attribute schedule: %v functions", len(oag.Functions))

	m := &mapper.CompiledMapper{
		Name:          s.Name,
		K:             config.k,
		Symbols:       g.SymbolNames(),
		TerminalCount: g.TerminalCount(),
		Aliases:       s.Aliases,
		Parser:        parserTab,
		Resolvers:     tab.Resolvers(),
		Scanner:       scanner,
		Oag:           oag,
	}
	m.Fingerprint, err = m.ComputeFingerprint()
	if err != nil {
		return nil, nil, err
	}

	if out.Statistics != nil {
		writeStatistics(out.Statistics, m, pda, time.Since(begin))
	}

	var report *mapper.Report
	if config.isReportingEnabled || out.Listing != nil {
		report = genReport(s, m, first, tab, auto, ms)
		if out.Listing != nil {
			WriteListing(out.Listing, report)
		}
	}

	return m, report, nil
}

func genReport(s *Spec, m *mapper.CompiledMapper, first *grammar.FirstSet, tab *lr.Table, auto *lexical.Automaton, ms *lexical.ModeSet) *mapper.Report {
	g := s.Grammar
	rep := &mapper.Report{
		Name: m.Name,
		K:    m.K,
	}
	for sym := 0; sym < g.SymbolCount(); sym++ {
		sr := &mapper.SymbolReport{
			ID:       sym,
			Name:     g.SymbolName(sym),
			Terminal: g.IsTerminal(sym),
		}
		if !sr.Terminal {
			for _, p := range first.Of(sym).Slice() {
				sr.First = append(sr.First, symbolsText(m, p.Symbols()))
			}
		}
		rep.Symbols = append(rep.Symbols, sr)
	}
	for p := 0; p < g.ProductionCount(); p++ {
		rep.Productions = append(rep.Productions, g.ProductionString(p))
	}
	tab.Report(rep, ms.StateModes)
	auto.Report(rep, ms, m.Scanner)
	for p := range m.Oag.Productions {
		rep.Visits = append(rep.Visits, visitStrings(m, g, p))
	}
	return rep
}

func symbolsText(m *mapper.CompiledMapper, syms []int) string {
	if len(syms) == 0 {
		return "ε"
	}
	texts := make([]string, len(syms))
	for i, sym := range syms {
		texts[i] = m.TerminalText(sym)
	}
	return strings.Join(texts, " ")
}

// visitStrings renders the construction equations and the visit sequences of a production.
func visitStrings(m *mapper.CompiledMapper, g *grammar.Grammar, prod int) []string {
	oag := m.Oag
	sched := oag.Productions[prod]
	lhs := g.LHS(prod)
	rhs := g.RHS(prod)
	occ := func(o mapper.Occurrence) string {
		sym := lhs
		base := "$$"
		if o.Offset >= 0 {
			sym = rhs[o.Offset]
			base = fmt.Sprintf("$%v", o.Offset+1)
		}
		return fmt.Sprintf("%v.%v", base, oag.Attributes[sym][o.Attr].Name)
	}
	eq := func(i int) string {
		e := sched.Equations[i]
		name := e.Merger
		if e.Function >= 0 {
			name = oag.Functions[e.Function]
		}
		args := make([]string, len(e.Args))
		for j, a := range e.Args {
			args[j] = occ(a)
		}
		return fmt.Sprintf("%v = %v(%v)", occ(e.Result), name, strings.Join(args, ", "))
	}

	var lines []string
	for _, i := range sched.Construction {
		lines = append(lines, "construct "+eq(i))
	}
	for pass, steps := range sched.Visits {
		lines = append(lines, fmt.Sprintf("visit %v", pass+1))
		for _, v := range steps {
			switch v.Kind {
			case mapper.VisitEval:
				lines = append(lines, "    eval "+eq(v.Equation))
			case mapper.VisitChild:
				lines = append(lines, fmt.Sprintf("    visit %v of $%v", v.Pass+1, v.Offset+1))
			}
		}
	}
	return lines
}

func writeStatistics(w io.Writer, m *mapper.CompiledMapper, pda *lr.PDA, elapsed time.Duration) {
	rows, cols := m.Parser.Actions.OriginalTableSize()
	fmt.Fprintf(w, "name: %v\n", m.Name)
	fmt.Fprintf(w, "k: %v\n", m.K)
	fmt.Fprintf(w, "symbols: %v (terminals: %v)\n", len(m.Symbols), m.TerminalCount)
	fmt.Fprintf(w, "productions: %v\n", len(m.Parser.LHS))
	fmt.Fprintf(w, "states: %v (items: %v)\n", len(pda.States), pda.ItemCount())
	fmt.Fprintf(w, "action table: %v x %v, compressed to %v entries\n", rows, cols, m.Parser.Actions.CompressedSize())
	fmt.Fprintf(w, "resolvers: %v\n", len(m.Resolvers))
	fmt.Fprintf(w, "scanner: %v entries, %v modes\n", len(m.Scanner.Table), m.Scanner.ModeCount)
	fmt.Fprintf(w, "functions: %v\n", len(m.Oag.Functions))
	fmt.Fprintf(w, "time: %v\n", elapsed)
}

// WriteListing renders a report as the text listing.
func WriteListing(w io.Writer, rep *mapper.Report) {
	fmt.Fprintf(w, "# %v (LR(%v))\n\n", rep.Name, rep.K)
	fmt.Fprintf(w, "## Productions\n\n")
	for p, prod := range rep.Productions {
		fmt.Fprintf(w, "%4v %v\n", p, prod)
	}
	fmt.Fprintf(w, "\n## FIRST\n\n")
	for _, sym := range rep.Symbols {
		if sym.Terminal {
			continue
		}
		fmt.Fprintf(w, "%v: %v\n", sym.Name, strings.Join(sym.First, ", "))
	}
	fmt.Fprintf(w, "\n## States\n")
	for _, s := range rep.States {
		fmt.Fprintf(w, "\nstate %v (mode %v)\n", s.Number, s.Mode)
		for _, item := range s.Items {
			fmt.Fprintf(w, "    %v\n", item)
		}
		if len(s.Shift) > 0 {
			fmt.Fprintf(w, "\n")
		}
		for _, t := range s.Shift {
			fmt.Fprintf(w, "    shift %v -> %v\n", t.Symbol, t.State)
		}
		for _, r := range s.Reduce {
			fmt.Fprintf(w, "    reduce %v on %v\n", r.Production, strings.Join(r.Lookahead, ", "))
		}
	}
	if len(rep.Resolvers) > 0 {
		fmt.Fprintf(w, "\n## Resolvers\n\n")
		for _, r := range rep.Resolvers {
			fmt.Fprintf(w, "resolver %v (state %v, %v)\n", r.Number, r.State, r.Symbol)
			for _, l := range r.Lines {
				fmt.Fprintf(w, "    %v\n", l)
			}
		}
	}
	fmt.Fprintf(w, "\n## Scanner modes\n\n")
	for i, mode := range rep.Modes {
		fmt.Fprintf(w, "%v: %v\n", i, strings.Join(mode, " "))
	}
	if rep.Scanner != nil {
		fmt.Fprintf(w, "\nNFA states: %v, DFA states: %v, minimized: %v, table: %v entries\n",
			rep.Scanner.NFAStates, rep.Scanner.DFAStates, rep.Scanner.MinimizedStates, rep.Scanner.TableSize)
	}
	fmt.Fprintf(w, "\n## Visits\n")
	for p, lines := range rep.Visits {
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%v\n", rep.Productions[p])
		for _, l := range lines {
			fmt.Fprintf(w, "    %v\n", l)
		}
	}
}
