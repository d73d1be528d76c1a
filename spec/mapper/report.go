package mapper

// Report is the human-oriented listing of a translation.
type Report struct {
	Name        string            `json:"name"`
	K           int               `json:"k"`
	Symbols     []*SymbolReport   `json:"symbols"`
	Productions []string          `json:"productions"`
	States      []*StateReport    `json:"states"`
	Resolvers   []*ResolverReport `json:"resolvers"`
	Modes       [][]string        `json:"modes"`
	Scanner     *ScannerReport    `json:"scanner"`
	Visits      [][]string        `json:"visits"`
	Conflicts   []string          `json:"conflicts"`
}

type SymbolReport struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Terminal bool     `json:"terminal"`
	First    []string `json:"first,omitempty"`
}

type Transition struct {
	Symbol string `json:"symbol"`
	State  int    `json:"state"`
}

type Reduce struct {
	Lookahead  []string `json:"lookahead"`
	Production int      `json:"production"`
}

type StateReport struct {
	Number int           `json:"number"`
	Items  []string      `json:"items"`
	Shift  []*Transition `json:"shift"`
	Reduce []*Reduce     `json:"reduce"`
	Mode   int           `json:"mode"`
}

type ResolverReport struct {
	Number int      `json:"number"`
	State  int      `json:"state"`
	Symbol string   `json:"symbol"`
	Lines  []string `json:"lines"`
}

type ScannerReport struct {
	NFAStates       int `json:"nfa_states"`
	DFAStates       int `json:"dfa_states"`
	MinimizedStates int `json:"minimized_states"`
	TableSize       int `json:"table_size"`
}
