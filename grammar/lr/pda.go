package lr

import (
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/nihei9/ordo/grammar"
	"github.com/nihei9/ordo/grammar/prefix"
	"golang.org/x/sync/errgroup"
)

// State is a closed item set of the automaton.
type State struct {
	ID     int
	Kernel []*Item
	Items  []*Item
	Shift  map[int]*State
}

// ShiftSymbols returns the symbols with an outgoing edge in ascending order.
func (s *State) ShiftSymbols() []int {
	syms := make([]int, 0, len(s.Shift))
	for sym := range s.Shift {
		syms = append(syms, sym)
	}
	sort.Ints(syms)
	return syms
}

// PDA is the LR(k) automaton of a grammar. States[0] is the initial state.
type PDA struct {
	Grammar *grammar.Grammar
	First   *grammar.FirstSet
	K       int
	States  []*State
}

// ItemCount returns the total number of closure items.
func (a *PDA) ItemCount() int {
	n := 0
	for _, s := range a.States {
		n += len(s.Items)
	}
	return n
}

type registry struct {
	mu        sync.Mutex
	key2State map[string]*State
	count     int
}

// addIfNew returns the state with the given kernel, registering it when it is new.
func (r *registry) addIfNew(kernel []*Item) (*State, bool) {
	key := kernelKey(kernel)
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.key2State[key]; ok {
		return s, false
	}
	s := &State{
		ID:     r.count,
		Kernel: kernel,
	}
	r.count++
	r.key2State[key] = s
	return s, true
}

type builder struct {
	g     *grammar.Grammar
	first *grammar.FirstSet
	reg   *registry
	queue *workQueue
}

// Build constructs the canonical LR(k) automaton using threads workers. The state
// numbering is deterministic: states are numbered breadth-first from the initial state,
// following edges in ascending symbol order, so the result does not depend on threads.
func Build(g *grammar.Grammar, first *grammar.FirstSet, threads int) (*PDA, error) {
	if threads < 1 {
		return nil, fmt.Errorf("thread count must be at least 1; got: %v", threads)
	}

	b := &builder{
		g:     g,
		first: first,
		reg: &registry{
			key2State: map[string]*State{},
		},
		queue: newWorkQueue(threads),
	}

	var kernel []*Item
	for _, p := range g.Alternatives(g.Start()) {
		kernel = append(kernel, &Item{
			Core: Core{
				Production: p,
				Dot:        0,
			},
			Lookahead: prefix.NewPrefixSet(prefix.Of(g.EOF())),
		})
	}
	sortItems(kernel)
	initial, _ := b.reg.addIfNew(kernel)
	b.queue.put(initial)

	var eg errgroup.Group
	for i := 0; i < threads; i++ {
		eg.Go(b.work)
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	pda := &PDA{
		Grammar: g,
		First:   first,
		K:       first.K(),
		States:  renumber(initial),
	}

	tracer().Debugf("LR(%v) automaton: %v states, %v items, %v threads", pda.K, len(pda.States), pda.ItemCount(), threads)

	return pda, nil
}

func (b *builder) work() (retErr error) {
	defer func() {
		if v := recover(); v != nil {
			retErr = fmt.Errorf("a worker failed: %v\n%s", v, debug.Stack())
		}
		if retErr != nil {
			b.queue.abort()
		}
	}()

	for {
		s, ok := b.queue.take()
		if !ok {
			return nil
		}
		if err := b.expand(s); err != nil {
			return fmt.Errorf("cannot expand state %v: %w", s.ID, err)
		}
	}
}

func (b *builder) expand(s *State) error {
	s.Items = closure(b.g, b.first, s.Kernel)
	syms, kernels := gotoKernels(b.g, s.Items)
	s.Shift = make(map[int]*State, len(syms))
	for i, sym := range syms {
		if sym == b.g.EOF() {
			return fmt.Errorf("the end of input cannot be shifted")
		}
		t, isNew := b.reg.addIfNew(kernels[i])
		s.Shift[sym] = t
		if isNew {
			b.queue.put(t)
		}
	}
	return nil
}

func renumber(initial *State) []*State {
	visited := map[*State]bool{initial: true}
	states := []*State{initial}
	for i := 0; i < len(states); i++ {
		s := states[i]
		s.ID = i
		for _, sym := range s.ShiftSymbols() {
			t := s.Shift[sym]
			if visited[t] {
				continue
			}
			visited[t] = true
			states = append(states, t)
		}
	}
	return states
}
