package fa

// Complete returns a copy of the DFA in which every state has a transition on every byte.
// Missing transitions lead to a single non-accepting error state that loops on itself.
func (a *FA) Complete() *FA {
	if a.Error >= 0 {
		return a
	}
	c := newFA()
	c.Start = a.Start
	for _, s := range a.States {
		c.States = append(c.States, &State{
			Label: s.Label,
		})
	}
	c.Error = c.addState()
	tab := a.table()
	for i := range a.States {
		row := tab[i]
		for b := range row {
			if row[b] < 0 {
				row[b] = c.Error
			}
		}
		c.States[i].Trans = rangesOf(&row, -1)
	}
	c.addTrans(c.Error, 0x00, 0xff, c.Error)
	return c
}

// pairTable is the lower triangle of a state-pair matrix.
type pairTable struct {
	distinct []bool
	deps     map[int][]int
}

func pairIndex(p, q int) int {
	if p < q {
		p, q = q, p
	}
	return p*(p-1)/2 + q
}

// mark marks pair distinct along with every pair whose distinctness depended on it.
func (pt *pairTable) mark(pair int) {
	stack := []int{pair}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if pt.distinct[x] {
			continue
		}
		pt.distinct[x] = true
		stack = append(stack, pt.deps[x]...)
		delete(pt.deps, x)
	}
}

// Minimize returns the minimal complete DFA accepting the same labeled language. Two states
// are distinct when their labels differ or when some byte leads them to distinct states.
// Undecided pairs record which pairs they wait on, so marking a pair propagates to every
// pair depending on it. The classes of indistinguishable states become the new states,
// numbered in breadth-first order from the start state.
func (a *FA) Minimize() *FA {
	c := a.Complete()
	n := len(c.States)
	tab := c.table()
	pt := &pairTable{
		distinct: make([]bool, n*(n-1)/2),
		deps:     map[int][]int{},
	}

	for p := 1; p < n; p++ {
		for q := 0; q < p; q++ {
			if c.States[p].Label.key() != c.States[q].Label.key() {
				pt.distinct[pairIndex(p, q)] = true
			}
		}
	}

	for p := 1; p < n; p++ {
		for q := 0; q < p; q++ {
			pair := pairIndex(p, q)
			if pt.distinct[pair] {
				continue
			}
			var waits []int
			distinct := false
			for b := 0; b < 256; b++ {
				pd, qd := tab[p][b], tab[q][b]
				if pd == qd {
					continue
				}
				next := pairIndex(pd, qd)
				if pt.distinct[next] {
					distinct = true
					break
				}
				if next != pair {
					waits = append(waits, next)
				}
			}
			if distinct {
				pt.mark(pair)
				continue
			}
			for _, w := range waits {
				pt.deps[w] = append(pt.deps[w], pair)
			}
		}
	}

	class := make([]int, n)
	for i := range class {
		class[i] = -1
	}
	rep := []int{}
	order := []int{c.Start}
	class[c.Start] = 0
	rep = append(rep, c.Start)
	assign := func(s int) {
		if class[s] >= 0 {
			return
		}
		for i, r := range rep {
			if !pt.distinct[pairIndex(s, r)] {
				class[s] = i
				return
			}
		}
		class[s] = len(rep)
		rep = append(rep, s)
		order = append(order, s)
	}
	for i := 0; i < len(order); i++ {
		for _, t := range c.States[order[i]].Trans {
			assign(t.Dest)
		}
	}

	m := newFA()
	for _, r := range rep {
		m.States = append(m.States, &State{
			Label: c.States[r].Label,
		})
	}
	m.Start = 0
	for i, r := range rep {
		var row [256]int
		for b := range row {
			row[b] = class[tab[r][b]]
		}
		m.States[i].Trans = rangesOf(&row, -1)
	}
	if class[c.Error] >= 0 {
		m.Error = class[c.Error]
	} else {
		// The error state is unreachable; keep one so the DFA stays complete.
		m.Error = m.addState()
		m.addTrans(m.Error, 0x00, 0xff, m.Error)
	}

	tracer().Debugf("minimized DFA: %v states from %v", len(m.States), n)

	return m
}
