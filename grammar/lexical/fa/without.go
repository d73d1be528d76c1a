package fa

// Without returns a minimal complete DFA accepting the words of a that b does not accept.
// Accepting states carry the labels of a. Both operands must be deterministic.
func Without(a, b *FA) *FA {
	a = a.Complete()
	b = b.Complete()
	at := a.table()
	bt := b.table()

	type pair struct {
		p int
		q int
	}
	d := newFA()
	pair2State := map[pair]int{}
	var pairs []pair
	add := func(x pair) int {
		if s, ok := pair2State[x]; ok {
			return s
		}
		s := d.addState()
		if l := a.States[x.p].Label; l != nil && b.States[x.q].Label == nil {
			d.States[s].Label = l
		}
		pair2State[x] = s
		pairs = append(pairs, x)
		return s
	}

	d.Start = add(pair{p: a.Start, q: b.Start})
	for i := 0; i < len(pairs); i++ {
		x := pairs[i]
		var row [256]int
		for c := range row {
			row[c] = add(pair{p: at[x.p][c], q: bt[x.q][c]})
		}
		d.States[i].Trans = rangesOf(&row, -1)
	}
	if s, ok := pair2State[pair{p: a.Error, q: b.Error}]; ok {
		d.Error = s
	}

	return d.Minimize()
}
