package fa

import (
	"encoding/binary"
)

// Determinize performs the subset construction. A DFA state is the epsilon closure of a set
// of NFA states and is labeled with the union of their labels. States are numbered in
// breadth-first order of discovery, trying bytes in ascending order.
func (a *FA) Determinize() *FA {
	d := newFA()
	key2State := map[string]int{}
	var sets [][]int

	add := func(set []int) int {
		k := setKey(set)
		if s, ok := key2State[k]; ok {
			return s
		}
		s := d.addState()
		d.States[s].Label = a.labelOf(set)
		key2State[k] = s
		sets = append(sets, set)
		return s
	}

	d.Start = add(a.closure([]int{a.Start}))
	for i := 0; i < len(sets); i++ {
		var targets [256][]int
		for _, s := range sets[i] {
			for _, t := range a.States[s].Trans {
				for b := int(t.Lo); b <= int(t.Hi); b++ {
					targets[b] = append(targets[b], t.Dest)
				}
			}
		}
		var row [256]int
		for b := range row {
			row[b] = -1
			if len(targets[b]) == 0 {
				continue
			}
			if b > 0 && sameInts(targets[b], targets[b-1]) {
				row[b] = row[b-1]
				continue
			}
			row[b] = add(a.closure(targets[b]))
		}
		d.States[i].Trans = rangesOf(&row, -1)
	}

	tracer().Debugf("DFA: %v states from %v NFA states", len(d.States), len(a.States))

	return d
}

func setKey(set []int) string {
	buf := make([]byte, 0, len(set)*2)
	for _, s := range set {
		buf = binary.AppendUvarint(buf, uint64(s))
	}
	return string(buf)
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
