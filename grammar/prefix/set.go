package prefix

import (
	"sort"
	"strings"
)

// capacities is the growth schedule of a PrefixSet's slot array.
var capacities = []int{
	7, 17, 37, 79, 163, 331, 673, 1361, 2729, 5471, 10949, 21911, 43853, 87719,
	175447, 350899, 701819, 1403641, 2807303, 5614657, 11229331, 22458671,
}

// PrefixSet is an open-addressing hash set of prefixes.
// A zero slot is free; the empty prefix is tracked by a separate flag.
//
// Sets are shared between items and states once they are built; only the builder
// owning a set may add to it.
type PrefixSet struct {
	slots    []Prefix
	capIdx   int
	size     int
	hasEmpty bool
}

func NewPrefixSet(prefixes ...Prefix) *PrefixSet {
	s := &PrefixSet{
		slots: make([]Prefix, capacities[0]),
	}
	for _, p := range prefixes {
		s.Add(p)
	}
	return s
}

func mix(p Prefix) uint64 {
	h := uint64(p)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// Add inserts p and reports whether the set changed.
func (s *PrefixSet) Add(p Prefix) bool {
	if p == Empty {
		if s.hasEmpty {
			return false
		}
		s.hasEmpty = true
		s.size++
		return true
	}
	if !s.insert(p) {
		return false
	}
	s.size++
	if s.size*4 > len(s.slots)*3 {
		s.grow()
	}
	return true
}

func (s *PrefixSet) insert(p Prefix) bool {
	n := uint64(len(s.slots))
	i := mix(p) % n
	for {
		switch s.slots[i] {
		case 0:
			s.slots[i] = p
			return true
		case p:
			return false
		}
		i++
		if i == n {
			i = 0
		}
	}
}

func (s *PrefixSet) grow() {
	old := s.slots
	if s.capIdx+1 < len(capacities) {
		s.capIdx++
		s.slots = make([]Prefix, capacities[s.capIdx])
	} else {
		s.slots = make([]Prefix, len(old)*2+1)
	}
	for _, p := range old {
		if p != 0 {
			s.insert(p)
		}
	}
}

// AddAll adds every element of t and reports whether the set changed.
func (s *PrefixSet) AddAll(t *PrefixSet) bool {
	changed := false
	t.Each(func(p Prefix) {
		if s.Add(p) {
			changed = true
		}
	})
	return changed
}

func (s *PrefixSet) Contains(p Prefix) bool {
	if p == Empty {
		return s.hasEmpty
	}
	n := uint64(len(s.slots))
	i := mix(p) % n
	for {
		switch s.slots[i] {
		case 0:
			return false
		case p:
			return true
		}
		i++
		if i == n {
			i = 0
		}
	}
}

func (s *PrefixSet) Size() int {
	return s.size
}

// Each calls f for every element in slot order.
func (s *PrefixSet) Each(f func(p Prefix)) {
	if s.hasEmpty {
		f(Empty)
	}
	for _, p := range s.slots {
		if p != 0 {
			f(p)
		}
	}
}

// Slice returns the elements in ascending order.
func (s *PrefixSet) Slice() []Prefix {
	ps := make([]Prefix, 0, s.size)
	s.Each(func(p Prefix) {
		ps = append(ps, p)
	})
	sort.Slice(ps, func(i, j int) bool {
		return ps[i].Less(ps[j])
	})
	return ps
}

// Follows returns the tails of all elements starting with sym.
func (s *PrefixSet) Follows(sym int) *PrefixSet {
	t := NewPrefixSet()
	s.Each(func(p Prefix) {
		if p.First() == sym {
			t.Add(p.Tail())
		}
	})
	return t
}

// Firsts returns the distinct leading symbols in ascending order. The empty prefix has none.
func (s *PrefixSet) Firsts() []int {
	seen := map[int]struct{}{}
	var syms []int
	s.Each(func(p Prefix) {
		if p == Empty {
			return
		}
		f := p.First()
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		syms = append(syms, f)
	})
	sort.Ints(syms)
	return syms
}

// IsSaturated reports whether every element already holds k symbols.
func (s *PrefixSet) IsSaturated(k int) bool {
	if s.hasEmpty && k > 0 {
		return false
	}
	for _, p := range s.slots {
		if p != 0 && p.Len() < k {
			return false
		}
	}
	return true
}

func (s *PrefixSet) Equal(t *PrefixSet) bool {
	if s == t {
		return true
	}
	if s.size != t.size || s.hasEmpty != t.hasEmpty {
		return false
	}
	for _, p := range s.slots {
		if p != 0 && !t.Contains(p) {
			return false
		}
	}
	return true
}

// Hash is independent of insertion order.
func (s *PrefixSet) Hash() uint64 {
	var h uint64
	s.Each(func(p Prefix) {
		h += mix(p + 1)
	})
	return h
}

func (s *PrefixSet) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, p := range s.Slice() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString("}")
	return b.String()
}

// Concat returns every element of left concatenated with every element of right,
// truncated to k symbols. A saturated left operand is returned as is.
func Concat(left, right *PrefixSet, k int) *PrefixSet {
	if left.IsSaturated(k) {
		return left
	}
	result := NewPrefixSet()
	left.Each(func(l Prefix) {
		if l.Len() >= k {
			result.Add(l)
			return
		}
		right.Each(func(r Prefix) {
			result.Add(l.Concat(r, k))
		})
	})
	return result
}
