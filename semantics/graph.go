package semantics

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// depGraph is a dependency graph; an edge from a to b means a is computed before b.
type depGraph struct {
	labels []string
	succ   []*treeset.Set
	pred   []int
}

func newDepGraph() *depGraph {
	return &depGraph{}
}

func (d *depGraph) addNode(label string) int {
	d.labels = append(d.labels, label)
	d.succ = append(d.succ, treeset.NewWith(utils.IntComparator))
	d.pred = append(d.pred, 0)
	return len(d.labels) - 1
}

func (d *depGraph) addEdge(from, to int) {
	if d.succ[from].Contains(to) {
		return
	}
	d.succ[from].Add(to)
	d.pred[to]++
}

func (d *depGraph) removeSelfLoop(n int) {
	if !d.succ[n].Contains(n) {
		return
	}
	d.succ[n].Remove(n)
	d.pred[n]--
}

// sort orders the nodes topologically, smallest ready node first. When the graph has a
// cycle, the nodes left unordered are returned as the residue.
func (d *depGraph) sort() ([]int, []int) {
	pred := append([]int{}, d.pred...)
	ready := treeset.NewWith(utils.IntComparator)
	for n, p := range pred {
		if p == 0 {
			ready.Add(n)
		}
	}
	var order []int
	for !ready.Empty() {
		it := ready.Iterator()
		it.First()
		n := it.Value().(int)
		ready.Remove(n)
		order = append(order, n)
		for _, v := range d.succ[n].Values() {
			m := v.(int)
			pred[m]--
			if pred[m] == 0 {
				ready.Add(m)
			}
		}
	}
	if len(order) == len(d.labels) {
		return order, nil
	}
	var residue []int
	for n, p := range pred {
		if p > 0 {
			residue = append(residue, n)
		}
	}
	return order, residue
}

// reaches returns the nodes reachable from n.
func (d *depGraph) reaches(n int) []bool {
	seen := make([]bool, len(d.labels))
	stack := []int{n}
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, v := range d.succ[m].Values() {
			next := v.(int)
			if seen[next] {
				continue
			}
			seen[next] = true
			stack = append(stack, next)
		}
	}
	return seen
}
