package driver

// Node is a node of the tree the evaluator builds. Children are arena indices.
type Node struct {
	Symbol     int
	Production int
	Attrs      []interface{}
	Children   []int
}

// Arena stores nodes densely and recycles released ones. A node is addressed by its index;
// a pointer returned by Node stays valid only until the next Alloc.
type Arena struct {
	nodes []Node
	free  []int
	live  int
}

func NewArena() *Arena {
	return &Arena{}
}

// Alloc returns the index of a fresh node with attrCount empty attribute slots.
func (a *Arena) Alloc(sym, prod, attrCount int, children []int) int {
	var i int
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		i = len(a.nodes)
		a.nodes = append(a.nodes, Node{})
	}
	node := &a.nodes[i]
	node.Symbol = sym
	node.Production = prod
	if cap(node.Attrs) >= attrCount {
		node.Attrs = node.Attrs[:attrCount]
		for j := range node.Attrs {
			node.Attrs[j] = nil
		}
	} else {
		node.Attrs = make([]interface{}, attrCount)
	}
	node.Children = append(node.Children[:0], children...)
	a.live++
	return i
}

func (a *Arena) Node(i int) *Node {
	return &a.nodes[i]
}

// ReleaseChildren releases the subtrees below node i and keeps i itself.
func (a *Arena) ReleaseChildren(i int) {
	for len(a.nodes[i].Children) > 0 {
		n := len(a.nodes[i].Children)
		c := a.nodes[i].Children[n-1]
		a.nodes[i].Children = a.nodes[i].Children[:n-1]
		a.Release(c)
	}
}

// Release returns node i and its whole subtree to the free list.
func (a *Arena) Release(i int) {
	a.ReleaseChildren(i)
	for j := range a.nodes[i].Attrs {
		a.nodes[i].Attrs[j] = nil
	}
	a.free = append(a.free, i)
	a.live--
}

// Live returns the number of allocated nodes not yet released.
func (a *Arena) Live() int {
	return a.live
}

// Cap returns the number of node slots the arena has ever allocated.
func (a *Arena) Cap() int {
	return len(a.nodes)
}
