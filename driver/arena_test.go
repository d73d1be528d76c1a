package driver

import (
	"strings"
	"testing"

	"github.com/nihei9/ordo/semantics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena(t *testing.T) {
	a := NewArena()
	leaf1 := a.Alloc(0, -1, 1, nil)
	leaf2 := a.Alloc(0, -1, 1, nil)
	root := a.Alloc(1, 0, 2, []int{leaf1, leaf2})
	a.Node(root).Attrs[0] = "x"
	assert.Equal(t, 3, a.Live())
	assert.Equal(t, []int{leaf1, leaf2}, a.Node(root).Children)

	a.ReleaseChildren(root)
	assert.Equal(t, 1, a.Live())
	assert.Empty(t, a.Node(root).Children)
	assert.Equal(t, "x", a.Node(root).Attrs[0])

	reused := a.Alloc(2, -1, 3, nil)
	assert.Contains(t, []int{leaf1, leaf2}, reused)
	assert.Equal(t, []interface{}{nil, nil, nil}, a.Node(reused).Attrs)
	assert.Equal(t, 3, a.Cap())

	a.Release(root)
	a.Release(reused)
	assert.Equal(t, 0, a.Live())
	assert.Equal(t, 3, a.Cap())
}

func TestEvaluator_RecyclesNodes(t *testing.T) {
	m := compile(t, calcSrc)
	ev, err := NewEvaluator(m, semantics.Standard())
	require.NoError(t, err)

	parse := func(src string) interface{} {
		t.Helper()
		toks, err := NewTokenStream(m, strings.NewReader(src))
		require.NoError(t, err)
		require.NoError(t, NewParser(m, toks, ev).Parse())
		return ev.Result()
	}

	src := "1+2*3+4*5*6+(7+8)*9"
	assert.Equal(t, 262, parse(src))
	// Nothing needs a visit, so only the root survives the parse.
	assert.Equal(t, 1, ev.Arena().Live())
	capacity := ev.Arena().Cap()

	ev.Release()
	assert.Equal(t, 0, ev.Arena().Live())
	assert.Nil(t, ev.Result())

	assert.Equal(t, 262, parse(src))
	assert.Equal(t, capacity, ev.Arena().Cap())
}

func TestEvaluator_UnknownFunction(t *testing.T) {
	m := compile(t, calcSrc)
	_, err := NewEvaluator(m, semantics.NewLibrary())
	assert.Error(t, err)
}
