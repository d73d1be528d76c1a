package grammar

import (
	"testing"

	"github.com/nihei9/ordo/grammar/prefix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirst(t *testing.T) {
	s := newTestSymbols(t, []string{"a", "b"}, []string{"S", "A"})
	g, err := Translate([]*Rule{
		s.rule("S", NewSequence(s.sym("A"), s.sym("b"), s.sym("b"))),
		s.rule("A", Optional(s.sym("a"))),
	}, s.symTab)
	require.NoError(t, err)

	a := s.id("a")
	b := s.id("b")
	tests := []struct {
		k int
		s []prefix.Prefix
		a []prefix.Prefix
	}{
		{
			k: 1,
			s: []prefix.Prefix{prefix.Of(a), prefix.Of(b)},
			a: []prefix.Prefix{prefix.Of(a), prefix.Empty},
		},
		{
			k: 2,
			s: []prefix.Prefix{prefix.Of(a, b), prefix.Of(b, b)},
			a: []prefix.Prefix{prefix.Of(a), prefix.Empty},
		},
		{
			k: 4,
			s: []prefix.Prefix{prefix.Of(a, b, b), prefix.Of(b, b)},
			a: []prefix.Prefix{prefix.Of(a), prefix.Empty},
		},
	}
	for _, tt := range tests {
		fst := First(g, tt.k)
		assert.Equal(t, tt.k, fst.K())
		assert.ElementsMatch(t, tt.s, fst.Of(s.id("S")).Slice(), "k: %v", tt.k)
		assert.ElementsMatch(t, tt.a, fst.Of(s.id("A")).Slice(), "k: %v", tt.k)
		assert.ElementsMatch(t, []prefix.Prefix{prefix.Of(b)}, fst.Of(b).Slice(), "k: %v", tt.k)

		seq := fst.OfSequence([]int{s.id("A"), s.id("A")})
		if tt.k == 1 {
			assert.ElementsMatch(t, []prefix.Prefix{prefix.Of(a), prefix.Empty}, seq.Slice())
		} else {
			assert.ElementsMatch(t, []prefix.Prefix{prefix.Of(a, a), prefix.Of(a), prefix.Empty}, seq.Slice())
		}
	}
}
