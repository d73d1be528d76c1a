package semantics

import (
	"reflect"
	"strings"
	"testing"

	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/spec/mapper"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	tests := []struct {
		c    Count
		card Cardinality
	}{
		{c: countNone, card: Empty},
		{c: countOne, card: Value},
		{c: countOne.Join(countNone), card: Option},
		{c: countOne.Concat(countOne), card: Sequence},
		{c: countOne.Concat(CountOf(Option)), card: Sequence},
		{c: countUnknown.Join(countOne), card: Value},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.card, tt.c.Cardinality(), "%+v", tt.c)
	}

	assert.Equal(t, Option, Value.Compose(Option))
	assert.Equal(t, Sequence, Option.Compose(Sequence))
	assert.Equal(t, Value, Value.Compose(Value))
	assert.Equal(t, Empty, Sequence.Compose(Empty))
}

func TestSelectMerger(t *testing.T) {
	tests := []struct {
		inputs []Cardinality
		target Cardinality
		merger string
	}{
		{inputs: nil, target: Option, merger: MergeEmpty},
		{inputs: nil, target: Sequence, merger: MergeEmpty},
		{inputs: []Cardinality{Value}, target: Value, merger: MergeCopy},
		{inputs: []Cardinality{Sequence}, target: Sequence, merger: MergeCopy},
		{inputs: []Cardinality{Value}, target: Option, merger: MergeWrapOption},
		{inputs: []Cardinality{Value}, target: Sequence, merger: MergeCreateSequence},
		{inputs: []Cardinality{Option}, target: Sequence, merger: MergeOptionToSequence},
		{inputs: []Cardinality{Value, Value}, target: Sequence, merger: MergeCreateSequence},
		{inputs: []Cardinality{Sequence, Value}, target: Sequence, merger: MergeSequenceAndValue},
		{inputs: []Cardinality{Value, Sequence}, target: Sequence, merger: MergeValueAndSequence},
		{inputs: []Cardinality{Sequence, Sequence}, target: Sequence, merger: MergeConcatSequences},
		{inputs: []Cardinality{Option, Value}, target: Sequence, merger: MergeOptionAndValue},
		{inputs: []Cardinality{Option, Option}, target: Sequence, merger: MergeMixed},
		{inputs: []Cardinality{Value, Value, Value}, target: Sequence, merger: MergeMixed},
	}
	for _, tt := range tests {
		merger, err := SelectMerger(tt.inputs, tt.target)
		require.NoError(t, err, "%v -> %v", tt.inputs, tt.target)
		assert.Equal(t, tt.merger, merger, "%v -> %v", tt.inputs, tt.target)
	}

	_, err := SelectMerger([]Cardinality{Value, Value}, Option)
	assert.Error(t, err)
	_, err = SelectMerger([]Cardinality{Option}, Value)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	v, err := Merge(MergeValueAndSequence, []interface{}{1, []interface{}{2, 3}}, []Cardinality{Value, Sequence}, Sequence)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 2, 3}, v)

	v, err = Merge(MergeOptionAndValue, []interface{}{[]interface{}{}, "a"}, []Cardinality{Option, Value}, Sequence)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a"}, v)

	v, err = Merge(MergeEmpty, nil, nil, Option)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, v)

	v, err = Merge(MergeCopy, []interface{}{7}, []Cardinality{Value}, Value)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = Merge(MergeMixed, []interface{}{[]interface{}{1, 2}}, []Cardinality{Sequence}, Option)
	assert.Error(t, err)
	_, err = Merge("shuffle", nil, nil, Sequence)
	assert.Error(t, err)
}

func TestFunction(t *testing.T) {
	lib := Standard()
	sum, ok := lib.Lookup("sum")
	require.True(t, ok)
	join, ok := lib.Lookup("join")
	require.True(t, ok)
	atoi, ok := lib.Lookup("int")
	require.True(t, ok)
	first, ok := lib.Lookup("first")
	require.True(t, ok)

	t.Run("check", func(t *testing.T) {
		assert.NoError(t, sum.Check([]Type{{Host: reflect.TypeOf(0), Card: Sequence}}))
		assert.NoError(t, sum.Check([]Type{{Host: interfaceType, Card: Value}}))
		assert.Error(t, sum.Check([]Type{{Host: stringType, Card: Sequence}}))
		assert.Error(t, sum.Check(nil))
		assert.NoError(t, join.Check([]Type{{Host: stringType, Card: Value}, {Host: stringType, Card: Option}}))
		assert.Error(t, join.Check([]Type{{Host: stringType, Card: Sequence}, {Host: stringType, Card: Sequence}}))
		assert.Error(t, atoi.Check([]Type{{Host: stringType, Card: Sequence}}))
		assert.Error(t, atoi.Check([]Type{{Host: stringType, Card: Value}, {Host: stringType, Card: Value}}))
	})

	t.Run("check variadic", func(t *testing.T) {
		intType := reflect.TypeOf(0)
		assert.NoError(t, sum.Check([]Type{{Host: intType, Card: Value}, {Host: intType, Card: Value}}))
		assert.NoError(t, sum.Check([]Type{{Host: intType, Card: Value}, {Host: intType, Card: Sequence}, {Host: intType, Card: Option}}))
		assert.Error(t, sum.Check([]Type{{Host: intType, Card: Value}, {Host: stringType, Card: Value}}))
		assert.NoError(t, join.Check([]Type{{Host: stringType, Card: Value}, {Host: stringType, Card: Value}, {Host: stringType, Card: Value}}))
		err := join.Check([]Type{{Host: stringType, Card: Value}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 2")
	})

	t.Run("call", func(t *testing.T) {
		v, err := sum.Call([]interface{}{[]interface{}{1, 2, 3}}, []Cardinality{Sequence})
		require.NoError(t, err)
		assert.Equal(t, 6, v)

		v, err = join.Call([]interface{}{"-", []interface{}{"a"}}, []Cardinality{Value, Option})
		require.NoError(t, err)
		assert.Equal(t, "a", v)

		v, err = first.Call([]interface{}{42}, []Cardinality{Value})
		require.NoError(t, err)
		assert.Equal(t, 42, v)

		v, err = atoi.Call([]interface{}{"12"}, []Cardinality{Value})
		require.NoError(t, err)
		assert.Equal(t, 12, v)

		_, err = atoi.Call([]interface{}{"x"}, []Cardinality{Value})
		assert.Error(t, err)

		_, err = sum.Call([]interface{}{[]interface{}{"1"}}, []Cardinality{Sequence})
		assert.Error(t, err)

		v, err = sum.Call([]interface{}{1, []interface{}{2, 3}, []interface{}{}}, []Cardinality{Value, Sequence, Option})
		require.NoError(t, err)
		assert.Equal(t, 6, v)

		v, err = join.Call([]interface{}{"-", "a", "b"}, []Cardinality{Value, Value, Value})
		require.NoError(t, err)
		assert.Equal(t, "a-b", v)

		v, err = first.Call([]interface{}{[]interface{}{}, 7}, []Cardinality{Option, Value})
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("register", func(t *testing.T) {
		l := NewLibrary()
		assert.Error(t, l.Register("x", 1))
		assert.Error(t, l.Register("x", func() (int, int) { return 0, 0 }))
		assert.NoError(t, l.Register("x", func() (int, error) { return 0, nil }))
		assert.Equal(t, []string{"x"}, l.Names())
	})
}

func TestTranslate_Collect(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ordo.semantics")
	defer teardown()

	tg := newTestGrammar(t, []string{"num", "plus"}, [][]string{
		{"expr", "term", "rest"},
		{"rest", "plus", "term", "rest"},
		{"rest"},
		{"term", "num"},
	})
	oag, err := Translate(tg.g, []*Mapping{
		tg.mapping(t, "num", "int"),
		tg.mapping(t, "term", "first", []string{"num"}),
		tg.mapping(t, "expr", "sum", []string{"term"}),
	}, Standard())
	require.NoError(t, err)
	checkSchedule(t, tg.g, oag)

	rest := tg.sym(t, "rest")
	require.Len(t, oag.Attributes[rest], 1)
	assert.Equal(t, "<term>", oag.Attributes[rest][0].Name)
	assert.Equal(t, mapper.CardSequence, oag.Attributes[rest][0].Card)
	assert.Equal(t, -1, oag.Main[rest])

	expr := tg.sym(t, "expr")
	assert.Equal(t, 0, oag.Main[expr])
	arg := oag.Attributes[expr][tg.attr(t, oag, "expr", "arg1")]
	assert.Equal(t, mapper.CardSequence, arg.Card)

	num := tg.sym(t, "num")
	require.NotNil(t, oag.Terminals[num])
	assert.Equal(t, "int", oag.Functions[oag.Terminals[num].Function])

	for sym, count := range oag.VisitCounts {
		assert.Zero(t, count, "symbol %v", tg.g.SymbolName(sym))
	}
	for prod, sched := range oag.Productions {
		assert.Empty(t, sched.Visits, "production %v", tg.g.ProductionString(prod))
		assert.Len(t, sched.Construction, len(sched.Equations), "production %v", tg.g.ProductionString(prod))
	}

	mergers := map[string]bool{}
	for _, sched := range oag.Productions {
		for _, eq := range sched.Equations {
			if eq.Merger != "" {
				mergers[eq.Merger] = true
			}
		}
	}
	assert.Equal(t, map[string]bool{
		MergeValueAndSequence: true,
		MergeEmpty:            true,
		MergeCopy:             true,
	}, mergers)
}

func TestTranslate_Inherited(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ordo.semantics")
	defer teardown()

	tg := newTestGrammar(t, []string{"id", "lbr", "rbr"}, [][]string{
		{"block", "decl", "body"},
		{"decl", "id"},
		{"body", "lbr", "stmts", "rbr"},
		{"stmts", "use", "stmts"},
		{"stmts"},
		{"use", "id"},
	})
	oag, err := Translate(tg.g, []*Mapping{
		tg.mapping(t, "id", "string"),
		tg.mapping(t, "decl", "first", []string{"id"}),
		tg.mapping(t, "use", "pair", []string{"id"}, []string{"^decl"}),
		tg.mapping(t, "body", "list", []string{"use"}),
		tg.mapping(t, "block", "list", []string{"body"}),
	}, Standard())
	require.NoError(t, err)
	checkSchedule(t, tg.g, oag)

	for _, name := range []string{"block", "body", "stmts", "use"} {
		assert.Equal(t, 1, oag.VisitCounts[tg.sym(t, name)], name)
	}
	assert.False(t, oag.NeedsVisit(tg.sym(t, "decl")))

	for _, name := range []string{"use", "stmts", "body"} {
		a := oag.Attributes[tg.sym(t, name)][tg.attr(t, oag, name, "^decl")]
		assert.True(t, a.Inherited, name)
		assert.Equal(t, mapper.CardValue, a.Card, name)
	}

	// block ::= decl body hands decl over to body before visiting it.
	sched := oag.Productions[0]
	require.Len(t, sched.Visits, 1)
	childAt, handOverAt := -1, -1
	for i, v := range sched.Visits[0] {
		switch {
		case v.Kind == mapper.VisitChild:
			assert.Equal(t, 1, v.Offset)
			assert.Equal(t, 0, v.Pass)
			childAt = i
		case sched.Equations[v.Equation].Result.Offset == 1:
			assert.Equal(t, []mapper.Occurrence{{Offset: 0, Attr: 0}}, sched.Equations[v.Equation].Args)
			handOverAt = i
		}
	}
	require.True(t, childAt >= 0)
	require.True(t, handOverAt >= 0)
	assert.Less(t, handOverAt, childAt)
}

func TestTranslate_TwoVisits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ordo.semantics")
	defer teardown()

	// a.value needs hdr from above; y needs a.value as a sibling; x below a needs y. So a is
	// visited once to hand hdr down and get its value, then again to hand y down to x.
	tg := newTestGrammar(t, []string{"num", "bang", "qm"}, [][]string{
		{"top", "hdr", "p"},
		{"p", "a", "y"},
		{"a", "w", "x"},
		{"w", "num"},
		{"hdr", "num"},
		{"x", "bang"},
		{"y", "qm"},
	})
	oag, err := Translate(tg.g, []*Mapping{
		tg.mapping(t, "num", "int"),
		tg.mapping(t, "hdr", "first", []string{"num"}),
		tg.mapping(t, "w", "pair", []string{"num"}, []string{"^hdr"}),
		tg.mapping(t, "a", "first", []string{"w"}),
		tg.mapping(t, "y", "first", []string{"^a"}),
		tg.mapping(t, "x", "first", []string{"^y"}),
		tg.mapping(t, "top", "list", []string{"a"}),
	}, Standard())
	require.NoError(t, err)
	checkSchedule(t, tg.g, oag)

	a := tg.sym(t, "a")
	assert.Equal(t, 2, oag.VisitCounts[a])
	passes := map[string]int{}
	for _, attr := range oag.Attributes[a] {
		passes[attr.Name] = attr.Pass
	}
	assert.Equal(t, map[string]int{
		"^hdr":  0,
		"arg1":  0,
		"value": 0,
		"^y":    1,
	}, passes)
	for _, name := range []string{"top", "p", "w", "x", "y"} {
		assert.Equal(t, 1, oag.VisitCounts[tg.sym(t, name)], name)
	}
	assert.Zero(t, oag.VisitCounts[tg.sym(t, "hdr")])

	// p ::= a y visits a, then y, then a again.
	sched := oag.Productions[1]
	require.Len(t, sched.Visits, 1)
	var children []mapper.Visit
	for _, v := range sched.Visits[0] {
		if v.Kind == mapper.VisitChild {
			children = append(children, *v)
		}
	}
	assert.Equal(t, []mapper.Visit{
		{Kind: mapper.VisitChild, Offset: 0, Pass: 0},
		{Kind: mapper.VisitChild, Offset: 1, Pass: 0},
		{Kind: mapper.VisitChild, Offset: 0, Pass: 1},
	}, children)

	// a ::= w x computes its value in the first visit and visits x only in the second.
	sched = oag.Productions[2]
	require.Len(t, sched.Visits, 2)
	for _, v := range sched.Visits[0] {
		assert.False(t, v.Kind == mapper.VisitChild && v.Offset == 1, "x is visited in the first visit")
	}
	found := false
	for _, v := range sched.Visits[1] {
		if v.Kind == mapper.VisitChild && v.Offset == 1 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSchedule_SelfReference(t *testing.T) {
	tg := newTestGrammar(t, []string{"a"}, [][]string{
		{"S", "a"},
	})
	f, ok := Standard().Lookup("value")
	require.True(t, ok)
	at := NewAttribution(tg.g)
	x := at.AddAttribute(tg.sym(t, "S"), "x", AttrMain, Type{Host: interfaceType, Card: Value})
	at.AddBuffer(0, &AttributionBuffer{
		Result:   Occurrence{Offset: -1, Attr: x},
		Args:     []Occurrence{{Offset: -1, Attr: x}},
		Function: f,
	})

	_, err := Schedule(at)
	require.Error(t, err)
	assert.Equal(t, verr.CodeCyclicAttribute, verr.CodeOf(err))
	assert.Contains(t, err.Error(), "S ::= a")
}

func TestTranslate_CyclicSiblings(t *testing.T) {
	tg := newTestGrammar(t, []string{"x", "y"}, [][]string{
		{"prog", "a", "b"},
		{"a", "x"},
		{"b", "y"},
	})
	_, err := Translate(tg.g, []*Mapping{
		tg.mapping(t, "a", "first", []string{"^b"}),
		tg.mapping(t, "b", "first", []string{"^a"}),
	}, Standard())
	require.Error(t, err)
	assert.Equal(t, verr.CodeCyclicAttribute, verr.CodeOf(err))
	assert.True(t, strings.Contains(err.Error(), "prog ::= a b"), err.Error())
}

func TestTranslate_Errors(t *testing.T) {
	tg := newTestGrammar(t, []string{"x", "y"}, [][]string{
		{"s", "a", "b"},
		{"a", "x"},
		{"b", "y"},
	})
	tests := []struct {
		caption  string
		mappings func() []*Mapping
		code     verr.Code
	}{
		{
			caption: "an unknown function",
			mappings: func() []*Mapping {
				return []*Mapping{tg.mapping(t, "x", "frobnicate")}
			},
			code: verr.CodeUnknownFunction,
		},
		{
			caption: "a mapping of an unknown symbol",
			mappings: func() []*Mapping {
				return []*Mapping{{Symbol: 100, Function: "string"}}
			},
			code: verr.CodeUnknownSymbol,
		},
		{
			caption: "a symbol mapped twice",
			mappings: func() []*Mapping {
				return []*Mapping{tg.mapping(t, "x", "string"), tg.mapping(t, "x", "string")}
			},
			code: verr.CodeDuplicateSymbol,
		},
		{
			caption: "an unmapped source",
			mappings: func() []*Mapping {
				return []*Mapping{tg.mapping(t, "a", "list", []string{"x"})}
			},
			code: verr.CodeUnknownSymbol,
		},
		{
			caption: "a terminal mapping with arguments",
			mappings: func() []*Mapping {
				return []*Mapping{tg.mapping(t, "x", "string"), tg.mapping(t, "y", "pair", []string{"x"}, []string{"x"})}
			},
			code: verr.CodeNotAssignable,
		},
		{
			caption: "an argument of the wrong type",
			mappings: func() []*Mapping {
				return []*Mapping{tg.mapping(t, "x", "string"), tg.mapping(t, "a", "sum", []string{"x"})}
			},
			code: verr.CodeNotAssignable,
		},
		{
			caption: "a source never found below the symbol",
			mappings: func() []*Mapping {
				return []*Mapping{tg.mapping(t, "y", "string"), tg.mapping(t, "a", "list", []string{"y"})}
			},
			code: verr.CodeDeadEndPath,
		},
		{
			caption: "a source never found above the symbol",
			mappings: func() []*Mapping {
				return []*Mapping{tg.mapping(t, "x", "string"), tg.mapping(t, "s", "first", []string{"^x"})}
			},
			code: verr.CodeDeadEndPath,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := Translate(tg.g, tt.mappings(), Standard())
			require.Error(t, err)
			assert.Equal(t, tt.code, verr.CodeOf(err))
		})
	}
}
