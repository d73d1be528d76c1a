package semantics

import (
	"fmt"
)

// Names of the built-in mergers.
const (
	MergeEmpty            = "empty"
	MergeCopy             = "copy"
	MergeWrapOption       = "wrapOption"
	MergeCreateSequence   = "createSequence"
	MergeOptionToSequence = "optionToSequence"
	MergeSequenceAndValue = "sequenceAndValue"
	MergeValueAndSequence = "valueAndSequence"
	MergeConcatSequences  = "concatSequences"
	MergeOptionAndValue   = "optionAndValue"
	MergeMixed            = "mixed"
)

// SelectMerger picks the merger that turns values of the input cardinalities into one value
// of the target cardinality.
func SelectMerger(inputs []Cardinality, target Cardinality) (string, error) {
	var total Count
	for _, c := range inputs {
		total = total.Concat(CountOf(c))
	}
	if !fits(total, target) {
		return "", fmt.Errorf("%v values cannot be merged into a %v", inputs, target)
	}

	switch len(inputs) {
	case 0:
		return MergeEmpty, nil
	case 1:
		switch {
		case inputs[0] == target:
			return MergeCopy, nil
		case inputs[0] == Value && target == Option:
			return MergeWrapOption, nil
		case inputs[0] == Value && target == Sequence:
			return MergeCreateSequence, nil
		case inputs[0] == Option && target == Sequence:
			return MergeOptionToSequence, nil
		}
	case 2:
		switch [2]Cardinality{inputs[0], inputs[1]} {
		case [2]Cardinality{Value, Value}:
			return MergeCreateSequence, nil
		case [2]Cardinality{Sequence, Value}:
			return MergeSequenceAndValue, nil
		case [2]Cardinality{Value, Sequence}:
			return MergeValueAndSequence, nil
		case [2]Cardinality{Sequence, Sequence}:
			return MergeConcatSequences, nil
		case [2]Cardinality{Option, Value}, [2]Cardinality{Value, Option}:
			return MergeOptionAndValue, nil
		}
	}
	return MergeMixed, nil
}

// fits reports whether every number of values in c can be held by target.
func fits(c Count, target Cardinality) bool {
	switch target {
	case Empty:
		return c.Max == 0
	case Value:
		return c.Min == 1 && c.Max == 1
	case Option:
		return c.Max <= 1
	}
	return true
}

// Merge runs a built-in merger. Option and sequence values are []interface{}.
func Merge(merger string, args []interface{}, cards []Cardinality, target Cardinality) (interface{}, error) {
	switch merger {
	case MergeEmpty, MergeCopy, MergeWrapOption, MergeCreateSequence, MergeOptionToSequence,
		MergeSequenceAndValue, MergeValueAndSequence, MergeConcatSequences, MergeOptionAndValue, MergeMixed:
	default:
		return nil, fmt.Errorf("unknown merger: %v", merger)
	}
	if merger == MergeCopy && len(args) == 1 {
		return args[0], nil
	}

	elems := []interface{}{}
	for i, arg := range args {
		switch cards[i] {
		case Value:
			elems = append(elems, arg)
		case Option, Sequence:
			vs, ok := arg.([]interface{})
			if !ok {
				return nil, fmt.Errorf("%v: a %v must be []interface{}: %T", merger, cards[i], arg)
			}
			elems = append(elems, vs...)
		}
	}

	switch target {
	case Value:
		if len(elems) != 1 {
			return nil, fmt.Errorf("%v: %v values for a single value", merger, len(elems))
		}
		return elems[0], nil
	case Option:
		if len(elems) > 1 {
			return nil, fmt.Errorf("%v: %v values for an option", merger, len(elems))
		}
	case Empty:
		return nil, nil
	}
	return elems, nil
}
