package lexical

import (
	"fmt"

	verr "github.com/nihei9/ordo/error"
	"github.com/nihei9/ordo/spec/mapper"
)

const maxOffset = 0xffff

// Pack lays out every DFA state as ModeCount end-symbol slots followed by (last byte,
// destination offset) pairs. Offsets are indices into the table, so the table must stay
// addressable with 16 bits.
func (a *Automaton) Pack(ms *ModeSet) (*mapper.ScannerFactory, error) {
	d := a.DFA
	modeCount := len(ms.Modes)
	offsets := make([]int, len(d.States))
	size := 0
	for s, st := range d.States {
		offsets[s] = size
		size += modeCount + 2*len(st.Trans)
	}
	if size-1 > maxOffset {
		return nil, &verr.SpecError{
			Code:   verr.CodeScannerTooBig,
			Cause:  lexErrTooBig,
			Detail: fmt.Sprintf("%v entries for %v states and %v modes", size, len(d.States), modeCount),
		}
	}

	tab := make([]uint16, 0, size)
	for s, st := range d.States {
		for m := 0; m < modeCount; m++ {
			tab = append(tab, uint16(ms.EndSymbol(s, m)+1))
		}
		next := 0
		for _, t := range st.Trans {
			if int(t.Lo) != next {
				return nil, fmt.Errorf("state %v of the scanner DFA is not complete at byte %v", s, next)
			}
			tab = append(tab, uint16(t.Hi), uint16(offsets[t.Dest]))
			next = int(t.Hi) + 1
		}
		if next != 256 {
			return nil, fmt.Errorf("state %v of the scanner DFA is not complete at byte %v", s, next)
		}
	}

	tracer().Debugf("scanner table: %v entries, %v states, %v modes", len(tab), len(d.States), modeCount)

	return &mapper.ScannerFactory{
		Table:     tab,
		Start:     offsets[d.Start],
		Error:     offsets[d.Error],
		ModeCount: modeCount,
		White:     append([]int{}, a.White...),
	}, nil
}
