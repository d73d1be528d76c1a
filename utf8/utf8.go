package utf8

import "fmt"

const (
	surrogateFirst = 0xd800
	surrogateLast  = 0xdfff
	maxCodePoint   = 0x10ffff
)

// blockEnds are the last code points of the blocks in which every code point is encoded with
// the same number of bytes and the same bounds on the byte after the lead byte. Inside a
// block, a range of code points is a range of byte sequences.
var blockEnds = []rune{
	0x7f,     // 1 byte
	0x7ff,    // 2 bytes
	0xfff,    // E0 A0..BF
	0xcfff,   // E1..EC
	0xd7ff,   // ED 80..9F
	0xffff,   // EE..EF
	0x3ffff,  // F0 90..BF
	0xfffff,  // F1..F3
	0x10ffff, // F4 80..8F
}

// ByteRange is an inclusive range of byte values.
type ByteRange struct {
	From byte
	To   byte
}

func (r ByteRange) String() string {
	if r.From == r.To {
		return fmt.Sprintf("%X", r.From)
	}
	return fmt.Sprintf("%X..%X", r.From, r.To)
}

// GenByteSeqs splits the code point range <from..to> into sequences of byte ranges. A byte
// sequence encodes a code point in the range exactly when it matches one of the returned
// sequences, each byte falling into the range at the same position. Surrogate code points
// are skipped; a range starting or ending on one is an error.
func GenByteSeqs(from, to rune) ([][]ByteRange, error) {
	if from > to {
		return nil, fmt.Errorf("code point range must be from <= to: U+%X..U+%X", from, to)
	}
	if from < 0 || to > maxCodePoint {
		return nil, fmt.Errorf("code point must be >=U+0000 and <=U+10FFFF: U+%X..U+%X", from, to)
	}
	if isSurrogate(from) || isSurrogate(to) {
		return nil, fmt.Errorf("surrogate code points U+D800..U+DFFF are not allowed in UTF-8: U+%X..U+%X", from, to)
	}

	var seqs [][]ByteRange
	for _, end := range blockEnds {
		if from > to {
			break
		}
		if from > end {
			continue
		}
		last := to
		if last > end {
			last = end
		}
		seqs = append(seqs, splitBlock([]byte(string(from)), []byte(string(last)))...)
		from = last + 1
		if isSurrogate(from) {
			from = surrogateLast + 1
		}
	}
	return seqs, nil
}

func isSurrogate(c rune) bool {
	return c >= surrogateFirst && c <= surrogateLast
}

// splitBlock splits a block into rectangles. Continuation bytes range over 0x80..0xBF.
func splitBlock(from, to []byte) [][]ByteRange {
	if len(from) == 1 {
		return [][]ByteRange{{{From: from[0], To: to[0]}}}
	}
	if from[0] == to[0] {
		var seqs [][]ByteRange
		for _, tail := range splitBlock(from[1:], to[1:]) {
			seqs = append(seqs, append([]ByteRange{{From: from[0], To: from[0]}}, tail...))
		}
		return seqs
	}

	var seqs [][]ByteRange
	lo := from[0]
	if !isAll(from[1:], 0x80) {
		for _, tail := range splitBlock(from[1:], fill(len(from)-1, 0xbf)) {
			seqs = append(seqs, append([]ByteRange{{From: from[0], To: from[0]}}, tail...))
		}
		lo++
	}
	hi := to[0]
	var last [][]ByteRange
	if !isAll(to[1:], 0xbf) {
		for _, tail := range splitBlock(fill(len(to)-1, 0x80), to[1:]) {
			last = append(last, append([]ByteRange{{From: to[0], To: to[0]}}, tail...))
		}
		hi--
	}
	if lo <= hi {
		mid := []ByteRange{{From: lo, To: hi}}
		for i := 1; i < len(from); i++ {
			mid = append(mid, ByteRange{From: 0x80, To: 0xbf})
		}
		seqs = append(seqs, mid)
	}
	return append(seqs, last...)
}

func isAll(bs []byte, b byte) bool {
	for _, c := range bs {
		if c != b {
			return false
		}
	}
	return true
}

func fill(n int, b byte) []byte {
	bs := make([]byte, n)
	for i := range bs {
		bs[i] = b
	}
	return bs
}
