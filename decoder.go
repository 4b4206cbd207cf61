package rangecoder

import (
	"fmt"
	"sort"
)

// A Decoder reconstructs the symbol sequence from a buffer produced by an
// Encoder. It replays the encoder's narrowing decisions, so each Decode call
// must receive the same CDF table and precision as the matching Encode call;
// the stream carries nothing that could detect a mismatch, and a desynchronized
// decoder simply returns wrong symbols.
//
// The caller is responsible for issuing exactly as many Decode calls as there
// were Encode calls. The decoder only borrows the buffer and never modifies it.
type Decoder struct {
	buf []byte
	pos int

	// rng mirrors the encoder's interval size.
	rng uint32
	// code is the offset of the coded value above the interval's low end.
	code uint32
}

// NewDecoder returns a Decoder reading from a finalized encoder buffer.
func NewDecoder(buf []byte) *Decoder {
	d := &Decoder{buf: buf, rng: fullRange}
	for i := 0; i < 4; i++ {
		d.code = d.code<<8 | uint32(d.readByte())
	}
	return d
}

// readByte returns the next buffer byte, or zero once the buffer is exhausted.
// Finalize emits only the bytes needed to pin the coded value; the rest of its
// binary fraction is zero, so running off the end is not an error.
func (d *Decoder) readByte() byte {
	if d.pos >= len(d.buf) {
		return 0
	}
	b := d.buf[d.pos]
	d.pos++
	return b
}

// Decode decodes the next symbol and returns its index in cdf.
// The table must satisfy the invariants of ValidateCDF and match, call for
// call, the sequence that was encoded. The returned index s is the unique one
// whose interval [cdf[s], cdf[s+1]) contains the coded value; a zero-mass
// symbol can therefore never be returned.
func (d *Decoder) Decode(cdf []uint32, precision uint) int {
	checkPrecision(precision)
	if len(cdf) < 2 || cdf[0] != 0 || uint64(cdf[len(cdf)-1]) != 1<<precision {
		panic(fmt.Sprintf("rangecoder: malformed cdf of %d entries at precision %d", len(cdf), precision))
	}

	size := uint64(d.rng)
	code := uint64(d.code)
	s := search(cdf, size, code, precision)

	// Narrow code and rng exactly as the encoder narrowed low and rng.
	a := size * uint64(cdf[s]) >> precision
	d.code = uint32(code - a)
	d.rng = uint32(size*uint64(cdf[s+1])>>precision - a)
	for d.rng < renormBound {
		d.code = d.code<<8 | uint32(d.readByte())
		d.rng <<= 8
	}
	return s
}

// search finds the symbol s with
// size*cdf[s]>>precision <= code < size*cdf[s+1]>>precision.
// The scaled boundaries are non-decreasing in the table index, so a binary
// search for the first upper boundary above code lands on the unique symbol
// with nonzero mass around code. The last symbol's boundary is size itself,
// which exceeds code always, so the search cannot run off the table.
func search(cdf []uint32, size, code uint64, precision uint) int {
	return sort.Search(len(cdf)-2, func(s int) bool {
		return size*uint64(cdf[s+1])>>precision > code
	})
}
