package rangecoder

import (
	"fmt"
)

// An Encoder compresses a sequence of symbols into a byte stream.
// Each call to Encode narrows the coding interval to the slice of it
// proportional to the symbol's probability mass; bytes of the interval's low
// end are appended to the output as they become determined.
//
// An Encoder is for a single coding session.
// After Finalize it is dead and must not be used again.
// Violations of the documented preconditions panic, since undetected ones
// would silently corrupt the entire remaining stream.
type Encoder struct {
	// low is the low end of the coding interval.
	// It holds a 32-bit window plus at most one carry bit; whether the carry
	// reaches the output bytes already shifted out of the window is not known
	// until the next shiftLow, which is why those bytes are buffered in cache
	// and pending below rather than written eagerly.
	low uint64
	// rng is the size of the coding interval, kept in
	// [renormBound, fullRange] between calls.
	rng uint32

	// cache is the most recently shifted out byte, or -1 while no byte has
	// been shifted out yet. It is committed to buf only once a carry can no
	// longer reach it.
	cache int
	// pending counts 0xFF bytes shifted out after cache.
	// A run of 0xFF bytes stays undetermined as a whole: a later carry turns
	// cache into cache+1 and the whole run into 0x00 bytes.
	pending uint64

	buf  []byte
	done bool
}

// NewEncoder returns an Encoder for a fresh coding session, with the coding
// interval covering the full range.
func NewEncoder() *Encoder {
	return &Encoder{rng: fullRange, cache: -1}
}

// Encode codes one symbol, given as its interval [cdfLow, cdfHigh) within a
// CDF table scaled to a total of 1<<precision.
// For a table cdf and symbol s, the arguments are cdf[s], cdf[s+1] and the
// table's precision.
//
// Preconditions: 0 <= cdfLow < cdfHigh <= 1<<precision, precision in
// [1, MaxPrecision], and the encoder has not been finalized. In particular a
// zero-mass symbol (cdfLow == cdfHigh) must not be encoded.
// Precision may vary from call to call; the decoder must then be driven with
// the identical sequence of tables and precisions.
func (e *Encoder) Encode(cdfLow, cdfHigh uint32, precision uint) {
	checkPrecision(precision)
	if cdfLow >= cdfHigh || uint64(cdfHigh) > 1<<precision {
		panic(fmt.Sprintf("rangecoder: invalid interval [%d, %d) at precision %d", cdfLow, cdfHigh, precision))
	}
	if e.done {
		panic("rangecoder: Encode after Finalize")
	}

	// Narrow the interval. The uint64 products are at most 48 bits wide, so
	// the multiplies cannot overflow before the shift.
	size := uint64(e.rng)
	a := size * uint64(cdfLow) >> precision
	e.low += a
	e.rng = uint32(size*uint64(cdfHigh)>>precision - a)

	// Since size >= renormBound and cdfHigh-cdfLow >= 1, the narrowed rng is
	// at least renormBound>>precision >= 1<<8, so the loop below always
	// restores rng above the threshold before it can reach zero.
	for e.rng < renormBound {
		e.shiftLow()
		e.rng <<= 8
	}
}

// shiftLow shifts the top byte out of low's window.
// The byte cannot be written out directly: a carry from a later Encode may
// still increment it. It is instead folded into the cache/pending state, and
// older bytes are committed once the carry question is settled for them.
func (e *Encoder) shiftLow() {
	if e.low < 0xFF000000 || e.low > 0xFFFFFFFF {
		// Either the top byte is below 0xFF, or low overflowed the window and
		// the carry is known. In both cases the fate of cache and the pending
		// 0xFF run is now settled.
		carry := byte(e.low >> 32)
		if e.cache >= 0 {
			e.buf = append(e.buf, byte(e.cache)+carry)
		}
		for ; e.pending > 0; e.pending-- {
			e.buf = append(e.buf, 0xFF+carry) // 0x00 under a carry
		}
		e.cache = int(e.low>>24) & 0xFF
	} else {
		// Top byte is exactly 0xFF with no carry yet: still undetermined.
		e.pending++
	}
	e.low = e.low << 8 & 0xFFFFFFFF
}

// Finalize flushes the bytes that pin a value inside the final interval and
// returns the complete encoded buffer. It must be called exactly once, after
// the last Encode. Zero Encode calls are fine and produce an empty buffer.
//
// Only the minimum number of bytes is emitted: the decoder treats bytes past
// the end of the buffer as zero, so the chosen value's trailing zero bytes
// need not be written, and no padding is ever added.
func (e *Encoder) Finalize() []byte {
	if e.done {
		panic("rangecoder: Finalize called twice")
	}
	e.done = true

	// Pick the value in [low, low+rng) with the most trailing zero bytes.
	// rng >= renormBound here, even for an empty session, so rounding low up
	// to a multiple of 1<<24 always stays inside the interval and the loop
	// runs at most twice.
	lo, hi := e.low, e.low+uint64(e.rng)
	var v uint64
	shifts := 1
	for shift := uint(32); ; shift -= 8 {
		mask := uint64(1)<<shift - 1
		v = (lo + mask) &^ mask
		if v < hi {
			break
		}
		shifts++
	}

	// Push v through the same carry machinery as ordinary output. Each
	// shiftLow commits the previously cached byte; the byte cached by the
	// last call covers only v's zero tail and is dropped. This resolves the
	// cache/pending state even when it is empty or low is exactly zero.
	e.low = v
	for i := 0; i < shifts; i++ {
		e.shiftLow()
	}
	return e.buf
}
