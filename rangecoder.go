// Package rangecoder implements byte-oriented range coding, an entropy coding
// technique that represents a whole sequence of symbols as a single sub-interval
// of [0, 1), narrowed proportionally to each symbol's probability mass.
// The caller supplies, for every symbol coded, a cumulative distribution
// function (CDF) table scaled to a total of 1<<precision, and must feed the
// decoder the exact same sequence of tables and precisions that produced the
// byte stream. The stream itself carries no header or metadata.
//
// Below is an example of using this package to compress Lincoln's Gettysburg address:
//    go run compress/main.go gettysburg.txt > gettys.rc
//    cat gettys.rc | go run decompress/main.go > gettys.drc
//    diff gettysburg.txt gettys.drc
//
// Reference:
// G.N.N. Martin, Range encoding: an algorithm for removing redundancy from a digitised message, Video & Data Recording Conference, Southampton, 1979.
package rangecoder

import (
	"fmt"
)

const (
	// MaxPrecision is the largest number of bits a CDF table may be scaled to.
	// The coder works in a 32-bit window, which leaves the required headroom
	// for the interval arithmetic at any precision up to this limit.
	MaxPrecision = 16

	// fullRange is the initial size of the coding interval.
	fullRange = 0xFFFFFFFF

	// renormBound is the renormalization threshold.
	// Once the interval size falls below it, the top byte of the interval is
	// determined up to a carry and is shifted out.
	renormBound = 1 << 24
)

// ValidateCDF checks that cdf is a well formed table for the given precision:
// it must start at zero, end at exactly 1<<precision, and be non-decreasing.
// Entries with cdf[i+1] == cdf[i] denote zero-probability symbols, which are
// legal in a table but must never be passed to Encoder.Encode and can never be
// returned by Decoder.Decode.
//
// Encode and Decode only verify the cheap endpoint invariants themselves, as
// scanning the whole table on every call would dominate coding time.
func ValidateCDF(cdf []uint32, precision uint) error {
	if precision < 1 || precision > MaxPrecision {
		return fmt.Errorf("precision %d outside [1, %d]", precision, MaxPrecision)
	}
	if len(cdf) < 2 {
		return fmt.Errorf("cdf has %d entries, need at least 2", len(cdf))
	}
	if cdf[0] != 0 {
		return fmt.Errorf("cdf starts at %d instead of 0", cdf[0])
	}
	if total := cdf[len(cdf)-1]; uint64(total) != 1<<precision {
		return fmt.Errorf("cdf ends at %d instead of %d", total, uint64(1)<<precision)
	}
	for i := 1; i < len(cdf); i++ {
		if cdf[i] < cdf[i-1] {
			return fmt.Errorf("cdf decreases from %d to %d at entry %d", cdf[i-1], cdf[i], i)
		}
	}
	return nil
}

func checkPrecision(precision uint) {
	if precision < 1 || precision > MaxPrecision {
		panic(fmt.Sprintf("rangecoder: precision %d outside [1, %d]", precision, MaxPrecision))
	}
}
