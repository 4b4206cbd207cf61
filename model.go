package rangecoder

// A Model supplies the per-symbol CDF tables consumed by the coder.
// The compressing and decompressing sides must hold identical models: the
// decoder observes each symbol right after decoding it, so both models see the
// same sequence and produce the same tables, call for call.
type Model interface {
	// CDF returns the current table, scaled to a total of 1<<Precision().
	// The returned slice is only valid until the next call to Observe.
	CDF() []uint32

	// Precision returns the number of bits the table is scaled to.
	Precision() uint

	// Observe informs the Model that symbol was coded.
	Observe(symbol int)
}

const (
	// modelPrecision is the scaling of the AdaptiveModel's tables.
	modelPrecision = 16

	// modelIncrement is added to a symbol's count per observation.
	// modelMaxTotal caps the total count; beyond it all counts are halved,
	// which keeps the model responsive to changing statistics.
	modelIncrement = 24
	modelMaxTotal  = 1 << 14
)

// An AdaptiveModel is an order-0 adaptive model over the 256 byte values.
// It counts observed bytes and periodically rescales the counts into a CDF at
// precision modelPrecision, reserving a nonzero mass for every symbol so any
// byte stays encodable.
type AdaptiveModel struct {
	freq  [256]uint32
	total uint32
	cdf   [257]uint32

	// The CDF is rebuilt every updateCycle observations.
	// The cycle starts short, while estimates move quickly, and stretches as
	// the counts stabilize.
	updateCycle uint32
	untilUpdate uint32
}

// NewAdaptiveModel returns an AdaptiveModel with a uniform distribution.
func NewAdaptiveModel() *AdaptiveModel {
	m := &AdaptiveModel{}
	for i := range m.freq {
		m.freq[i] = 1
	}
	m.total = 256
	m.updateCycle = 16
	m.untilUpdate = m.updateCycle
	m.rebuild()
	return m
}

func (m *AdaptiveModel) CDF() []uint32 { return m.cdf[:] }

func (m *AdaptiveModel) Precision() uint { return modelPrecision }

// Observe counts symbol and rebuilds the CDF when the current cycle is up.
func (m *AdaptiveModel) Observe(symbol int) {
	m.freq[symbol] += modelIncrement
	m.total += modelIncrement

	m.untilUpdate--
	if m.untilUpdate > 0 {
		return
	}
	if m.total > modelMaxTotal {
		m.total = 0
		for i, f := range m.freq {
			m.freq[i] = (f + 1) >> 1
			m.total += m.freq[i]
		}
	}
	m.rebuild()

	m.updateCycle = m.updateCycle * 5 / 4
	if m.updateCycle > 1024 {
		m.updateCycle = 1024
	}
	m.untilUpdate = m.updateCycle
}

// rebuild scales the counts into the CDF. Of the 1<<modelPrecision total,
// 256 units are set aside so every symbol keeps a mass of at least one; the
// rest is distributed proportionally to the counts.
func (m *AdaptiveModel) rebuild() {
	spread := uint64(1<<modelPrecision - 256)
	acc := uint64(0)
	for i, f := range m.freq {
		acc += uint64(f)
		m.cdf[i+1] = uint32(acc*spread/uint64(m.total)) + uint32(i) + 1
	}
}

// BuildCDF scales a histogram into a CDF table for the given precision.
// Symbols with small counts may end up with zero mass when precision is low;
// such symbols must not be encoded.
func BuildCDF(hist []uint32, precision uint) []uint32 {
	checkPrecision(precision)
	var total uint64
	for _, h := range hist {
		total += uint64(h)
	}
	if total == 0 {
		panic("rangecoder: empty histogram")
	}

	cdf := make([]uint32, len(hist)+1)
	var acc uint64
	for i, h := range hist {
		acc += uint64(h)
		cdf[i+1] = uint32(acc << precision / total)
	}
	return cdf
}
