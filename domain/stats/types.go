package stats

// Histogram counts observations per interval. Index i covers values
// [i*IntervalSize, (i+1)*IntervalSize), except the last interval which also
// absorbs the remainder up to Finish.
type Histogram struct {
	Finish       uint64   `json:"finish"`
	IntervalSize uint64   `json:"interval_size"`
	Counts       []uint64 `json:"counts"`
}

// NewHistogram allocates intervalCount empty buckets.
func NewHistogram(finish, intervalCount uint64) *Histogram {
	size := uint64(0)
	if intervalCount > 0 {
		size = finish / intervalCount
	}
	return &Histogram{
		Finish:       finish,
		IntervalSize: size,
		Counts:       make([]uint64, intervalCount),
	}
}

// IntervalCount returns the number of buckets.
func (h *Histogram) IntervalCount() uint64 {
	return uint64(len(h.Counts))
}

// Bucket returns the interval index for v. v must be below Finish.
func (h *Histogram) Bucket(v uint64) uint64 {
	idx := v / h.IntervalSize
	if last := h.IntervalCount() - 1; idx > last {
		idx = last
	}
	return idx
}

// Add records v. It reports false when v is outside [0, Finish).
func (h *Histogram) Add(v uint64) bool {
	if v >= h.Finish {
		return false
	}
	h.Counts[h.Bucket(v)]++
	return true
}

// Total returns the number of recorded observations.
func (h *Histogram) Total() uint64 {
	var total uint64
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// Report is the read-only outcome of one validator run.
type Report struct {
	Finish        uint64   `json:"finish"`
	IntervalCount uint64   `json:"interval_count"`
	IntervalSize  uint64   `json:"interval_size"`
	Frequencies   []uint64 `json:"frequencies"`

	Draws      uint64 `json:"draws"`
	Skipped    uint64 `json:"skipped"`
	OutOfRange uint64 `json:"out_of_range"`

	MaxFreq         uint64  `json:"max_freq"`
	MinFreq         uint64  `json:"min_freq"`
	SpreadAbs       uint64  `json:"spread_abs"`
	SpreadRel       float64 `json:"spread_rel"` // (max-min)/finish
	TargetFreq      float64 `json:"target_freq"`
	MaxDeviationAbs float64 `json:"max_deviation_abs"`
	MaxDeviationRel float64 `json:"max_deviation_rel"`
	SpreadToTarget  float64 `json:"spread_to_target"` // (max-min)/target_freq

	MeanFreq         float64 `json:"mean_freq"`
	StdDevFreq       float64 `json:"stddev_freq"`
	ChiSquare        float64 `json:"chi_square"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`
	PValue           float64 `json:"p_value"`
}

// IsFlat reports whether the relative spread stays below threshold.
func (r Report) IsFlat(threshold float64) bool {
	return r.Draws > 0 && r.SpreadRel < threshold
}
