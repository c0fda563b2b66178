// Package lightcurve turns the raw time-series rows served by the catalogue
// into the named series callers consume. Rows are classified by how the
// detection was made, then partitioned into rate and upper-limit series
// according to a caller-supplied grouping policy. Bins are immutable; the
// same bin value may back more than one series but is never modified.
package lightcurve

import (
	"sort"

	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// Binning selects the time resolution of a served light curve.
type Binning string

const (
	// BinningObservation gives one bin per pointed observation or stack.
	BinningObservation Binning = "observation"
	// BinningSnapshot gives one bin per uninterrupted exposure interval.
	BinningSnapshot Binning = "snapshot"
)

// Valid reports whether b names a known binning mode.
func (b Binning) Valid() bool {
	return b == BinningObservation || b == BinningSnapshot
}

// TimeFormat is the time system bin midpoints are expressed in.
type TimeFormat string

const (
	TimeMJD TimeFormat = "MJD"
	TimeMET TimeFormat = "MET"
)

// Valid reports whether t names a known time format.
func (t TimeFormat) Valid() bool {
	return t == TimeMJD || t == TimeMET
}

// Bin is one row of a light curve. The rate fields and the upper limit are
// both populated; which one is meaningful depends on the series the bin was
// materialized into. Values are in counts per second, times in the curve's
// time format.
type Bin struct {
	Time    float64 // midpoint
	TimePos float64 // upper half-width
	TimeNeg float64 // lower half-width

	Rate       float64
	RatePos    float64 // upper error at the reporting level
	RateNeg    float64 // lower error at the reporting level, served negative
	UpperLimit float64

	Counts   float64
	BGCounts float64
	Exposure float64 // seconds, livetime corrected
	CorrFact float64 // encircled-energy and vignetting correction

	DatasetID string
	IsStack   bool

	// BlindDetection is set when the dataset's own blind source finding
	// located the object, independent of any forced photometry.
	BlindDetection bool
}

// DatasetInfo summarises one dataset contributing bins to a curve.
type DatasetInfo struct {
	ID       string
	IsStack  bool
	StartMJD float64
	StopMJD  float64
}

// LightCurve is the parsed and materialized light curve of one source.
// Bands holds the raw rows per energy band; Series holds the named view
// produced by the classifier and policy recorded alongside.
type LightCurve struct {
	SourceID   int64
	Binning    Binning
	TimeFormat TimeFormat
	Classifier Classifier
	Policy     GroupingPolicy
	Datasets   []DatasetInfo

	Bands  map[catalogue.Band][]Bin
	Series map[string][]Bin
}

// SeriesNames returns the named series in sorted order.
func (lc *LightCurve) SeriesNames() []string {
	names := make([]string, 0, len(lc.Series))
	for name := range lc.Series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bins returns the bins of a named series, or nil when the series does not
// exist. An empty non-nil slice means the series exists but holds no bins.
func (lc *LightCurve) Bins(name string) []Bin {
	return lc.Series[name]
}

// Rematerialize rebuilds the named series from the raw bands with a new
// classifier and policy. The raw bins are not touched.
func (lc *LightCurve) Rematerialize(classifier Classifier, policy GroupingPolicy) {
	lc.Classifier = classifier
	lc.Policy = policy
	lc.Series = Materialize(lc.Bands, classifier, policy)
}
