package lightcurve

import "math"

// DetectionClass labels how a bin's measurement came about.
type DetectionClass int

const (
	// ClassBlind marks bins from datasets whose blind source finding
	// located the object on its own.
	ClassBlind DetectionClass = iota + 1
	// ClassRetrospective marks bins where blind finding missed the object
	// but forced photometry at its known position is significant.
	ClassRetrospective
	// ClassNonDetection marks bins whose rate is consistent with zero at
	// the configured threshold.
	ClassNonDetection
)

func (c DetectionClass) String() string {
	switch c {
	case ClassBlind:
		return "blind"
	case ClassRetrospective:
		return "retrospective"
	case ClassNonDetection:
		return "non-detection"
	}
	return "unknown"
}

// Classifier derives the detection class of a bin from its blind flag and
// the lower confidence bound of its rate. Classification is a pure function
// of the bin and the two levels here; re-running it with the same inputs
// always yields the same class.
type Classifier struct {
	// Threshold is the confidence level, in sigma, the rate's lower bound
	// must clear zero at for a retrospective detection. Zero or negative
	// means "test at the reporting level".
	Threshold float64

	// ReportingSigma is the confidence level the served rate errors are
	// quoted at. Zero or negative falls back to one sigma.
	ReportingSigma float64
}

func (c Classifier) levels() (threshold, reporting float64) {
	reporting = c.ReportingSigma
	if reporting <= 0 {
		reporting = 1.0
	}
	threshold = c.Threshold
	if threshold <= 0 {
		threshold = reporting
	}
	return threshold, reporting
}

// LowerBound scales the bin's lower rate error from the reporting level to
// the configured threshold and returns the resulting lower confidence bound
// on the rate.
func (c Classifier) LowerBound(b Bin) float64 {
	threshold, reporting := c.levels()
	return b.Rate - (threshold/reporting)*math.Abs(b.RateNeg)
}

// Classify labels a single bin. The blind flag wins outright; a bin from a
// blind-detected dataset is ClassBlind no matter how marginal its rate. A
// stacked dataset carries its own blind flag and is classified from that
// flag alone, never from its constituent observations.
func (c Classifier) Classify(b Bin) DetectionClass {
	if b.BlindDetection {
		return ClassBlind
	}
	if c.LowerBound(b) > 0 {
		return ClassRetrospective
	}
	return ClassNonDetection
}
