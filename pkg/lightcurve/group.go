package lightcurve

import (
	"fmt"

	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// GroupingPolicy controls how classified bins are partitioned into named
// series. The zero value is not the default; use DefaultPolicy.
type GroupingPolicy struct {
	// AllVariants overrides the other fields: every class is emitted into
	// its own split series, and retrospective and non-detection bins are
	// emitted twice, once as rates and once as upper limits. The duplicate
	// time coverage across such a pair is intentional.
	AllVariants bool

	// GroupRates merges all rate-represented classes into one
	// "{Band}_rates" series instead of per-class series.
	GroupRates bool

	// GroupLimits merges all limit-represented classes into one
	// "{Band}_UL" series instead of per-class series.
	GroupLimits bool

	// RetroAsLimit represents retrospective detections as upper limits
	// rather than rates.
	RetroAsLimit bool

	// NonDetAsLimit represents non-detections as upper limits. When false
	// their measured, typically non-significant, rates are emitted instead.
	NonDetAsLimit bool

	// Blind detections are always rates; there is no flag to demote them.
}

// DefaultPolicy returns the server-documented default grouping: blind and
// retrospective rates merged, non-detections as merged upper limits.
func DefaultPolicy() GroupingPolicy {
	return GroupingPolicy{
		GroupRates:    true,
		GroupLimits:   true,
		NonDetAsLimit: true,
	}
}

type seriesForm int

const (
	formRates seriesForm = iota
	formLimits
)

// seriesTarget is one concrete emission of a bin: which representation it
// takes and under which naming scheme.
type seriesTarget struct {
	form    seriesForm
	grouped bool
	label   string
}

// planRow declares one candidate emission for a detection class. emit
// decides from the policy whether the row fires; grouped selects the policy
// flag that controls merged naming. Under AllVariants every row fires and
// naming is forced split.
type planRow struct {
	class   DetectionClass
	form    seriesForm
	label   string
	emit    func(GroupingPolicy) bool
	grouped func(GroupingPolicy) bool
}

var always = func(GroupingPolicy) bool { return true }

// seriesPlan is the complete emission table. Changing how a class maps to
// series is an edit here, not new branching in Materialize.
var seriesPlan = []planRow{
	{ClassBlind, formRates, "blind", always,
		func(p GroupingPolicy) bool { return p.GroupRates }},
	{ClassRetrospective, formRates, "retro",
		func(p GroupingPolicy) bool { return !p.RetroAsLimit },
		func(p GroupingPolicy) bool { return p.GroupRates }},
	{ClassRetrospective, formLimits, "retro",
		func(p GroupingPolicy) bool { return p.RetroAsLimit },
		func(p GroupingPolicy) bool { return p.GroupLimits }},
	{ClassNonDetection, formRates, "nondet",
		func(p GroupingPolicy) bool { return !p.NonDetAsLimit },
		func(p GroupingPolicy) bool { return p.GroupRates }},
	{ClassNonDetection, formLimits, "nondet",
		func(p GroupingPolicy) bool { return p.NonDetAsLimit },
		func(p GroupingPolicy) bool { return p.GroupLimits }},
}

// targets resolves the plan for one class under the policy.
func (p GroupingPolicy) targets(class DetectionClass) []seriesTarget {
	var out []seriesTarget
	for _, row := range seriesPlan {
		if row.class != class {
			continue
		}
		if p.AllVariants {
			out = append(out, seriesTarget{form: row.form, label: row.label})
			continue
		}
		if !row.emit(p) {
			continue
		}
		out = append(out, seriesTarget{form: row.form, grouped: row.grouped(p), label: row.label})
	}
	return out
}

func seriesName(band catalogue.Band, t seriesTarget) string {
	switch {
	case t.form == formRates && t.grouped:
		return string(band) + "_rates"
	case t.form == formRates:
		return fmt.Sprintf("%s_%s_rates", band, t.label)
	case t.grouped:
		return string(band) + "_UL"
	default:
		return fmt.Sprintf("%s_%s_UL", band, t.label)
	}
}

// Materialize classifies every bin and partitions the result into named
// series per band. Bands never mix: a series holds bins of exactly one
// energy band, and within it bins keep their input order.
//
// Key presence follows class presence across the whole curve. A class seen
// in any band claims its series keys in every band, so a caller can tell
// "no bins of this kind here" (empty series) from "no bins of this kind at
// all" (key absent).
func Materialize(bins map[catalogue.Band][]Bin, classifier Classifier, policy GroupingPolicy) map[string][]Bin {
	classes := make(map[catalogue.Band][]DetectionClass, len(bins))
	present := make(map[DetectionClass]bool, 3)
	for band, bb := range bins {
		cc := make([]DetectionClass, len(bb))
		for i, b := range bb {
			cc[i] = classifier.Classify(b)
			present[cc[i]] = true
		}
		classes[band] = cc
	}

	out := make(map[string][]Bin)
	for band := range bins {
		for class := range present {
			for _, t := range policy.targets(class) {
				name := seriesName(band, t)
				if _, ok := out[name]; !ok {
					out[name] = make([]Bin, 0)
				}
			}
		}
	}

	for band, bb := range bins {
		for i, b := range bb {
			for _, t := range policy.targets(classes[band][i]) {
				name := seriesName(band, t)
				out[name] = append(out[name], b)
			}
		}
	}
	return out
}
