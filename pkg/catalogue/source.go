package catalogue

import (
	"fmt"

	"github.com/tphakala/sxcat-go/internal/errors"
)

// DetectionState tags the per-band detection variant on a source record.
// The zero value means the band was not covered at all, so a band that is
// simply missing from the server payload decodes to a meaningful state.
type DetectionState uint8

const (
	BandAbsent      DetectionState = iota // band not covered by any dataset
	BandDetected                          // source detected in this band
	BandNotDetected                       // covered but not detected; upper limit applies
)

// String returns the state name.
func (s DetectionState) String() string {
	switch s {
	case BandDetected:
		return "detected"
	case BandNotDetected:
		return "not-detected"
	default:
		return "absent"
	}
}

// BandDetection carries the per-band detection details of a source record.
// Which fields are meaningful depends on State: Rate and its errors for
// BandDetected, UpperLimit for BandNotDetected, nothing for BandAbsent.
type BandDetection struct {
	State      DetectionState
	Rate       float64 // mean count rate in ct/s, BandDetected only
	RatePos    float64 // upper rate error, positive
	RateNeg    float64 // lower rate error, negative
	UpperLimit float64 // count-rate upper limit, BandNotDetected only
}

// Source is a canonical catalogue source record.
type Source struct {
	ID     int64   // canonical numeric identifier
	Name   string  // IAU-style designation, e.g. "SXCAT J174354.1-294442"
	RA     float64 // ICRS right ascension, degrees
	Dec    float64 // ICRS declination, degrees
	Err90  float64 // 90% confidence position error radius, arcsec
	CatRev int64   // catalogue revision the record was served from

	FirstObsMJD float64 // first observation covering the position
	LastObsMJD  float64 // most recent observation covering the position

	// Per-band detection summary. Every band the flavour's instrument offers
	// has an entry; coverage gaps are expressed as BandAbsent rather than a
	// missing key.
	Bands map[Band]BandDetection

	// Resolution records how the requested identifier mapped onto this
	// record, when the lookup went through name resolution. Nil for direct
	// numeric lookups. A fragmented resolution carries descendants and no
	// detection data.
	Resolution *Resolution
}

// ResolutionState records how an input identifier mapped onto the catalogue.
type ResolutionState uint8

const (
	ResolutionMatched    ResolutionState = iota + 1 // identifier names a current entity
	ResolutionRenamed                               // historical identifier, superseded by one current entity
	ResolutionFragmented                            // historical identifier split into several entities
)

// String returns the state name.
func (s ResolutionState) String() string {
	switch s {
	case ResolutionMatched:
		return "matched"
	case ResolutionRenamed:
		return "renamed"
	case ResolutionFragmented:
		return "fragmented"
	default:
		return "unresolved"
	}
}

// DescendantSummary describes one current entity descending from a
// fragmented historical identifier.
type DescendantSummary struct {
	ID    int64   // canonical identifier of the descendant
	Name  string  // display name
	RA    float64 // degrees
	Dec   float64 // degrees
	Err90 float64 // arcsec
}

// Resolution reports how a requested identifier resolved. It rides along on
// result envelopes so batch callers can see per-key outcomes without sibling
// lookups being affected.
type Resolution struct {
	State       ResolutionState
	Requested   string              // the identifier as the caller gave it
	MatchedID   int64               // canonical id, Matched and Renamed states
	MatchedName string              // canonical name, Matched and Renamed states
	OldName     string              // the historical name, Renamed state only
	Descendants []DescendantSummary // Fragmented state only
}

// Ambiguous reports whether the identifier fragmented and therefore cannot
// back a single-object product request.
func (r *Resolution) Ambiguous() bool {
	return r != nil && r.State == ResolutionFragmented
}

// AmbiguousError reports an identifier that fragmented into several current
// entities. Single-object product calls fail with it; the caller picks the
// entity they meant from Descendants and retries with its identifier.
type AmbiguousError struct {
	Identifier  string
	Descendants []DescendantSummary
}

// Error implements the error interface.
func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("identifier %q is ambiguous: %d descendant sources", e.Identifier, len(e.Descendants))
}

// ErrorCategory marks the error ambiguous for category matching.
func (e *AmbiguousError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryAmbiguous
}
