// Package catalogue defines the domain types shared across the sxcat client:
// target identifiers, source and transient records, energy bands, stacked
// dataset references and their supersession states.
package catalogue

import (
	"strings"

	"github.com/tphakala/sxcat-go/internal/errors"
)

// Flavour selects which generation of the catalogue a query runs against.
// Data releases are frozen; the live catalogue is revised continuously and
// is the only flavour where supersession arises.
type Flavour string

const (
	FlavourLive Flavour = "live"
	FlavourDR1  Flavour = "dr1"
	FlavourDR2  Flavour = "dr2"
)

// Valid reports whether the flavour is one the service accepts.
func (f Flavour) Valid() bool {
	switch f {
	case FlavourLive, FlavourDR1, FlavourDR2:
		return true
	}
	return false
}

// Band is an energy band of the catalogue's detector.
type Band string

const (
	BandTotal  Band = "Total"  // 0.2-12 keV
	BandSoft   Band = "Soft"   // 0.2-1 keV
	BandMedium Band = "Medium" // 1-2 keV
	BandHard   Band = "Hard"   // 2-12 keV
)

// Bands returns all energy bands in canonical order.
func Bands() []Band {
	return []Band{BandTotal, BandSoft, BandMedium, BandHard}
}

// Valid reports whether b names a known energy band.
func (b Band) Valid() bool {
	switch b {
	case BandTotal, BandSoft, BandMedium, BandHard:
		return true
	}
	return false
}

// ParseBand reads a band name case-insensitively.
func ParseBand(s string) (Band, error) {
	for _, b := range Bands() {
		if strings.EqualFold(s, string(b)) {
			return b, nil
		}
	}
	return "", errors.Newf("unknown energy band %q", s).
		Category(errors.CategoryValidation).
		Build()
}
