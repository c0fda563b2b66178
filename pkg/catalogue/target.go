package catalogue

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tphakala/sxcat-go/internal/errors"
)

// TargetKind discriminates the three ways a caller can identify an object.
type TargetKind uint8

const (
	TargetName TargetKind = iota + 1
	TargetID
	TargetPosition
)

// String returns the kind name.
func (k TargetKind) String() string {
	switch k {
	case TargetName:
		return "name"
	case TargetID:
		return "id"
	case TargetPosition:
		return "position"
	default:
		return "unset"
	}
}

// Target identifies a catalogue object exactly the way the caller spelled it.
// It is comparable, so it serves as the key type for batch results: whatever
// form the caller used stays the key even when the service resolves it to a
// different canonical entity.
type Target struct {
	kind TargetKind
	name string
	id   int64
	ra   float64
	dec  float64
}

// ByName identifies an object by a catalogue designation or a free-form name
// that the resolver will turn into coordinates.
func ByName(name string) Target {
	return Target{kind: TargetName, name: strings.TrimSpace(name)}
}

// ByID identifies an object by its canonical numeric catalogue identifier.
func ByID(id int64) Target {
	return Target{kind: TargetID, id: id}
}

// ByPosition identifies an object by ICRS coordinates in decimal degrees.
// The lookup runs a cone search around the position.
func ByPosition(ra, dec float64) Target {
	return Target{kind: TargetPosition, ra: ra, dec: dec}
}

// Kind returns which identifier form the target carries.
func (t Target) Kind() TargetKind { return t.kind }

// Name returns the name for TargetName targets, empty otherwise.
func (t Target) Name() string { return t.name }

// ID returns the numeric identifier for TargetID targets, zero otherwise.
func (t Target) ID() int64 { return t.id }

// Position returns the coordinates for TargetPosition targets.
func (t Target) Position() (ra, dec float64) { return t.ra, t.dec }

// IsZero reports whether the target was never constructed through ByName,
// ByID or ByPosition.
func (t Target) IsZero() bool { return t.kind == 0 }

// String reproduces the caller's spelling of the identifier. It is the form
// used in log attributes and error context.
func (t Target) String() string {
	switch t.kind {
	case TargetName:
		return t.name
	case TargetID:
		return strconv.FormatInt(t.id, 10)
	case TargetPosition:
		return fmt.Sprintf("%.6f,%.6f", t.ra, t.dec)
	default:
		return "<zero target>"
	}
}

// Validate checks the target is well formed before any network call is made.
func (t Target) Validate() error {
	switch t.kind {
	case TargetName:
		if t.name == "" {
			return errors.Newf("target name must not be empty").
				Category(errors.CategoryValidation).
				Build()
		}
	case TargetID:
		if t.id <= 0 {
			return errors.Newf("target id must be positive, got %d", t.id).
				Category(errors.CategoryValidation).
				Build()
		}
	case TargetPosition:
		if math.IsNaN(t.ra) || math.IsNaN(t.dec) {
			return errors.Newf("target position must not contain NaN").
				Category(errors.CategoryValidation).
				Build()
		}
		if t.ra < 0 || t.ra >= 360 {
			return errors.Newf("target RA %g out of range [0, 360)", t.ra).
				Category(errors.CategoryValidation).
				Build()
		}
		if t.dec < -90 || t.dec > 90 {
			return errors.Newf("target Dec %g out of range [-90, 90]", t.dec).
				Category(errors.CategoryValidation).
				Build()
		}
	default:
		return errors.Newf("target constructed without an identifier").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// ParseTarget reads a target from its spelling: "ra,dec" in decimal degrees
// becomes a position, an all-digit string becomes a numeric identifier, and
// anything else is taken as a name. The mapping inverts String for every
// valid target.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, errors.Newf("empty target").
			Category(errors.CategoryValidation).
			Build()
	}

	if raPart, decPart, ok := strings.Cut(s, ","); ok {
		ra, raErr := strconv.ParseFloat(strings.TrimSpace(raPart), 64)
		dec, decErr := strconv.ParseFloat(strings.TrimSpace(decPart), 64)
		if raErr != nil || decErr != nil {
			return Target{}, errors.Newf("cannot parse %q as ra,dec degrees", s).
				Category(errors.CategoryValidation).
				Build()
		}
		t := ByPosition(ra, dec)
		return t, t.Validate()
	}

	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := ByID(id)
		return t, t.Validate()
	}

	return ByName(s), nil
}
