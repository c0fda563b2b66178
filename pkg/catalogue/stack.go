package catalogue

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StackRef references a stacked image dataset. Revision 0 is the coarse,
// version-agnostic form: it always means "the current revision of this
// stack", so a coarse reference can never be superseded.
type StackRef struct {
	StackID  string // stable stack identifier, e.g. "STK006021"
	Revision int    // specific revision, 0 for coarse
}

// Coarse reports whether the reference is version-agnostic.
func (r StackRef) Coarse() bool { return r.Revision == 0 }

// String renders the reference in the service's notation.
func (r StackRef) String() string {
	if r.Coarse() {
		return r.StackID
	}
	return fmt.Sprintf("%s.%d", r.StackID, r.Revision)
}

// ParseStackRef parses the service's stack notation, "STK006021" for a
// coarse reference or "STK006021.3" for a specific revision.
func ParseStackRef(s string) (StackRef, error) {
	id, revPart, hasRev := strings.Cut(s, ".")
	if id == "" {
		return StackRef{}, fmt.Errorf("empty stack identifier in %q", s)
	}
	if !hasRev {
		return StackRef{StackID: id}, nil
	}
	rev, err := strconv.Atoi(revPart)
	if err != nil || rev < 1 {
		return StackRef{}, fmt.Errorf("invalid stack revision in %q", s)
	}
	return StackRef{StackID: id, Revision: rev}, nil
}

// StackInfo describes one revision of a stacked dataset.
type StackInfo struct {
	Ref         StackRef
	CatRev      int64   // catalogue revision the record was served from
	StartMJD    float64 // earliest contributing observation
	StopMJD     float64 // latest contributing observation
	ExposureSec float64 // summed livetime-corrected exposure
	SourceCount int     // sources detected in the stacked image
}

// SupersessionState classifies how a requested stack revision relates to the
// live catalogue. Not-found is an error, never a state.
type SupersessionState string

const (
	// StackCurrent: the requested revision is the live one.
	StackCurrent SupersessionState = "current"
	// StackNewerRevision: same stack, a newer revision now exists.
	StackNewerRevision SupersessionState = "superseded-by-newer-revision"
	// StackReplaced: the stack was retired in favour of different stacks
	// covering its sky area.
	StackReplaced SupersessionState = "superseded-by-other-stacks"
	// StackRetainedObsolete: the revision is no longer live but its data is
	// still served because a contained object has no alternative detection.
	StackRetainedObsolete SupersessionState = "obsolete-retained"
)

// Superseded reports whether the state means a newer or replacement dataset
// exists.
func (s SupersessionState) Superseded() bool {
	return s == StackNewerRevision || s == StackReplaced
}

// StackResolution is the outcome of resolving a stack reference against the
// live catalogue.
type StackResolution struct {
	State SupersessionState

	// Redirected is set when the data in Stack comes from a successor of the
	// requested revision rather than the revision itself.
	Redirected bool

	// Stack holds the stack record actually served. For StackReplaced it is
	// nil; the replacements carry the data.
	Stack *StackInfo

	// LatestRevision is the newest revision of the same stack identifier.
	LatestRevision int

	// Replacements lists the successor stacks for StackReplaced.
	Replacements []StackRef

	// Retained lists the product types still served for
	// StackRetainedObsolete; empty otherwise.
	Retained []ProductType
}

// ProductType names a class of data product attached to sources and stacks.
type ProductType string

const (
	ProductSourceList  ProductType = "sourcelist"
	ProductImages      ProductType = "images"
	ProductLightCurves ProductType = "lightcurves"
	ProductSpectra     ProductType = "spectra"
	ProductUpperLimits ProductType = "upperlimits"
)

// retainedObsoleteProducts is the availability table for stacks in the
// obsolete-but-retained state: which product types keep being served once a
// stack revision has dropped out of the live catalogue.
var retainedObsoleteProducts = map[ProductType]bool{
	ProductSourceList:  true,
	ProductImages:      true,
	ProductLightCurves: false,
	ProductSpectra:     false,
	ProductUpperLimits: false,
}

// ProductRetainedWhenObsolete reports whether the product type remains
// available from an obsolete-but-retained stack.
func ProductRetainedWhenObsolete(p ProductType) bool {
	return retainedObsoleteProducts[p]
}

// RetainedProducts returns the product types served from
// obsolete-but-retained stacks, sorted by name.
func RetainedProducts() []ProductType {
	var out []ProductType
	for p, retained := range retainedObsoleteProducts {
		if retained {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
