package sxcat

import (
	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// Error classification helpers. Every error the client returns carries a
// category; these helpers match it without the caller digging through wrap
// chains.

// IsNotFound reports whether the error means the object, stack or table
// does not exist in the queried flavour.
func IsNotFound(err error) bool {
	return errors.IsNotFound(err)
}

// IsAmbiguous reports whether the error means an identifier fragmented into
// several current sources. AsAmbiguous recovers the descendants.
func IsAmbiguous(err error) bool {
	return errors.IsAmbiguous(err)
}

// IsPending reports whether the error means a deferred upper-limit job has
// not finished computing. Fetch again later.
func IsPending(err error) bool {
	return errors.IsPending(err)
}

// IsConsumed reports whether the error means an upper-limit job token was
// already spent.
func IsConsumed(err error) bool {
	return errors.IsConsumed(err)
}

// IsInvalidIdentifier reports whether the error means the identifier was
// rejected before or by the service: malformed targets and identifiers the
// service refuses to parse both match.
func IsInvalidIdentifier(err error) bool {
	if errors.IsCategory(err, errors.CategoryValidation) {
		return true
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == api.CodeInvalidIdentifier
	}
	return false
}

// AsAmbiguous recovers the fragmented-identifier detail from an error: the
// identifier as requested and the current sources descending from it.
func AsAmbiguous(err error) (*catalogue.AmbiguousError, bool) {
	var ambErr *catalogue.AmbiguousError
	if errors.As(err, &ambErr) {
		return ambErr, true
	}
	return nil, false
}
