package sxcat

import (
	"context"

	"github.com/antonholmquist/jason"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// GetStackInfo returns the record of one stacked dataset revision. A coarse
// reference (revision 0) means the current revision. A revision the service
// no longer knows at all is a not-found error.
func (c *Client) GetStackInfo(ctx context.Context, ref catalogue.StackRef) (*catalogue.StackInfo, error) {
	if err := validateStackRef(ref); err != nil {
		return nil, err
	}

	obj, err := c.api.Call(ctx, api.OpGetStackInfo, stackParams(ref))
	if err != nil {
		return nil, err
	}
	return parseStackInfo(obj)
}

// ResolveStack resolves a stack reference against the live catalogue and
// reports how the requested revision relates to what is served today.
//
// A coarse reference always resolves current. An exact reference comes back
// in one of four states: still current; superseded by a newer revision of
// the same stack, in which case Stack holds the newer revision's record and
// Redirected is set; replaced by different stacks covering its sky area,
// in which case Stack is nil and Replacements points at the successors; or
// obsolete but retained, in which case Stack holds the requested revision
// and Retained lists the product types still served from it.
func (c *Client) ResolveStack(ctx context.Context, ref catalogue.StackRef) (*catalogue.StackResolution, error) {
	if err := validateStackRef(ref); err != nil {
		return nil, err
	}

	obj, err := c.api.Call(ctx, api.OpResolveStack, stackParams(ref))
	if err != nil {
		return nil, err
	}

	state, err := obj.GetString("State")
	if err != nil {
		return nil, parseError(err, "State")
	}

	res := &catalogue.StackResolution{State: catalogue.SupersessionState(state)}
	if latest, lErr := obj.GetInt64("LatestRevision"); lErr == nil {
		res.LatestRevision = int(latest)
	}

	switch res.State {
	case catalogue.StackCurrent:
		res.Stack, err = stackInfoField(obj)
	case catalogue.StackNewerRevision:
		// The service answers with the successor's record, not the
		// requested revision's.
		res.Stack, err = stackInfoField(obj)
		res.Redirected = true
	case catalogue.StackReplaced:
		res.Replacements, err = parseReplacements(obj)
	case catalogue.StackRetainedObsolete:
		res.Stack, err = stackInfoField(obj)
		res.Retained = catalogue.RetainedProducts()
	default:
		return nil, errors.Newf("unknown supersession state %q", state).
			Category(errors.CategoryResponseParsing).
			Context("stack", ref.String()).
			Component("client").
			Build()
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("stack reference resolved",
		"stack", ref.String(),
		"state", res.State,
		"redirected", res.Redirected,
		"latest_revision", res.LatestRevision)
	return res, nil
}

func validateStackRef(ref catalogue.StackRef) error {
	if ref.StackID == "" {
		return errors.Newf("stack reference has no identifier").
			Category(errors.CategoryValidation).
			Component("client").
			Build()
	}
	if ref.Revision < 0 {
		return errors.Newf("stack revision must not be negative, got %d", ref.Revision).
			Category(errors.CategoryValidation).
			Context("stack", ref.StackID).
			Component("client").
			Build()
	}
	return nil
}

func stackParams(ref catalogue.StackRef) map[string]any {
	return map[string]any{
		"stack":    ref.StackID,
		"revision": ref.Revision,
	}
}

func stackInfoField(obj *jason.Object) (*catalogue.StackInfo, error) {
	infoObj, err := obj.GetObject("Info")
	if err != nil {
		return nil, parseError(err, "Info")
	}
	return parseStackInfo(infoObj)
}

func parseReplacements(obj *jason.Object) ([]catalogue.StackRef, error) {
	raw, err := obj.GetStringArray("Replacements")
	if err != nil {
		return nil, parseError(err, "Replacements")
	}
	refs := make([]catalogue.StackRef, 0, len(raw))
	for _, s := range raw {
		ref, parseErr := catalogue.ParseStackRef(s)
		if parseErr != nil {
			return nil, errors.New(parseErr).
				Category(errors.CategoryResponseParsing).
				Context("field", "Replacements").
				Component("client").
				Build()
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
