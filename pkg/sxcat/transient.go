package sxcat

import (
	"context"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// GetTransient looks one entry up in the transient register. A name target
// matches the register designation, a numeric target the register
// identifier, and a position target runs a cone search in the register
// itself. Register designations never fragment, so no ambiguity arises
// here.
func (c *Client) GetTransient(ctx context.Context, target catalogue.Target) (*catalogue.Transient, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	params := map[string]any{}
	switch target.Kind() {
	case catalogue.TargetID:
		params["transid"] = target.ID()
	case catalogue.TargetName:
		params["name"] = target.Name()
	default:
		ra, dec := target.Position()
		params["ra"] = ra
		params["dec"] = dec
		params["radius"] = c.options.ConeRadiusArcsec
	}

	obj, err := c.api.Call(ctx, api.OpGetTransient, params)
	if err != nil {
		return nil, err
	}
	return parseTransient(obj)
}

// GetTransients looks several register entries up, indexed by the targets
// exactly as given.
func (c *Client) GetTransients(ctx context.Context, targets []catalogue.Target, opts BatchOptions) (map[catalogue.Target]*catalogue.Transient, error) {
	return indexTargets(ctx, targets, opts, c.GetTransient)
}
