package sxcat

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/internal/observability/metrics"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// NameResolution is a resolved free-form name.
type NameResolution struct {
	Query      string  // the name as asked
	Canonical  string  // the resolver's canonical designation
	RA         float64 // degrees, J2000
	Dec        float64 // degrees, J2000
	Provenance string  // human-readable origin of the coordinates
	Provider   string  // which provider answered
}

// ResolveName turns a free-form object name into coordinates using the
// configured resolution provider. Results are cached in memory for the
// resolver's TTL.
func (c *Client) ResolveName(ctx context.Context, name string) (*NameResolution, error) {
	result, err := c.resolver.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	return &NameResolution{
		Query:      result.Query,
		Canonical:  result.Canonical,
		RA:         result.RA,
		Dec:        result.Dec,
		Provenance: result.Provenance,
		Provider:   result.Provider,
	}, nil
}

// targetParams translates a target into the identifier parameters of a
// product request. Names pass through for server-side resolution; positions
// resolve to a canonical source in a separate round trip first, and the
// synthesized resolution is returned alongside so envelope builders can
// attach it.
func (c *Client) targetParams(ctx context.Context, target catalogue.Target) (map[string]any, *catalogue.Resolution, error) {
	if err := target.Validate(); err != nil {
		return nil, nil, err
	}

	switch target.Kind() {
	case catalogue.TargetID:
		return map[string]any{"srcid": target.ID()}, nil, nil
	case catalogue.TargetName:
		return map[string]any{"name": target.Name()}, nil, nil
	default:
		res, err := c.resolvePosition(ctx, target)
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{"srcid": res.MatchedID}, res, nil
	}
}

// resolvePosition runs the cone search for a position target and returns the
// match as a resolution record. No catalogued source within the radius is a
// not-found error.
func (c *Client) resolvePosition(ctx context.Context, target catalogue.Target) (*catalogue.Resolution, error) {
	if res, ok := c.cachedResolution(ctx, target); ok {
		return res, nil
	}

	ra, dec := target.Position()
	obj, err := c.api.Call(ctx, api.OpResolvePosition, map[string]any{
		"ra":     ra,
		"dec":    dec,
		"radius": c.options.ConeRadiusArcsec,
	})
	if err != nil {
		return nil, err
	}

	id, err := obj.GetInt64("SrcID")
	if err != nil {
		return nil, parseError(err, "SrcID")
	}
	name, _ := obj.GetString("Name")
	catRev, _ := obj.GetInt64("CatRev")

	res := &catalogue.Resolution{
		State:       catalogue.ResolutionMatched,
		Requested:   target.String(),
		MatchedID:   id,
		MatchedName: name,
	}
	c.storeResolution(target, res, catRev)
	return res, nil
}

// cacheKey is the persistent cache key of a target. Names are keyed
// case-insensitively, matching the in-memory resolver.
func cacheKey(target catalogue.Target) string {
	return strings.ToLower(target.String())
}

// cachedResolution consults the persistent cache for a prior resolution of
// the target. A disabled cache, a stale entry and an unreachable revision
// check all report a miss.
func (c *Client) cachedResolution(ctx context.Context, target catalogue.Target) (*catalogue.Resolution, bool) {
	if c.store == nil {
		return nil, false
	}
	rev, err := c.catalogueRevision(ctx)
	if err != nil {
		logger.Warn("revision check failed, bypassing persistent cache",
			"target", target.String(),
			"error", err)
		return nil, false
	}

	payload, ok := c.store.GetResolution(cacheKey(target), c.api.Flavour(), rev)
	if !ok {
		c.metrics.Cache.RecordCacheOperation(cacheResolutions, metrics.OutcomeMiss)
		return nil, false
	}

	var res catalogue.Resolution
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		logger.Warn("cached resolution is unreadable, refetching",
			"target", target.String(),
			"error", err)
		return nil, false
	}
	res.Requested = target.String()
	c.metrics.Cache.RecordCacheOperation(cacheResolutions, metrics.OutcomeHit)
	return &res, true
}

// storeResolution persists a resolution under the target's cache key.
// Fragmented resolutions are never cached; their descendant sets change as
// the catalogue is revised.
func (c *Client) storeResolution(target catalogue.Target, res *catalogue.Resolution, catRev int64) {
	if c.store == nil || res == nil || res.Ambiguous() || catRev == 0 {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.store.PutResolution(cacheKey(target), c.api.Flavour(), catRev, string(payload)); err != nil {
		logger.Warn("failed to cache resolution",
			"target", target.String(),
			"error", err)
		return
	}
	c.metrics.Cache.RecordCacheOperation(cacheResolutions, metrics.OutcomeStored)
	c.updateCacheGauges()
}

// ambiguousError converts a fragmented resolution into the error single
// object lookups fail with.
func ambiguousError(target catalogue.Target, res *catalogue.Resolution) error {
	ambErr := &catalogue.AmbiguousError{
		Identifier:  target.String(),
		Descendants: res.Descendants,
	}
	return errors.New(ambErr).
		Context("target", target.String()).
		Context("descendants", len(res.Descendants)).
		Component("client").
		Build()
}
