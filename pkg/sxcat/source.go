package sxcat

import (
	"context"
	"encoding/json"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/internal/observability/metrics"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// GetSourceInfo returns the catalogue record of one object. Names go through
// the catalogue's own resolution; a renamed identifier comes back with the
// rename recorded on Resolution, and an identifier that fragmented into
// several current sources fails with an ambiguous-identifier error carrying
// the descendants.
func (c *Client) GetSourceInfo(ctx context.Context, target catalogue.Target) (*catalogue.Source, error) {
	src, err := c.fetchSource(ctx, target)
	if err != nil {
		return nil, err
	}
	if src.Resolution.Ambiguous() {
		return nil, ambiguousError(target, src.Resolution)
	}
	return src, nil
}

// GetSourcesInfo looks several objects up and indexes the records by the
// targets exactly as given. A fragmented identifier is a per-key outcome,
// not a failure: its entry carries the fragmented Resolution with the
// descendants and no detection data, and sibling lookups are unaffected in
// both strict and skip mode.
func (c *Client) GetSourcesInfo(ctx context.Context, targets []catalogue.Target, opts BatchOptions) (map[catalogue.Target]*catalogue.Source, error) {
	return indexTargets(ctx, targets, opts, c.fetchSource)
}

// fetchSource retrieves one source record, consulting the persistent cache
// when enabled. Fragmented lookups come back as a record carrying only the
// resolution; the single and batch entry points decide whether that is an
// error.
func (c *Client) fetchSource(ctx context.Context, target catalogue.Target) (*catalogue.Source, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	params, posRes, err := c.targetParams(ctx, target)
	if err != nil {
		return nil, err
	}

	if src, ok := c.cachedSource(ctx, target, posRes); ok {
		return src, nil
	}

	obj, err := c.api.Call(ctx, api.OpGetSourceInfo, params)
	if err != nil {
		return nil, err
	}

	src, err := parseSource(obj)
	if err != nil {
		return nil, err
	}
	if src.Resolution != nil {
		src.Resolution.Requested = target.String()
	}
	if posRes != nil {
		// The cone search already resolved the position; record it on the
		// envelope the way a name lookup would.
		posRes.Requested = target.String()
		src.Resolution = posRes
	}

	c.storeSource(target, src)
	return src, nil
}

// cachedSource serves a source record from the persistent cache. A name
// target's cached resolution supplies the canonical identifier first; a
// position target arrives with its resolution already in hand. Either layer
// missing falls through to the network.
func (c *Client) cachedSource(ctx context.Context, target catalogue.Target, posRes *catalogue.Resolution) (*catalogue.Source, bool) {
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

	id := target.ID()
	res := posRes
	if target.Kind() == catalogue.TargetName {
		cached, ok := c.cachedResolution(ctx, target)
		if !ok {
			return nil, false
		}
		res = cached
	}
	if res != nil {
		id = res.MatchedID
	}

	payload, ok := c.store.GetSource(id, c.api.Flavour(), rev)
	if !ok {
		c.metrics.Cache.RecordCacheOperation(cacheSources, metrics.OutcomeMiss)
		return nil, false
	}

	var src catalogue.Source
	if err := json.Unmarshal([]byte(payload), &src); err != nil {
		logger.Warn("cached source is unreadable, refetching",
			"source_id", id,
			"error", err)
		return nil, false
	}
	src.Resolution = res
	c.metrics.Cache.RecordCacheOperation(cacheSources, metrics.OutcomeHit)

	logger.Debug("source served from persistent cache",
		"target", target.String(),
		"source_id", src.ID)
	return &src, true
}

// storeSource persists a fetched record and, for resolved targets, the
// resolution that led to it. The record is cached under its canonical
// identifier with the resolution stripped, so a direct numeric lookup and a
// resolved name share one entry.
func (c *Client) storeSource(target catalogue.Target, src *catalogue.Source) {
	if c.store == nil || src.ID == 0 || src.Resolution.Ambiguous() || src.CatRev == 0 {
		return
	}

	stripped := *src
	stripped.Resolution = nil
	payload, err := json.Marshal(&stripped)
	if err != nil {
		return
	}
	if err := c.store.PutSource(src.ID, c.api.Flavour(), src.CatRev, string(payload)); err != nil {
		logger.Warn("failed to cache source",
			"source_id", src.ID,
			"error", err)
		return
	}
	c.metrics.Cache.RecordCacheOperation(cacheSources, metrics.OutcomeStored)

	if target.Kind() != catalogue.TargetID && src.Resolution != nil {
		c.storeResolution(target, src.Resolution, src.CatRev)
	}
	c.updateCacheGauges()
}
