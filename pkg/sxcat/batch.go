package sxcat

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// BatchOptions controls plural lookups.
type BatchOptions struct {
	// SkipErrors omits failing targets from the result instead of aborting
	// the whole batch. Skipped failures are logged.
	SkipErrors bool

	// Parallel bounds concurrent lookups. Zero or one runs the batch
	// sequentially.
	Parallel int
}

// indexTargets runs fetch once per distinct target and indexes the results
// by the targets exactly as the caller spelled them. Whatever identifier
// rewriting resolution performs stays inside the values; it never leaks into
// the keys, so two spellings of one object stay two entries.
//
// In strict mode the first failure aborts the batch and is returned wrapped
// with the failing target. In skip mode failing targets are simply missing
// from the result. The order of network calls is unspecified.
func indexTargets[T any](ctx context.Context, targets []catalogue.Target, opts BatchOptions,
	fetch func(context.Context, catalogue.Target) (T, error),
) (map[catalogue.Target]T, error) {
	results := make(map[catalogue.Target]T, len(targets))
	if len(targets) == 0 {
		return results, nil
	}

	limit := opts.Parallel
	if limit <= 0 {
		limit = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	seen := make(map[catalogue.Target]bool, len(targets))

	for _, target := range targets {
		if seen[target] {
			continue
		}
		seen[target] = true
		target := target
		g.Go(func() error {
			value, err := fetch(gCtx, target)
			if err != nil {
				if opts.SkipErrors {
					logger.Warn("batch lookup failed, skipping target",
						"target", target.String(),
						"error", err)
					return nil
				}
				return errors.New(err).
					Context("target", target.String()).
					Component("client").
					Build()
			}
			mu.Lock()
			results[target] = value
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
