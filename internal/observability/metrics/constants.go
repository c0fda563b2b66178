// Package metrics provides constants used across metric definitions.
package metrics

import "time"

// Status and outcome label values shared across collectors.
const (
	// StatusSuccess marks an operation that completed normally.
	StatusSuccess = "success"
	// StatusError marks an operation that failed.
	StatusError = "error"
	// OutcomeHit marks a cache lookup served from the cache.
	OutcomeHit = "hit"
	// OutcomeMiss marks a cache lookup that fell through to the network.
	OutcomeMiss = "miss"
	// OutcomeStored marks a cache write.
	OutcomeStored = "stored"
	// OutcomeSaved marks a download written to disk.
	OutcomeSaved = "saved"
	// OutcomeSkipped marks a download skipped because the file already existed.
	OutcomeSkipped = "skipped"
)

// Histogram bucket configuration constants.
// These define the base values and factors for exponential bucket generation.
const (
	// BucketStart100ms is the starting bucket for 100ms histograms (100ms to ~100s range).
	BucketStart100ms = 0.1
	// BucketStart1s is the starting bucket for 1s histograms (1s to ~8.5min range).
	BucketStart1s = 1.0

	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2

	// BucketCount10 defines 10 exponential buckets.
	BucketCount10 = 10
)

// Time constants.
const (
	// ShutdownTimeout is the timeout for graceful shutdown operations.
	ShutdownTimeout = 5 * time.Second
)
