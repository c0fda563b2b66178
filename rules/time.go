//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// TimeLayoutConstants flags the reference-time layouts that have named
// constants since Go 1.20.
//
// Old:
//
//	day.Format("2006-01-02")
//
// New (Go 1.20+):
//
//	day.Format(time.DateOnly)
//
// See: https://pkg.go.dev/time#pkg-constants
func TimeLayoutConstants(m dsl.Matcher) {
	m.Match(`$t.Format("2006-01-02 15:04:05")`).
		Report(`use $t.Format(time.DateTime) instead of the literal layout (Go 1.20+)`).
		Suggest(`$t.Format(time.DateTime)`)
	m.Match(`time.Parse("2006-01-02 15:04:05", $s)`).
		Report(`use time.Parse(time.DateTime, $s) instead of the literal layout (Go 1.20+)`).
		Suggest(`time.Parse(time.DateTime, $s)`)

	m.Match(`$t.Format("2006-01-02")`).
		Report(`use $t.Format(time.DateOnly) instead of the literal layout (Go 1.20+)`).
		Suggest(`$t.Format(time.DateOnly)`)
	m.Match(`time.Parse("2006-01-02", $s)`).
		Report(`use time.Parse(time.DateOnly, $s) instead of the literal layout (Go 1.20+)`).
		Suggest(`time.Parse(time.DateOnly, $s)`)

	m.Match(`$t.Format("15:04:05")`).
		Report(`use $t.Format(time.TimeOnly) instead of the literal layout (Go 1.20+)`).
		Suggest(`$t.Format(time.TimeOnly)`)
	m.Match(`time.Parse("15:04:05", $s)`).
		Report(`use time.Parse(time.TimeOnly, $s) instead of the literal layout (Go 1.20+)`).
		Suggest(`time.Parse(time.TimeOnly, $s)`)
}

// DeferredTimeSince flags time.Since passed directly to a deferred
// call. The duration is computed when the defer statement runs, not at
// function exit, so the logged value is always near zero.
//
// Broken:
//
//	start := time.Now()
//	defer log.Println(time.Since(start))
//
// Correct:
//
//	start := time.Now()
//	defer func() { log.Println(time.Since(start)) }()
//
// See: https://pkg.go.dev/time#Since
func DeferredTimeSince(m dsl.Matcher) {
	m.Match(
		`defer $fn(time.Since($start))`,
		`defer $fn(time.Since($start), $*args)`,
		`defer $fn($arg, time.Since($start))`,
	).
		Report("time.Since($start) is evaluated when the defer is queued, not at exit; wrap the call in a func()")
}
