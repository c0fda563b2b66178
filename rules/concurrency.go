//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// WaitGroupAddDone flags the manual Add/Done goroutine pattern that
// sync.WaitGroup.Go replaces.
//
// Old:
//
//	wg.Add(1)
//	go func() {
//	    defer wg.Done()
//	    work()
//	}()
//
// New (Go 1.25+):
//
//	wg.Go(work)
//
// See: https://pkg.go.dev/sync#WaitGroup.Go
func WaitGroupAddDone(m dsl.Matcher) {
	m.Match(
		`$wg.Add(1); go func() { defer $wg.Done(); $*body }()`,
	).
		Where(m["wg"].Type.Is("*sync.WaitGroup") || m["wg"].Type.Is("sync.WaitGroup")).
		Report("use $wg.Go(func() { $body }) instead of paired Add/Done (Go 1.25+)").
		Suggest("$wg.Go(func() { $body })")

	m.Match(
		`$wg.Add(1); go func($param $typ) { defer $param.Done(); $*body }($wg)`,
		`$wg.Add(1); go func($param $typ) { defer $param.Done(); $*body }(&$wg)`,
	).
		Where(m["wg"].Type.Is("*sync.WaitGroup") || m["wg"].Type.Is("sync.WaitGroup")).
		Report("use $wg.Go(func() { $body }) instead of paired Add/Done (Go 1.25+)")
}

// TimerChannelLen flags len/cap checks on timer and ticker channels.
// Since Go 1.23 those channels are unbuffered, so the check is always
// zero and the surrounding logic is dead.
//
// Old:
//
//	if len(timer.C) > 0 {
//	    <-timer.C
//	}
//
// New:
//
//	select {
//	case <-timer.C:
//	default:
//	}
//
// See: https://go.dev/doc/go1.23#timer-changes
func TimerChannelLen(m dsl.Matcher) {
	m.Match(
		`len($timer.C)`,
		`cap($timer.C)`,
	).
		Where(m["timer"].Type.Is("*time.Timer")).
		Report("timer channels are unbuffered since Go 1.23, len/cap is always 0; use a non-blocking select")

	m.Match(
		`len($ticker.C)`,
		`cap($ticker.C)`,
	).
		Where(m["ticker"].Type.Is("*time.Ticker")).
		Report("ticker channels are unbuffered since Go 1.23, len/cap is always 0; use a non-blocking select")
}
