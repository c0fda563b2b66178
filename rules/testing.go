//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// TestContext flags context.Background and context.TODO inside test
// files. t.Context is cancelled when the test finishes, so goroutines
// holding it stop instead of leaking past the test.
//
// Old:
//
//	ctx := context.Background()
//
// New (Go 1.24+):
//
//	ctx := t.Context()
//
// See: https://pkg.go.dev/testing#T.Context
func TestContext(m dsl.Matcher) {
	m.Match(
		`$ctx := context.Background()`,
		`$ctx = context.Background()`,
		`$ctx := context.TODO()`,
		`$ctx = context.TODO()`,
	).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("use t.Context() in tests so the context is cancelled when the test ends (Go 1.24+)")

	m.Match(
		`$fn(context.Background(), $*args)`,
		`$fn(context.TODO(), $*args)`,
	).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("use t.Context() in tests so the context is cancelled when the test ends (Go 1.24+)")
}

// BenchmarkCountedLoop flags benchmarks iterating over b.N by hand.
// b.Loop keeps the body from being optimised away and runs setup once
// per -count.
//
// Old:
//
//	for i := 0; i < b.N; i++ { ... }
//
// New (Go 1.24+):
//
//	for b.Loop() { ... }
//
// See: https://pkg.go.dev/testing#B.Loop
func BenchmarkCountedLoop(m dsl.Matcher) {
	m.Match(
		`for $i := 0; $i < $b.N; $i++ { $*body }`,
		`for $i := range $b.N { $*body }`,
	).
		Where(m["b"].Type.Is("*testing.B")).
		Report("use for $b.Loop() { ... } instead of iterating $b.N (Go 1.24+); declare a counter separately if the body needs one")

	m.Match(
		`for range $b.N { $*body }`,
	).
		Where(m["b"].Type.Is("*testing.B")).
		Report("use for $b.Loop() { ... } instead of for range $b.N (Go 1.24+)").
		Suggest("for $b.Loop() { $body }")
}
