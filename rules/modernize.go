//go:build ruleguard

// Package gorules holds the ruleguard lint rules enforced on this codebase.
// The rules flag pre-generics idioms that newer Go versions replace outright.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// MinMaxViaMath flags integer min/max computed through math.Min/math.Max
// float round-trips.
//
// Old:
//
//	lo := int64(math.Min(float64(a), float64(b)))
//
// New (Go 1.21+):
//
//	lo := min(a, b)
//
// See: https://pkg.go.dev/builtin#min
func MinMaxViaMath(m dsl.Matcher) {
	m.Match(
		`int(math.Min(float64($a), float64($b)))`,
		`int64(math.Min(float64($a), float64($b)))`,
	).
		Report("use min($a, $b) instead of converting through math.Min (Go 1.21+)").
		Suggest("min($a, $b)")

	m.Match(
		`int(math.Max(float64($a), float64($b)))`,
		`int64(math.Max(float64($a), float64($b)))`,
	).
		Report("use max($a, $b) instead of converting through math.Max (Go 1.21+)").
		Suggest("max($a, $b)")
}

// MapClearLoop flags delete-in-range loops that empty a map.
//
// Old:
//
//	for k := range m {
//	    delete(m, k)
//	}
//
// New (Go 1.21+):
//
//	clear(m)
//
// See: https://pkg.go.dev/builtin#clear
func MapClearLoop(m dsl.Matcher) {
	m.Match(
		`for $k := range $m { delete($m, $k) }`,
		`for $k, _ := range $m { delete($m, $k) }`,
	).
		Report("use clear($m) instead of a delete loop (Go 1.21+)").
		Suggest("clear($m)")
}

// CountedLoop flags three-clause loops that only count from zero.
//
// Old:
//
//	for i := 0; i < n; i++ { ... }
//
// New (Go 1.22+):
//
//	for i := range n { ... }
//
// Benchmark loops over b.N are excluded; those belong to for b.Loop().
//
// See: https://go.dev/doc/go1.22#language
func CountedLoop(m dsl.Matcher) {
	m.Match(
		`for $i := 0; $i < $n; $i++ { $*body }`,
	).
		Where(
			!m["n"].Text.Matches(`.*\.N$`),
		).
		Report("use for $i := range $n instead of a three-clause loop (Go 1.22+)").
		Suggest("for $i := range $n { $body }")
}

// TypedSort flags the typed sort helpers superseded by the slices package.
//
// Old:
//
//	sort.Ints(ids)
//	sort.Strings(names)
//
// New (Go 1.21+):
//
//	slices.Sort(ids)
//	slices.Sort(names)
//
// See: https://pkg.go.dev/slices#Sort
func TypedSort(m dsl.Matcher) {
	m.Match(
		`sort.Ints($s)`,
		`sort.Strings($s)`,
		`sort.Float64s($s)`,
	).
		Report("use slices.Sort($s) instead of the typed sort helpers (Go 1.21+)").
		Suggest("slices.Sort($s)")

	m.Match(
		`sort.IntsAreSorted($s)`,
		`sort.StringsAreSorted($s)`,
		`sort.Float64sAreSorted($s)`,
	).
		Report("use slices.IsSorted($s) instead of the typed sort helpers (Go 1.21+)").
		Suggest("slices.IsSorted($s)")
}
