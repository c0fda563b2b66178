//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// BodyCloseBeforeErrCheck flags deferring resp.Body.Close before the
// request error has been checked. On error the response is nil and the
// deferred close panics.
//
// Broken:
//
//	resp, err := client.Do(req)
//	defer resp.Body.Close()
//	if err != nil { ... }
//
// Correct:
//
//	resp, err := client.Do(req)
//	if err != nil { ... }
//	defer resp.Body.Close()
func BodyCloseBeforeErrCheck(m dsl.Matcher) {
	m.Match(
		`$resp, $err := $c.Do($req); defer $resp.Body.Close(); if $err != nil { $*_ }`,
		`$resp, $err := http.Get($url); defer $resp.Body.Close(); if $err != nil { $*_ }`,
		`$resp, $err := http.Post($*_); defer $resp.Body.Close(); if $err != nil { $*_ }`,
	).
		Report("$resp is nil when $err != nil; check the error before deferring Body.Close")
}

// SprintfHostPort flags fmt.Sprintf used to join a host and an integer
// port. net.JoinHostPort brackets IPv6 hosts, Sprintf does not.
//
// Old:
//
//	addr := fmt.Sprintf("%s:%d", host, port)
//
// New:
//
//	addr := net.JoinHostPort(host, strconv.Itoa(port))
//
// Only integer ports are flagged; string "a:b" concatenations are too
// often cache keys or identifiers to report.
//
// See: https://pkg.go.dev/net#JoinHostPort
func SprintfHostPort(m dsl.Matcher) {
	m.Match(
		`fmt.Sprintf("%s:%d", $host, $port)`,
		`fmt.Sprintf("%v:%d", $host, $port)`,
	).
		Report("use net.JoinHostPort($host, strconv.Itoa($port)) so IPv6 hosts are bracketed")
}
