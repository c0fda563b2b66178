package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/tphakala/sxcat-go/internal/conf"
)

// createTestSettings builds settings with a configurable resolver section.
func createTestSettings(t *testing.T, provider string, opts ...func(*conf.Settings)) *conf.Settings {
	t.Helper()

	settings := &conf.Settings{
		Resolver: conf.ResolverSettings{
			Provider: provider,
			CacheTTL: time.Minute,
		},
	}
	for _, opt := range opts {
		opt(settings)
	}
	return settings
}

// setupHTTPMock activates httpmock and registers cleanup.
func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

// sesameSuccessResponse returns a Sesame plain text answer for V404 Cyg.
func sesameSuccessResponse() string {
	return `# V404 Cyg	#Q22707363
#=Simbad (CDS, via url):    1    35ms
%J 306.01590463 +33.86742475 = 20:24:03.81 +33:52:02.7
%J.E [5.73 4.97 90] A 2020yCat.1350....0G
%I.0 V* V404 Cyg
%I NOVA Cyg 1938
%I GS 2023+338
`
}

// sesameNotFoundResponse returns the text Sesame serves for unknown names.
func sesameNotFoundResponse() string {
	return `# NoSuchObject123	#Q22707364
#!SIMBAD: No known catalog could be found
#====Done (2026-Feb-03,22:51:40z)====
`
}

// stubProvider counts invocations and returns a canned result.
type stubProvider struct {
	calls  int
	result *Result
	err    error
}

func (s *stubProvider) Resolve(_ context.Context, name string) (*Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := *s.result
	out.Query = name
	return &out, nil
}
