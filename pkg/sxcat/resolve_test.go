package sxcat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/sxcat-go/internal/api"
)

func TestResolveName(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		if req.Op == api.OpResolveName {
			assert.Equal(t, "Mkn 421", req.Params["name"])
			return map[string]any{
				"RA": 166.1138, "Dec": 38.2088,
				"Name":       "SXCAT J110427.3+381231",
				"Provenance": "SXCAT cross-match pipeline",
			}
		}
		return nil
	})
	client := svc.newClient(t)

	res, err := client.ResolveName(t.Context(), "Mkn 421")
	require.NoError(t, err)

	assert.Equal(t, "Mkn 421", res.Query)
	assert.Equal(t, "SXCAT J110427.3+381231", res.Canonical)
	assert.InDelta(t, 166.1138, res.RA, 1e-9)
	assert.InDelta(t, 38.2088, res.Dec, 1e-9)
	assert.Equal(t, "catalogue", res.Provider)
}

func TestResolveNameCached(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		if req.Op == api.OpResolveName {
			return map[string]any{"RA": 166.1138, "Dec": 38.2088, "Name": "SXCAT J110427.3+381231"}
		}
		return nil
	})
	client := svc.newClient(t)

	first, err := client.ResolveName(t.Context(), "Mkn 421")
	require.NoError(t, err)

	// Case differences hit the same cache entry.
	second, err := client.ResolveName(t.Context(), "MKN 421")
	require.NoError(t, err)

	assert.Equal(t, 1, svc.callCount(api.OpResolveName))
	assert.Equal(t, first.Canonical, second.Canonical)
	assert.Equal(t, "MKN 421", second.Query, "each answer echoes its own query spelling")

	snap := client.Metrics()
	assert.Equal(t, int64(2), snap.ResolverLookups)
	assert.Equal(t, int64(1), snap.ResolverCacheHits)
	assert.Equal(t, int64(1), snap.ResolverCacheMisses)
}

func TestResolveNameNotFound(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		return errBody(api.CodeNotFound, "resolver knows no such name")
	})
	client := svc.newClient(t)

	res, err := client.ResolveName(t.Context(), "Totally Made Up 1")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsNotFound(err))
}

func TestNewUnknownResolverProvider(t *testing.T) {
	_, err := New(Options{
		BaseURL:          "http://localhost:1",
		ResolverProvider: "simbad",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "resolver provider")
}
