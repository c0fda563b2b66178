package sxcat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

func transientBody() map[string]any {
	return map[string]any{
		"TransID":        int64(26014),
		"Designation":    "SXCAT-T 26-014",
		"RA":             188.733, "Dec": 12.391, "Err90": 2.8,
		"Classification": "candidate tidal disruption event",
		"DiscoveryMJD":   60712.4,
		"PeakRate":       1.84,
		"SrcID":          testSourceID,
	}
}

func TestGetTransient(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		if req.Op == api.OpGetTransient {
			return transientBody()
		}
		return nil
	})
	client := svc.newClient(t)

	tr, err := client.GetTransient(t.Context(), catalogue.ByName("SXCAT-T 26-014"))
	require.NoError(t, err)

	assert.Equal(t, int64(26014), tr.ID)
	assert.Equal(t, "SXCAT-T 26-014", tr.Designation)
	assert.Equal(t, "candidate tidal disruption event", tr.Classification)
	assert.InDelta(t, 60712.4, tr.DiscoveryMJD, 1e-9)
	assert.InDelta(t, 1.84, tr.PeakRate, 1e-9)
	assert.Equal(t, testSourceID, tr.SourceID)

	assert.Equal(t, "SXCAT-T 26-014", svc.paramsOf(api.OpGetTransient)[0]["name"])
}

func TestGetTransientParamsByKind(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		if req.Op == api.OpGetTransient {
			return transientBody()
		}
		return nil
	})
	client := svc.newClient(t)

	_, err := client.GetTransient(t.Context(), catalogue.ByID(26014))
	require.NoError(t, err)
	_, err = client.GetTransient(t.Context(), catalogue.ByPosition(188.733, 12.391))
	require.NoError(t, err)

	params := svc.paramsOf(api.OpGetTransient)
	require.Len(t, params, 2)
	assert.EqualValues(t, 26014, params[0]["transid"])

	// Positions cone-search the register directly, no catalogue detour.
	assert.InDelta(t, 188.733, params[1]["ra"].(float64), 1e-9)
	assert.InDelta(t, 12.391, params[1]["dec"].(float64), 1e-9)
	assert.InDelta(t, 3.0, params[1]["radius"].(float64), 1e-9)
	assert.Equal(t, 0, svc.callCount(api.OpResolvePosition))
}

func TestGetTransients(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		if req.Op != api.OpGetTransient {
			return nil
		}
		if _, ok := req.Params["transid"]; ok {
			return transientBody()
		}
		return errBody(api.CodeNotFound, "no register entry")
	})
	client := svc.newClient(t)

	targets := []catalogue.Target{
		catalogue.ByID(26014),
		catalogue.ByName("SXCAT-T 99-999"),
	}
	got, err := client.GetTransients(t.Context(), targets, BatchOptions{SkipErrors: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(26014), got[catalogue.ByID(26014)].ID)
}
