package sxcat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

func TestGetSourceInfoByID(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		if req.Op == api.OpGetSourceInfo {
			return sourceBody(testSourceID, testSourceName, testCatRev)
		}
		return nil
	})
	client := svc.newClient(t)

	src, err := client.GetSourceInfo(t.Context(), catalogue.ByID(testSourceID))
	require.NoError(t, err)

	assert.Equal(t, testSourceID, src.ID)
	assert.Equal(t, testSourceName, src.Name)
	assert.InDelta(t, 265.975, src.RA, 1e-9)
	assert.InDelta(t, -29.745, src.Dec, 1e-9)
	assert.InDelta(t, 1.9, src.Err90, 1e-9)
	assert.Equal(t, testCatRev, src.CatRev)
	assert.Nil(t, src.Resolution, "numeric lookups carry no resolution detail")

	require.Len(t, src.Bands, len(catalogue.Bands()))
	assert.Equal(t, catalogue.BandDetected, src.Bands[catalogue.BandTotal].State)
	assert.InDelta(t, 0.84, src.Bands[catalogue.BandTotal].Rate, 1e-9)
	assert.Equal(t, catalogue.BandNotDetected, src.Bands[catalogue.BandSoft].State)
	assert.InDelta(t, 0.012, src.Bands[catalogue.BandSoft].UpperLimit, 1e-9)

	// A direct identifier lookup costs exactly one request, carrying the
	// flavour and a request id on the envelope itself.
	require.Equal(t, 1, svc.totalCalls())
	params := svc.paramsOf(api.OpGetSourceInfo)
	require.Len(t, params, 1)
	assert.EqualValues(t, testSourceID, params[0]["srcid"])

	svc.mu.Lock()
	call := svc.calls[0]
	svc.mu.Unlock()
	assert.Equal(t, "live", call.Flavour)
	assert.NotEmpty(t, call.RID)
}

func TestGetSourceInfoFillsUncoveredBands(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		body := sourceBody(testSourceID, testSourceName, testCatRev)
		body["Bands"] = map[string]any{
			"Total": map[string]any{"State": "detected", "Rate": 0.5, "RatePos": 0.1, "RateNeg": -0.1},
		}
		return body
	})
	client := svc.newClient(t)

	src, err := client.GetSourceInfo(t.Context(), catalogue.ByID(testSourceID))
	require.NoError(t, err)

	// Bands the payload never mentions still have entries, explicitly absent.
	require.Len(t, src.Bands, len(catalogue.Bands()))
	assert.Equal(t, catalogue.BandDetected, src.Bands[catalogue.BandTotal].State)
	for _, band := range []catalogue.Band{catalogue.BandSoft, catalogue.BandMedium, catalogue.BandHard} {
		assert.Equal(t, catalogue.BandAbsent, src.Bands[band].State, "band %s", band)
	}
}

func TestGetSourceInfoRenamed(t *testing.T) {
	const oldName = "1SXPS J174354.1-294442"
	svc := newTestService(t, func(req queryRequest) map[string]any {
		body := sourceBody(testSourceID, testSourceName, testCatRev)
		body["Resolution"] = map[string]any{
			"State":   "renamed",
			"SrcID":   testSourceID,
			"Name":    testSourceName,
			"OldName": oldName,
		}
		return body
	})
	client := svc.newClient(t)

	src, err := client.GetSourceInfo(t.Context(), catalogue.ByName(oldName))
	require.NoError(t, err)

	require.NotNil(t, src.Resolution)
	assert.Equal(t, catalogue.ResolutionRenamed, src.Resolution.State)
	assert.Equal(t, oldName, src.Resolution.Requested)
	assert.Equal(t, oldName, src.Resolution.OldName)
	assert.Equal(t, testSourceID, src.Resolution.MatchedID)
	assert.Equal(t, testSourceName, src.Resolution.MatchedName)
	assert.Equal(t, testSourceName, src.Name, "record itself carries the current name")
}

func TestGetSourceInfoFragmented(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		return fragmentedBody()
	})
	client := svc.newClient(t)

	src, err := client.GetSourceInfo(t.Context(), catalogue.ByName("1SXPS J174354-2944"))
	require.Error(t, err)
	assert.Nil(t, src)
	assert.True(t, IsAmbiguous(err))

	ambig, ok := AsAmbiguous(err)
	require.True(t, ok)
	assert.Equal(t, "1SXPS J174354-2944", ambig.Identifier)
	require.Len(t, ambig.Descendants, 2)
	assert.Equal(t, int64(201), ambig.Descendants[0].ID)
	assert.Equal(t, "SXCAT J174354.3-294445", ambig.Descendants[1].Name)
}

func TestGetSourceInfoByPosition(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		switch req.Op {
		case api.OpResolvePosition:
			return map[string]any{"SrcID": testSourceID, "Name": testSourceName, "CatRev": testCatRev}
		case api.OpGetSourceInfo:
			return sourceBody(testSourceID, testSourceName, testCatRev)
		}
		return nil
	})
	client := svc.newClient(t)

	target := catalogue.ByPosition(265.975, -29.745)
	src, err := client.GetSourceInfo(t.Context(), target)
	require.NoError(t, err)
	assert.Equal(t, testSourceID, src.ID)

	// A positional lookup is a cone search followed by an identifier fetch.
	require.Equal(t, 1, svc.callCount(api.OpResolvePosition))
	require.Equal(t, 1, svc.callCount(api.OpGetSourceInfo))

	cone := svc.paramsOf(api.OpResolvePosition)[0]
	assert.InDelta(t, 265.975, cone["ra"].(float64), 1e-9)
	assert.InDelta(t, -29.745, cone["dec"].(float64), 1e-9)
	assert.InDelta(t, 3.0, cone["radius"].(float64), 1e-9)
	assert.EqualValues(t, testSourceID, svc.paramsOf(api.OpGetSourceInfo)[0]["srcid"])

	require.NotNil(t, src.Resolution)
	assert.Equal(t, catalogue.ResolutionMatched, src.Resolution.State)
	assert.Equal(t, target.String(), src.Resolution.Requested)
	assert.Equal(t, testSourceID, src.Resolution.MatchedID)
}

func TestGetSourceInfoConeRadiusOption(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		switch req.Op {
		case api.OpResolvePosition:
			return map[string]any{"SrcID": testSourceID, "Name": testSourceName, "CatRev": testCatRev}
		case api.OpGetSourceInfo:
			return sourceBody(testSourceID, testSourceName, testCatRev)
		}
		return nil
	})
	client := svc.newClient(t, func(o *Options) { o.ConeRadiusArcsec = 12.5 })

	_, err := client.GetSourceInfo(t.Context(), catalogue.ByPosition(10.0, 20.0))
	require.NoError(t, err)
	assert.InDelta(t, 12.5, svc.paramsOf(api.OpResolvePosition)[0]["radius"].(float64), 1e-9)
}

func TestGetSourceInfoNotFound(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		return errBody(api.CodeNotFound, "no source matches")
	})
	client := svc.newClient(t)

	src, err := client.GetSourceInfo(t.Context(), catalogue.ByName("SXCAT J000000.0+000000"))
	require.Error(t, err)
	assert.Nil(t, src)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsAmbiguous(err))
}

func TestGetSourceInfoInvalidTarget(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any { return nil })
	client := svc.newClient(t)

	_, err := client.GetSourceInfo(t.Context(), catalogue.Target{})
	require.Error(t, err)
	assert.True(t, IsInvalidIdentifier(err))
	assert.Equal(t, 0, svc.totalCalls(), "invalid targets never reach the network")
}
