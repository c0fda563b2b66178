package sxcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
	"github.com/tphakala/sxcat-go/pkg/lightcurve"
)

// lightCurveBody serves three Total-band bins that classify, at a three
// sigma threshold, as blind, retrospective and non-detection in that order.
func lightCurveBody() map[string]any {
	return map[string]any{
		"SourceID":       testSourceID,
		"Binning":        "observation",
		"TimeFormat":     "MJD",
		"ReportingSigma": 1.0,
		"Datasets": []any{
			map[string]any{"ID": "10001", "IsStack": false, "StartMJD": 58100.0, "StopMJD": 58100.4},
			map[string]any{"ID": "10002", "IsStack": false, "StartMJD": 58230.2, "StopMJD": 58230.6},
			map[string]any{"ID": "10003", "IsStack": false, "StartMJD": 58344.0, "StopMJD": 58344.2},
		},
		"Bands": map[string]any{
			"Total": map[string]any{"Bins": []any{
				map[string]any{
					"Time": 58100.2, "TimePos": 0.2, "TimeNeg": -0.2,
					"Rate": 0.8, "RatePos": 0.05, "RateNeg": -0.05,
					"Counts": 420.0, "BGCounts": 12.0, "Exposure": 520.0, "CorrFact": 1.1,
					"DatasetID": "10001", "BlindDet": true,
				},
				map[string]any{
					"Time": 58230.4, "TimePos": 0.2, "TimeNeg": -0.2,
					"Rate": 0.12, "RatePos": 0.04, "RateNeg": -0.03,
					"Counts": 66.0, "BGCounts": 9.0, "Exposure": 540.0, "CorrFact": 1.05,
					"DatasetID": "10002", "BlindDet": false,
				},
				map[string]any{
					"Time": 58344.1, "TimePos": 0.1, "TimeNeg": -0.1,
					"Rate": 0.01, "RatePos": 0.02, "RateNeg": -0.015, "UpperLimit": 0.045,
					"Counts": 8.0, "BGCounts": 6.5, "Exposure": 260.0, "CorrFact": 1.0,
					"DatasetID": "10003", "BlindDet": false,
				},
			}},
		},
	}
}

func lightCurveService(t *testing.T) *testService {
	return newTestService(t, func(req queryRequest) map[string]any {
		if req.Op == api.OpGetLightCurve {
			return lightCurveBody()
		}
		return nil
	})
}

func TestGetLightCurveDefaultGrouping(t *testing.T) {
	svc := lightCurveService(t)
	client := svc.newClient(t, func(o *Options) { o.DetectionThreshold = 3.0 })

	lc, err := client.GetLightCurve(t.Context(), catalogue.ByID(testSourceID))
	require.NoError(t, err)

	assert.Equal(t, testSourceID, lc.SourceID)
	assert.Equal(t, lightcurve.BinningObservation, lc.Binning)
	assert.Equal(t, lightcurve.TimeMJD, lc.TimeFormat)
	require.Len(t, lc.Datasets, 3)

	// Default grouping merges blind and retrospective rates and turns the
	// non-detection into a pooled upper limit.
	assert.Equal(t, []string{"Total_UL", "Total_rates"}, lc.SeriesNames())

	rates := lc.Bins("Total_rates")
	require.Len(t, rates, 2)
	assert.InDelta(t, 58100.2, rates[0].Time, 1e-9)
	assert.InDelta(t, 58230.4, rates[1].Time, 1e-9)

	limits := lc.Bins("Total_UL")
	require.Len(t, limits, 1)
	assert.InDelta(t, 58344.1, limits[0].Time, 1e-9)
	assert.InDelta(t, 0.045, limits[0].UpperLimit, 1e-9)

	// The client's binning and time format ride on the request.
	params := svc.paramsOf(api.OpGetLightCurve)[0]
	assert.Equal(t, "observation", params["binning"])
	assert.Equal(t, "MJD", params["timeformat"])
}

func TestGetLightCurveAllVariants(t *testing.T) {
	svc := lightCurveService(t)
	client := svc.newClient(t, func(o *Options) {
		o.DetectionThreshold = 3.0
		o.Grouping = &lightcurve.GroupingPolicy{AllVariants: true}
	})

	lc, err := client.GetLightCurve(t.Context(), catalogue.ByID(testSourceID))
	require.NoError(t, err)

	// Every class splits out, with retrospective and non-detection bins
	// emitted in both representations.
	assert.Equal(t, []string{
		"Total_blind_rates",
		"Total_nondet_UL",
		"Total_nondet_rates",
		"Total_retro_UL",
		"Total_retro_rates",
	}, lc.SeriesNames())
	assert.Len(t, lc.Bins("Total_retro_rates"), 1)
	assert.Len(t, lc.Bins("Total_retro_UL"), 1)
}

func TestGetLightCurveFragmented(t *testing.T) {
	svc := newTestService(t, func(req queryRequest) map[string]any {
		return fragmentedBody()
	})
	client := svc.newClient(t)

	lc, err := client.GetLightCurve(t.Context(), catalogue.ByName(oldFragName))
	require.Error(t, err)
	assert.Nil(t, lc)
	assert.True(t, IsAmbiguous(err))
}

func TestSaveLightCurveWritesSeriesFiles(t *testing.T) {
	svc := lightCurveService(t)
	destDir := t.TempDir()
	client := svc.newClient(t, func(o *Options) {
		o.DetectionThreshold = 3.0
		o.DestDir = destDir
	})

	paths, err := client.SaveLightCurve(t.Context(), catalogue.ByID(testSourceID))
	require.NoError(t, err)
	require.Len(t, paths, 2)

	wantDir := filepath.Join(destDir, "117")
	assert.Equal(t, filepath.Join(wantDir, "Total_UL.csv"), paths[0])
	assert.Equal(t, filepath.Join(wantDir, "Total_rates.csv"), paths[1])

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "header plus two rate bins")
	assert.Equal(t, "Time,TimePos,TimeNeg,Rate,RatePos,RateNeg,UpperLimit,Counts,BGCounts,Exposure,CorrFact,DatasetID,IsStack", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "58100.2,"), "got %q", lines[1])
	assert.Contains(t, lines[1], ",10001,false")
}

func TestSaveLightCurveKeepsExistingFiles(t *testing.T) {
	svc := lightCurveService(t)
	destDir := t.TempDir()
	client := svc.newClient(t, func(o *Options) {
		o.DetectionThreshold = 3.0
		o.DestDir = destDir
	})

	dir := filepath.Join(destDir, "117")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	sentinel := filepath.Join(dir, "Total_rates.csv")
	require.NoError(t, os.WriteFile(sentinel, []byte("sentinel\n"), 0o644))

	paths, err := client.SaveLightCurve(t.Context(), catalogue.ByID(testSourceID))
	require.NoError(t, err)
	assert.Contains(t, paths, sentinel)

	data, err := os.ReadFile(sentinel)
	require.NoError(t, err)
	assert.Equal(t, "sentinel\n", string(data), "existing files stay put without clobber")

	// The sibling series was still written fresh.
	_, err = os.Stat(filepath.Join(dir, "Total_UL.csv"))
	assert.NoError(t, err)
}

func TestSaveLightCurveClobber(t *testing.T) {
	svc := lightCurveService(t)
	destDir := t.TempDir()
	client := svc.newClient(t, func(o *Options) {
		o.DetectionThreshold = 3.0
		o.DestDir = destDir
		o.Clobber = true
	})

	dir := filepath.Join(destDir, "117")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	sentinel := filepath.Join(dir, "Total_rates.csv")
	require.NoError(t, os.WriteFile(sentinel, []byte("sentinel\n"), 0o644))

	_, err := client.SaveLightCurve(t.Context(), catalogue.ByID(testSourceID))
	require.NoError(t, err)

	data, err := os.ReadFile(sentinel)
	require.NoError(t, err)
	assert.NotEqual(t, "sentinel\n", string(data))
}
