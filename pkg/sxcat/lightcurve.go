package sxcat

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tphakala/sxcat-go/internal/api"
	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
	"github.com/tphakala/sxcat-go/pkg/lightcurve"
)

// GetLightCurve fetches and materializes the light curve of one object. The
// client's binning, time format, detection threshold and grouping policy
// apply; use Rematerialize on the returned curve to regroup without another
// fetch.
func (c *Client) GetLightCurve(ctx context.Context, target catalogue.Target) (*lightcurve.LightCurve, error) {
	params, _, err := c.targetParams(ctx, target)
	if err != nil {
		return nil, err
	}
	params["binning"] = string(c.options.Binning)
	params["timeformat"] = string(c.options.TimeFormat)

	obj, err := c.api.Call(ctx, api.OpGetLightCurve, params)
	if err != nil {
		return nil, err
	}

	// A fragmented identifier cannot name a single light curve.
	res, err := parseResolution(obj)
	if err != nil {
		return nil, err
	}
	if res.Ambiguous() {
		return nil, ambiguousError(target, res)
	}

	policy := lightcurve.DefaultPolicy()
	if c.options.Grouping != nil {
		policy = *c.options.Grouping
	}
	lc, err := lightcurve.ParseLightCurve(obj, c.options.DetectionThreshold, policy)
	if err != nil {
		return nil, err
	}

	logger.Debug("light curve fetched",
		"target", target.String(),
		"source_id", lc.SourceID,
		"binning", lc.Binning,
		"series", len(lc.Series))
	return lc, nil
}

// GetLightCurves fetches light curves for several objects, indexed by the
// targets exactly as given.
func (c *Client) GetLightCurves(ctx context.Context, targets []catalogue.Target, opts BatchOptions) (map[catalogue.Target]*lightcurve.LightCurve, error) {
	return indexTargets(ctx, targets, opts, c.GetLightCurve)
}

// SaveLightCurve fetches the light curve of one object and writes one CSV
// file per named series under <destdir>/<target>/. Existing files are
// skipped unless clobber is on. Returns the paths written or skipped.
func (c *Client) SaveLightCurve(ctx context.Context, target catalogue.Target) ([]string, error) {
	lc, err := c.GetLightCurve(ctx, target)
	if err != nil {
		return nil, err
	}
	return c.writeCurveCSV(target, lc)
}

// SaveLightCurves does SaveLightCurve for several objects and returns the
// written paths per target.
func (c *Client) SaveLightCurves(ctx context.Context, targets []catalogue.Target, opts BatchOptions) (map[catalogue.Target][]string, error) {
	return indexTargets(ctx, targets, opts, func(ctx context.Context, target catalogue.Target) ([]string, error) {
		return c.SaveLightCurve(ctx, target)
	})
}

func (c *Client) writeCurveCSV(target catalogue.Target, lc *lightcurve.LightCurve) ([]string, error) {
	dir := filepath.Join(c.options.DestDir, fileSafe(target.String()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Context("directory", dir).
			Component("client").
			Build()
	}

	var paths []string
	for _, name := range lc.SeriesNames() {
		path := filepath.Join(dir, name+".csv")
		if !c.options.Clobber {
			if _, err := os.Stat(path); err == nil {
				logger.Debug("skipping existing series file", "path", path)
				paths = append(paths, path)
				continue
			}
		}
		if err := writeSeriesCSV(path, lc.Bins(name)); err != nil {
			return nil, errors.New(err).
				Category(errors.CategoryFileIO).
				Context("path", path).
				Context("series", name).
				Component("client").
				Build()
		}
		paths = append(paths, path)
	}

	logger.Info("light curve saved",
		"target", target.String(),
		"source_id", lc.SourceID,
		"series", len(paths),
		"directory", dir)
	return paths, nil
}

var seriesCSVHeader = []string{
	"Time", "TimePos", "TimeNeg",
	"Rate", "RatePos", "RateNeg", "UpperLimit",
	"Counts", "BGCounts", "Exposure", "CorrFact",
	"DatasetID", "IsStack",
}

func writeSeriesCSV(path string, bins []lightcurve.Bin) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(seriesCSVHeader); err != nil {
		return err
	}
	for i := range bins {
		b := &bins[i]
		record := []string{
			formatFloat(b.Time), formatFloat(b.TimePos), formatFloat(b.TimeNeg),
			formatFloat(b.Rate), formatFloat(b.RatePos), formatFloat(b.RateNeg), formatFloat(b.UpperLimit),
			formatFloat(b.Counts), formatFloat(b.BGCounts), formatFloat(b.Exposure), formatFloat(b.CorrFact),
			b.DatasetID, strconv.FormatBool(b.IsStack),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// fileSafe turns a target spelling into a path component.
func fileSafe(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '+', r == '.', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
