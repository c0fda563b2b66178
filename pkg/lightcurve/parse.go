package lightcurve

import (
	"github.com/antonholmquist/jason"

	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// ParseLightCurve builds a LightCurve from the payload object of a
// getLightCurve response. threshold is the caller's detection threshold in
// sigma; zero means "use the server's reporting level". The returned curve
// is already materialized under the given policy.
func ParseLightCurve(obj *jason.Object, threshold float64, policy GroupingPolicy) (*LightCurve, error) {
	binning, err := obj.GetString("Binning")
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryResponseParsing).
			Context("field", "Binning").
			Build()
	}
	if !Binning(binning).Valid() {
		return nil, errors.Newf("unknown binning %q", binning).
			Category(errors.CategoryResponseParsing).
			Build()
	}

	timeFormat, err := obj.GetString("TimeFormat")
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryResponseParsing).
			Context("field", "TimeFormat").
			Build()
	}
	if !TimeFormat(timeFormat).Valid() {
		return nil, errors.Newf("unknown time format %q", timeFormat).
			Category(errors.CategoryResponseParsing).
			Build()
	}

	bandsObj, err := obj.GetObject("Bands")
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryResponseParsing).
			Context("field", "Bands").
			Build()
	}

	lc := &LightCurve{
		Binning:    Binning(binning),
		TimeFormat: TimeFormat(timeFormat),
		Bands:      make(map[catalogue.Band][]Bin),
	}
	lc.SourceID, _ = obj.GetInt64("SourceID")

	reportingSigma, _ := obj.GetFloat64("ReportingSigma")
	classifier := Classifier{Threshold: threshold, ReportingSigma: reportingSigma}

	if datasets, dsErr := obj.GetObjectArray("Datasets"); dsErr == nil {
		for _, ds := range datasets {
			info := DatasetInfo{}
			info.ID, _ = ds.GetString("ID")
			info.IsStack, _ = ds.GetBoolean("IsStack")
			info.StartMJD, _ = ds.GetFloat64("StartMJD")
			info.StopMJD, _ = ds.GetFloat64("StopMJD")
			lc.Datasets = append(lc.Datasets, info)
		}
	}

	for name, value := range bandsObj.Map() {
		band := catalogue.Band(name)
		if !band.Valid() {
			return nil, errors.Newf("unknown energy band %q", name).
				Category(errors.CategoryResponseParsing).
				Build()
		}
		bandObj, objErr := value.Object()
		if objErr != nil {
			return nil, errors.New(objErr).
				Category(errors.CategoryResponseParsing).
				Context("band", name).
				Build()
		}
		bins, binsErr := parseBins(bandObj)
		if binsErr != nil {
			return nil, errors.New(binsErr).
				Category(errors.CategoryResponseParsing).
				Context("band", name).
				Build()
		}
		lc.Bands[band] = bins
	}

	lc.Classifier = classifier
	lc.Policy = policy
	lc.Series = Materialize(lc.Bands, classifier, policy)
	return lc, nil
}

// parseBins reads the Bins array of one band object. A band with no Bins
// key is served as an empty band.
func parseBins(bandObj *jason.Object) ([]Bin, error) {
	rows, err := bandObj.GetObjectArray("Bins")
	if err != nil {
		return []Bin{}, nil
	}
	bins := make([]Bin, 0, len(rows))
	for i, row := range rows {
		bin, binErr := parseBin(row)
		if binErr != nil {
			return nil, errors.New(binErr).
				Category(errors.CategoryResponseParsing).
				Context("bin_index", i).
				Build()
		}
		bins = append(bins, bin)
	}
	return bins, nil
}

func parseBin(row *jason.Object) (Bin, error) {
	var b Bin
	t, err := row.GetFloat64("Time")
	if err != nil {
		return Bin{}, errors.New(err).
			Category(errors.CategoryResponseParsing).
			Context("field", "Time").
			Build()
	}
	b.Time = t
	b.TimePos, _ = row.GetFloat64("TimePos")
	b.TimeNeg, _ = row.GetFloat64("TimeNeg")
	b.Rate, _ = row.GetFloat64("Rate")
	b.RatePos, _ = row.GetFloat64("RatePos")
	b.RateNeg, _ = row.GetFloat64("RateNeg")
	b.UpperLimit, _ = row.GetFloat64("UpperLimit")
	b.Counts, _ = row.GetFloat64("Counts")
	b.BGCounts, _ = row.GetFloat64("BGCounts")
	b.Exposure, _ = row.GetFloat64("Exposure")
	b.CorrFact, _ = row.GetFloat64("CorrFact")
	b.DatasetID, _ = row.GetString("DatasetID")
	b.IsStack, _ = row.GetBoolean("IsStack")
	b.BlindDetection, _ = row.GetBoolean("BlindDet")
	return b, nil
}
