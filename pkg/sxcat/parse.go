package sxcat

import (
	"github.com/antonholmquist/jason"

	"github.com/tphakala/sxcat-go/internal/errors"
	"github.com/tphakala/sxcat-go/pkg/catalogue"
)

// parseError wraps a payload field failure.
func parseError(err error, field string) error {
	return errors.New(err).
		Category(errors.CategoryResponseParsing).
		Context("field", field).
		Component("client").
		Build()
}

// parseResolution reads the Resolution object a name-based lookup rides on
// its envelope. Returns nil when the envelope carries none.
func parseResolution(obj *jason.Object) (*catalogue.Resolution, error) {
	resObj, err := obj.GetObject("Resolution")
	if err != nil {
		return nil, nil
	}

	state, err := resObj.GetString("State")
	if err != nil {
		return nil, parseError(err, "Resolution.State")
	}

	res := &catalogue.Resolution{}
	switch state {
	case "matched":
		res.State = catalogue.ResolutionMatched
	case "renamed":
		res.State = catalogue.ResolutionRenamed
	case "fragmented":
		res.State = catalogue.ResolutionFragmented
	default:
		return nil, errors.Newf("unknown resolution state %q", state).
			Category(errors.CategoryResponseParsing).
			Component("client").
			Build()
	}

	res.MatchedID, _ = resObj.GetInt64("SrcID")
	res.MatchedName, _ = resObj.GetString("Name")
	res.OldName, _ = resObj.GetString("OldName")

	if descendants, dErr := resObj.GetObjectArray("Descendants"); dErr == nil {
		for _, d := range descendants {
			summary := catalogue.DescendantSummary{}
			summary.ID, _ = d.GetInt64("SrcID")
			summary.Name, _ = d.GetString("Name")
			summary.RA, _ = d.GetFloat64("RA")
			summary.Dec, _ = d.GetFloat64("Dec")
			summary.Err90, _ = d.GetFloat64("Err90")
			res.Descendants = append(res.Descendants, summary)
		}
	}
	return res, nil
}

// parseSource builds a source record from a getSourceInfo envelope. Every
// instrument band gets an entry; bands missing from the payload are marked
// absent. A fragmented envelope carries only the resolution, so the record
// fields stay zero and the caller decides what to do with it.
func parseSource(obj *jason.Object) (*catalogue.Source, error) {
	res, err := parseResolution(obj)
	if err != nil {
		return nil, err
	}
	src := &catalogue.Source{Resolution: res}
	if res.Ambiguous() {
		return src, nil
	}

	src.ID, err = obj.GetInt64("SrcID")
	if err != nil {
		return nil, parseError(err, "SrcID")
	}
	src.Name, _ = obj.GetString("Name")
	src.RA, _ = obj.GetFloat64("RA")
	src.Dec, _ = obj.GetFloat64("Dec")
	src.Err90, _ = obj.GetFloat64("Err90")
	src.CatRev, _ = obj.GetInt64("CatRev")
	src.FirstObsMJD, _ = obj.GetFloat64("FirstObsMJD")
	src.LastObsMJD, _ = obj.GetFloat64("LastObsMJD")

	src.Bands = make(map[catalogue.Band]catalogue.BandDetection, len(catalogue.Bands()))
	for _, band := range catalogue.Bands() {
		src.Bands[band] = catalogue.BandDetection{State: catalogue.BandAbsent}
	}

	if bandsObj, bErr := obj.GetObject("Bands"); bErr == nil {
		for name, value := range bandsObj.Map() {
			band := catalogue.Band(name)
			if !band.Valid() {
				return nil, errors.Newf("unknown energy band %q", name).
					Category(errors.CategoryResponseParsing).
					Component("client").
					Build()
			}
			bandObj, objErr := value.Object()
			if objErr != nil {
				return nil, parseError(objErr, "Bands."+name)
			}
			detection, detErr := parseBandDetection(bandObj)
			if detErr != nil {
				return nil, detErr
			}
			src.Bands[band] = detection
		}
	}
	return src, nil
}

func parseBandDetection(obj *jason.Object) (catalogue.BandDetection, error) {
	state, err := obj.GetString("State")
	if err != nil {
		return catalogue.BandDetection{}, parseError(err, "Bands.State")
	}

	var d catalogue.BandDetection
	switch state {
	case "detected":
		d.State = catalogue.BandDetected
		d.Rate, _ = obj.GetFloat64("Rate")
		d.RatePos, _ = obj.GetFloat64("RatePos")
		d.RateNeg, _ = obj.GetFloat64("RateNeg")
	case "not-detected":
		d.State = catalogue.BandNotDetected
		d.UpperLimit, _ = obj.GetFloat64("UpperLimit")
	case "absent":
		d.State = catalogue.BandAbsent
	default:
		return catalogue.BandDetection{}, errors.Newf("unknown detection state %q", state).
			Category(errors.CategoryResponseParsing).
			Component("client").
			Build()
	}
	return d, nil
}

// parseStackInfo reads one stack record object.
func parseStackInfo(obj *jason.Object) (*catalogue.StackInfo, error) {
	stackID, err := obj.GetString("Stack")
	if err != nil {
		return nil, parseError(err, "Stack")
	}
	revision, err := obj.GetInt64("Revision")
	if err != nil {
		return nil, parseError(err, "Revision")
	}

	info := &catalogue.StackInfo{
		Ref: catalogue.StackRef{StackID: stackID, Revision: int(revision)},
	}
	info.CatRev, _ = obj.GetInt64("CatRev")
	info.StartMJD, _ = obj.GetFloat64("StartMJD")
	info.StopMJD, _ = obj.GetFloat64("StopMJD")
	info.ExposureSec, _ = obj.GetFloat64("ExposureSec")
	if count, cErr := obj.GetInt64("SourceCount"); cErr == nil {
		info.SourceCount = int(count)
	}
	return info, nil
}

// parseTransient reads a transient register record.
func parseTransient(obj *jason.Object) (*catalogue.Transient, error) {
	id, err := obj.GetInt64("TransID")
	if err != nil {
		return nil, parseError(err, "TransID")
	}

	tr := &catalogue.Transient{ID: id}
	tr.Designation, _ = obj.GetString("Designation")
	tr.RA, _ = obj.GetFloat64("RA")
	tr.Dec, _ = obj.GetFloat64("Dec")
	tr.Err90, _ = obj.GetFloat64("Err90")
	tr.Classification, _ = obj.GetString("Classification")
	tr.DiscoveryMJD, _ = obj.GetFloat64("DiscoveryMJD")
	tr.PeakRate, _ = obj.GetFloat64("PeakRate")
	tr.SourceID, _ = obj.GetInt64("SrcID")
	return tr, nil
}

// parseUpperLimitResult reads a computed upper-limit payload.
func parseUpperLimitResult(obj *jason.Object) (*catalogue.UpperLimitResult, error) {
	rows, err := obj.GetObjectArray("Limits")
	if err != nil {
		return nil, parseError(err, "Limits")
	}

	result := &catalogue.UpperLimitResult{}
	result.SourceID, _ = obj.GetInt64("SrcID")
	result.RA, _ = obj.GetFloat64("RA")
	result.Dec, _ = obj.GetFloat64("Dec")
	result.Sigma, _ = obj.GetFloat64("Sigma")

	for _, row := range rows {
		bandName, bErr := row.GetString("Band")
		if bErr != nil {
			return nil, parseError(bErr, "Limits.Band")
		}
		band := catalogue.Band(bandName)
		if !band.Valid() {
			return nil, errors.Newf("unknown energy band %q", bandName).
				Category(errors.CategoryResponseParsing).
				Component("client").
				Build()
		}
		limit := catalogue.UpperLimit{Band: band}
		limit.UpperLimit, _ = row.GetFloat64("UpperLimit")
		limit.Counts, _ = row.GetFloat64("Counts")
		limit.BGCounts, _ = row.GetFloat64("BGCounts")
		limit.Exposure, _ = row.GetFloat64("Exposure")
		result.Limits = append(result.Limits, limit)
	}
	return result, nil
}

// parseSpectrum reads a spectrum manifest.
func parseSpectrum(obj *jason.Object) (*catalogue.Spectrum, error) {
	tarball, err := obj.GetString("TarballURL")
	if err != nil {
		return nil, parseError(err, "TarballURL")
	}

	spec := &catalogue.Spectrum{TarballURL: tarball}
	spec.SourceID, _ = obj.GetInt64("SrcID")

	if files, fErr := obj.GetObjectArray("Files"); fErr == nil {
		for _, f := range files {
			file := catalogue.SpectrumFile{}
			file.Name, _ = f.GetString("Name")
			file.URL, _ = f.GetString("URL")
			file.Bytes, _ = f.GetInt64("Bytes")
			spec.Files = append(spec.Files, file)
		}
	}
	return spec, nil
}

// parseImageSet reads an image product listing.
func parseImageSet(obj *jason.Object) (*catalogue.ImageSet, error) {
	rows, err := obj.GetObjectArray("Images")
	if err != nil {
		return nil, parseError(err, "Images")
	}

	set := &catalogue.ImageSet{}
	set.SourceID, _ = obj.GetInt64("SrcID")
	for _, row := range rows {
		ref := catalogue.ImageRef{}
		if bandName, bErr := row.GetString("Band"); bErr == nil {
			ref.Band = catalogue.Band(bandName)
		}
		ref.Format, _ = row.GetString("Format")
		ref.URL, _ = row.GetString("URL")
		set.Images = append(set.Images, ref)
	}
	return set, nil
}
