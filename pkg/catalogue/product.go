package catalogue

// SpectrumFile is one member file of a spectrum product.
type SpectrumFile struct {
	Name  string // file name within the product, e.g. "src117_Total.pha"
	URL   string // direct download location
	Bytes int64  // size as reported by the archive, 0 when unknown
}

// Spectrum is the manifest of a source's spectral product. The product is
// served both as individual files and as one tarball; callers download, the
// archive never extracts.
type Spectrum struct {
	SourceID   int64
	TarballURL string
	Files      []SpectrumFile
}

// ImageRef names one image product of a source.
type ImageRef struct {
	Band   Band
	Format string // "png" or "fits"
	URL    string
}

// ImageSet lists the image products available for a source.
type ImageSet struct {
	SourceID int64
	Images   []ImageRef
}

// UpperLimit is a count-rate upper limit in one energy band.
type UpperLimit struct {
	Band       Band
	UpperLimit float64 // ct/s at the result's confidence level
	Counts     float64 // total counts in the extraction region
	BGCounts   float64 // estimated background counts
	Exposure   float64 // seconds, livetime corrected
}

// UpperLimitResult is a computed upper-limit set for one sky position.
type UpperLimitResult struct {
	SourceID int64   // matched catalogue source, 0 for a bare position
	RA       float64 // degrees
	Dec      float64 // degrees
	Sigma    float64 // confidence level of the limits
	Limits   []UpperLimit
}

// Limit returns the entry for one band, or nil when the band was not
// computed.
func (r *UpperLimitResult) Limit(band Band) *UpperLimit {
	for i := range r.Limits {
		if r.Limits[i].Band == band {
			return &r.Limits[i]
		}
	}
	return nil
}
