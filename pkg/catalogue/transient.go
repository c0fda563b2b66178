package catalogue

// Transient is an entry in the catalogue's transient register: a source
// whose flux changed enough between visits to be flagged for follow-up.
type Transient struct {
	ID             int64   // transient register identifier
	Designation    string  // e.g. "SXCAT-T 26-014"
	RA             float64 // degrees
	Dec            float64 // degrees
	Err90          float64 // arcsec
	Classification string  // best current classification, free text
	DiscoveryMJD   float64 // epoch of the triggering observation
	PeakRate       float64 // highest observed count rate, ct/s
	SourceID       int64   // linked catalogue source, 0 when not yet matched
}
