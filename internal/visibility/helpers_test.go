package visibility

import "time"

// Roque de los Muchachos coordinates for testing
const (
	testLatitude  = 28.7606
	testLongitude = -17.8847
)

// newTestCalculator creates a Calculator at the Roque de los Muchachos site.
func newTestCalculator() *Calculator {
	return NewCalculator(testLatitude, testLongitude)
}

// midwinterDate returns January 10, 2024 UTC - a date with a long, deep night.
func midwinterDate() time.Time {
	return time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
}
