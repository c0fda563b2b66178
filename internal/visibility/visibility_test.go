package visibility

import (
	"testing"
	"time"
)

func TestNewCalculator(t *testing.T) {
	c := NewCalculator(testLatitude, testLongitude)
	if c == nil {
		t.Fatal("NewCalculator returned nil")
		return
	}

	if c.observer.Latitude != testLatitude {
		t.Errorf("Expected latitude %v, got %v", testLatitude, c.observer.Latitude)
	}

	if c.observer.Longitude != testLongitude {
		t.Errorf("Expected longitude %v, got %v", testLongitude, c.observer.Longitude)
	}
}

func TestTwilightFor(t *testing.T) {
	c := newTestCalculator()
	date := midwinterDate()

	// First call to calculate and cache
	times1, err := c.TwilightFor(date)
	if err != nil {
		t.Fatalf("Failed to get twilight times: %v", err)
	}

	if times1.AstronomicalDawn.IsZero() {
		t.Error("Astronomical dawn time is zero")
	}
	if times1.Sunrise.IsZero() {
		t.Error("Sunrise time is zero")
	}
	if times1.Sunset.IsZero() {
		t.Error("Sunset time is zero")
	}
	if times1.AstronomicalDusk.IsZero() {
		t.Error("Astronomical dusk time is zero")
	}

	// Dawn precedes sunrise, dusk follows sunset
	if !times1.AstronomicalDawn.Before(times1.Sunrise) {
		t.Error("Astronomical dawn should precede sunrise")
	}
	if !times1.Sunset.Before(times1.AstronomicalDusk) {
		t.Error("Sunset should precede astronomical dusk")
	}

	// Second call to test cache
	times2, err := c.TwilightFor(date)
	if err != nil {
		t.Fatalf("Failed to get cached twilight times: %v", err)
	}

	if !times1.AstronomicalDawn.Equal(times2.AstronomicalDawn) {
		t.Error("Cached astronomical dawn doesn't match original")
	}
	if !times1.AstronomicalDusk.Equal(times2.AstronomicalDusk) {
		t.Error("Cached astronomical dusk doesn't match original")
	}
}

func TestDarkWindowFor(t *testing.T) {
	c := newTestCalculator()
	date := midwinterDate()

	window, err := c.DarkWindowFor(date)
	if err != nil {
		t.Fatalf("Failed to get dark window: %v", err)
	}

	if !window.Start.Before(window.End) {
		t.Errorf("Window start %v should precede end %v", window.Start, window.End)
	}

	// The window starts on the evening of the requested date and ends the
	// following morning
	if window.Start.Day() != 10 {
		t.Errorf("Expected window to start on the 10th, got %v", window.Start)
	}
	if window.End.Day() != 11 {
		t.Errorf("Expected window to end on the 11th, got %v", window.End)
	}
	if window.Start.Hour() < 17 {
		t.Errorf("Astronomical dusk %v is implausibly early", window.Start)
	}
	if window.End.Hour() > 9 {
		t.Errorf("Astronomical dawn %v is implausibly late", window.End)
	}
}

func TestDarkWindowPolarSummer(t *testing.T) {
	// Helsinki never reaches astronomical darkness around midsummer
	c := NewCalculator(60.1699, 24.9384)
	date := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)

	_, err := c.DarkWindowFor(date)
	if err == nil {
		t.Error("Expected an error for a site without astronomical darkness")
	}
}

func TestIsDark(t *testing.T) {
	c := newTestCalculator()

	dark, err := c.IsDark(time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("IsDark failed: %v", err)
	}
	if !dark {
		t.Error("23:00 UTC in January should be dark at the test site")
	}

	dark, err = c.IsDark(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("IsDark failed: %v", err)
	}
	if dark {
		t.Error("Noon should not be dark at the test site")
	}
}

func TestSunriseSunsetFor(t *testing.T) {
	c := newTestCalculator()
	date := midwinterDate()

	sunrise, err := c.SunriseFor(date)
	if err != nil {
		t.Fatalf("Failed to get sunrise: %v", err)
	}
	sunset, err := c.SunsetFor(date)
	if err != nil {
		t.Fatalf("Failed to get sunset: %v", err)
	}

	if !sunrise.Before(sunset) {
		t.Errorf("Sunrise %v should precede sunset %v", sunrise, sunset)
	}
}
