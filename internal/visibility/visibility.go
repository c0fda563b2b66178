// internal/visibility/visibility.go

// Package visibility computes ground-site darkness windows for planning
// follow-up observations of catalogue sources. All times are UTC.
package visibility

import (
	"fmt"
	"sync"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// TwilightTimes holds the calculated sun event times for one date in UTC
type TwilightTimes struct {
	AstronomicalDawn time.Time // Sun reaches 18 degrees below the horizon, morning
	Sunrise          time.Time // Sunrise
	Sunset           time.Time // Sunset
	AstronomicalDusk time.Time // Sun reaches 18 degrees below the horizon, evening
}

// DarkWindow is the span of astronomical darkness that starts on a given
// evening and ends the following morning
type DarkWindow struct {
	Start time.Time // Astronomical dusk on the requested date
	End   time.Time // Astronomical dawn on the following date
}

// cacheEntry holds the cached twilight times for a given date
type cacheEntry struct {
	times TwilightTimes // Twilight times in UTC
	date  time.Time     // Date for which the times are cached
}

// Calculator handles caching and calculation of twilight times
type Calculator struct {
	cache    map[string]cacheEntry // Cache of twilight times for dates
	lock     sync.RWMutex          // Lock for cache access
	observer astral.Observer       // Observer site for the calculations
}

// NewCalculator creates a new Calculator for the given site
func NewCalculator(latitude, longitude float64) *Calculator {
	return &Calculator{
		cache:    make(map[string]cacheEntry),
		observer: astral.Observer{Latitude: latitude, Longitude: longitude},
	}
}

// TwilightFor returns the twilight times for a given date, using cache if available
func (c *Calculator) TwilightFor(date time.Time) (TwilightTimes, error) {
	// Format the date as a string key for the cache
	dateKey := date.Format(time.DateOnly)

	c.lock.RLock()
	entry, exists := c.cache[dateKey]
	c.lock.RUnlock()

	if exists && entry.date.Equal(date) {
		return entry.times, nil
	}

	times, err := c.calculateTwilightTimes(date)
	if err != nil {
		return TwilightTimes{}, err
	}

	c.lock.Lock()
	c.cache[dateKey] = cacheEntry{times: times, date: date}
	c.lock.Unlock()

	return times, nil
}

// calculateTwilightTimes calculates the twilight times for a given date
func (c *Calculator) calculateTwilightTimes(date time.Time) (TwilightTimes, error) {
	// Polar summer sites never reach astronomical darkness and the
	// library reports that as an error, which callers must see.
	dawn, err := astral.Dawn(c.observer, date, astral.DepressionAstronomical)
	if err != nil {
		return TwilightTimes{}, fmt.Errorf("failed to calculate astronomical dawn: %w", err)
	}

	sunrise, err := astral.Sunrise(c.observer, date)
	if err != nil {
		return TwilightTimes{}, fmt.Errorf("failed to calculate sunrise: %w", err)
	}

	sunset, err := astral.Sunset(c.observer, date)
	if err != nil {
		return TwilightTimes{}, fmt.Errorf("failed to calculate sunset: %w", err)
	}

	dusk, err := astral.Dusk(c.observer, date, astral.DepressionAstronomical)
	if err != nil {
		return TwilightTimes{}, fmt.Errorf("failed to calculate astronomical dusk: %w", err)
	}

	return TwilightTimes{
		AstronomicalDawn: dawn.UTC(),
		Sunrise:          sunrise.UTC(),
		Sunset:           sunset.UTC(),
		AstronomicalDusk: dusk.UTC(),
	}, nil
}

// DarkWindowFor returns the astronomical darkness window that begins on the
// evening of the given date and ends the next morning
func (c *Calculator) DarkWindowFor(date time.Time) (DarkWindow, error) {
	evening, err := c.TwilightFor(date)
	if err != nil {
		return DarkWindow{}, fmt.Errorf("failed to get evening twilight: %w", err)
	}

	morning, err := c.TwilightFor(date.AddDate(0, 0, 1))
	if err != nil {
		return DarkWindow{}, fmt.Errorf("failed to get morning twilight: %w", err)
	}

	return DarkWindow{
		Start: evening.AstronomicalDusk,
		End:   morning.AstronomicalDawn,
	}, nil
}

// IsDark reports whether the site is in astronomical darkness at the given time
func (c *Calculator) IsDark(at time.Time) (bool, error) {
	times, err := c.TwilightFor(at.UTC().Truncate(24 * time.Hour))
	if err != nil {
		return false, fmt.Errorf("failed to get twilight times: %w", err)
	}

	// Darkness on a given calendar day lies before the morning dawn or
	// after the evening dusk.
	if at.Before(times.AstronomicalDawn) {
		return true, nil
	}
	return !at.Before(times.AstronomicalDusk), nil
}

// SunriseFor returns the sunrise time for a given date
func (c *Calculator) SunriseFor(date time.Time) (time.Time, error) {
	times, err := c.TwilightFor(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get twilight times: %w", err)
	}
	return times.Sunrise, nil
}

// SunsetFor returns the sunset time for a given date
func (c *Calculator) SunsetFor(date time.Time) (time.Time, error) {
	times, err := c.TwilightFor(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get twilight times: %w", err)
	}
	return times.Sunset, nil
}
