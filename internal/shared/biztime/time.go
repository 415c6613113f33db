// Package biztime keeps every stored and compared timestamp in UTC.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const DefaultTimezone = "UTC"

var (
	bizLocation   *time.Location
	bizLocationMu sync.RWMutex
)

// Init sets the timezone used for scheduling. Storage stays UTC regardless.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	bizLocationMu.Lock()
	bizLocation = loc
	bizLocationMu.Unlock()
	return nil
}

// Location returns the scheduling timezone, UTC when Init has not run.
func Location() *time.Location {
	bizLocationMu.RLock()
	defer bizLocationMu.RUnlock()
	if bizLocation == nil {
		return time.UTC
	}
	return bizLocation
}

func NowUTC() time.Time {
	return time.Now().UTC()
}

// Days converts a day count into a duration.
func Days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// WholeDays truncates d to the number of complete days it spans.
func WholeDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// Later returns whichever of a and b is later.
func Later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
