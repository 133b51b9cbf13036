package domain

import "time"

// timestampResolution matches the precision of PostgreSQL timestamps.
const timestampResolution = time.Microsecond

// Clock returns the current time. Use cases take one so tests can pin it.
type Clock func() time.Time

// SystemClock is the production clock.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// NextTimestamp returns now truncated to storage precision, or prev plus one
// tick when the clock has not moved past prev.
func NextTimestamp(prev, now time.Time) time.Time {
	next := now.Truncate(timestampResolution)
	if !prev.IsZero() && !next.After(prev) {
		next = prev.Add(timestampResolution)
	}
	return next
}
