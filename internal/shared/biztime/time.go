// Package biztime centralizes time handling. All storage and transport
// use UTC; implicit Local timezone is prohibited.
package biztime

import "time"

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ToUTC normalizes a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}
