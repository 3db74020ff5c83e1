// Package clock supplies the current time in the application's fixed
// timezone and handles the wall-clock date format webinars are stored with.
package clock

import (
	"fmt"
	"time"
)

// Layout is the stored wall-clock format: DD/MM/YYYY HH:mm:ss.
const Layout = "02/01/2006 15:04:05"

// DefaultTimezone is the zone all date comparisons use unless configured.
const DefaultTimezone = "America/Caracas"

// Clock supplies the current time bound to a fixed timezone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// FixedZone is a Clock bound to a named IANA timezone.
type FixedZone struct {
	loc *time.Location
}

// NewFixedZone creates a Clock for the given IANA zone name.
func NewFixedZone(name string) (*FixedZone, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return &FixedZone{loc: loc}, nil
}

// Now returns the current time in the clock's zone.
func (c *FixedZone) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the clock's zone.
func (c *FixedZone) Location() *time.Location {
	return c.loc
}

// Parse interprets a stored wall-clock string in the given zone.
func Parse(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Format renders a time as a stored wall-clock string.
func Format(t time.Time) string {
	return t.Format(Layout)
}
