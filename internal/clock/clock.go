// Package clock supplies the current time in the business time zone.
package clock

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Clock returns the current time. All pipeline timestamps go through it.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type zoned struct {
	loc *time.Location
}

// New returns a wall clock reporting time in the named IANA zone.
func New(zone string) (Clock, error) {
	if zone == "" {
		return &zoned{loc: time.UTC}, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", zone, err)
	}
	return &zoned{loc: loc}, nil
}

func (z *zoned) Now() time.Time           { return time.Now().In(z.loc) }
func (z *zoned) Location() *time.Location { return z.loc }

// Fixed is a settable clock for tests and replays.
type Fixed struct {
	T time.Time
}

// NewFixed returns a clock frozen at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{T: t}
}

func (f *Fixed) Now() time.Time { return f.T }

func (f *Fixed) Location() *time.Location {
	if f.T.Location() == nil {
		return time.UTC
	}
	return f.T.Location()
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
