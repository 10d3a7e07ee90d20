// Package window computes the instant the booking service should be queried for.
package window

import "time"

const (
	// CutoffHour is the hour from which today's booking window is closed.
	CutoffHour = 22
	// OpeningHour is the first bookable hour of the next day.
	OpeningHour = 11
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Resolve returns t unchanged before CutoffHour. From CutoffHour on it returns
// the next calendar day at OpeningHour:00:00 in t's location.
func Resolve(t time.Time) time.Time {
	if t.Hour() < CutoffHour {
		return t
	}
	next := t.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), OpeningHour, 0, 0, 0, t.Location())
}

// Resolver applies Resolve to an injected clock.
type Resolver struct {
	clock Clock
}

// NewResolver returns a resolver; a nil clock uses the system clock.
func NewResolver(c Clock) *Resolver {
	if c == nil {
		c = RealClock{}
	}
	return &Resolver{clock: c}
}

// Target returns the booking instant for the current time.
func (r *Resolver) Target() time.Time {
	return Resolve(r.clock.Now())
}
