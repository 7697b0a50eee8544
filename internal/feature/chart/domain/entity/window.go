// Package entity defines the domain models for the chart feature.
package entity

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// ErrInvalidWindow is returned when a window's start falls after its end.
var ErrInvalidWindow = errors.New("invalid date window")

// Day is the span of one calendar day on the time axis.
const Day = 24 * time.Hour

// DateWindow is the inclusive calendar-day range selected for display.
// It also bounds every pan and zoom of the time axis.
type DateWindow struct {
	Start civil.Date
	End   civil.Date
}

// ParseDateWindow parses ISO calendar days ("2006-01-02") into a validated window.
func ParseDateWindow(start, end string) (DateWindow, error) {
	s, err := civil.ParseDate(start)
	if err != nil {
		return DateWindow{}, fmt.Errorf("%w: start %q: %v", ErrInvalidWindow, start, err)
	}
	e, err := civil.ParseDate(end)
	if err != nil {
		return DateWindow{}, fmt.Errorf("%w: end %q: %v", ErrInvalidWindow, end, err)
	}
	w := DateWindow{Start: s, End: e}
	if err := w.Validate(); err != nil {
		return DateWindow{}, err
	}
	return w, nil
}

// Validate checks that both days are valid and Start <= End.
func (w DateWindow) Validate() error {
	if !w.Start.IsValid() || !w.End.IsValid() {
		return fmt.Errorf("%w: %s..%s", ErrInvalidWindow, w.Start, w.End)
	}
	if w.Start.After(w.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidWindow, w.Start, w.End)
	}
	return nil
}

// Contains reports whether d lies in [Start, End].
func (w DateWindow) Contains(d civil.Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Min is the first instant on the time axis (UTC midnight of Start).
func (w DateWindow) Min() time.Time {
	return w.Start.In(time.UTC)
}

// Max is the last instant on the time axis (UTC midnight of End).
func (w DateWindow) Max() time.Time {
	return w.End.In(time.UTC)
}

// Span is the length of the time axis.
func (w DateWindow) Span() time.Duration {
	return w.Max().Sub(w.Min())
}

// Timestamp maps a calendar day to its instant on the time axis.
func Timestamp(d civil.Date) time.Time {
	return d.In(time.UTC)
}
