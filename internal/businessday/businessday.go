package businessday

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const DateLayout = "2006-01-02"

// Resolver maps instants onto the restaurant's trading day, which starts at
// a fixed local hour rather than midnight.
type Resolver struct {
	loc       *time.Location
	startHour int
}

func New(timezone string, startHour int) (*Resolver, error) {
	if startHour < 0 || startHour > 23 {
		return nil, fmt.Errorf("business day start hour must be between 0 and 23, got %d", startHour)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load business timezone %q: %w", timezone, err)
	}
	return &Resolver{loc: loc, startHour: startHour}, nil
}

func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Window returns the start of the business day containing now and the start
// of the next one.
func (r *Resolver) Window(now time.Time) (time.Time, time.Time) {
	local := now.In(r.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), r.startHour, 0, 0, 0, r.loc)
	if local.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return start, start.AddDate(0, 0, 1)
}

// Contains reports whether t falls inside the business day of now. Both ends
// of the window are inclusive.
func (r *Resolver) Contains(now time.Time, t time.Time) bool {
	start, end := r.Window(now)
	return !t.Before(start) && !t.After(end)
}

// Today is the calendar date, in the business timezone, that the current
// business day started on.
func (r *Resolver) Today(now time.Time) string {
	start, _ := r.Window(now)
	return start.Format(DateLayout)
}

// DayRange resolves a YYYY-MM-DD key into its business day window.
func (r *Resolver) DayRange(dateKey string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, dateKey, r.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", dateKey, err)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), r.startHour, 0, 0, 0, r.loc)
	return start, start.AddDate(0, 0, 1), nil
}
