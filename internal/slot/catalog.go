// Package slot holds the compiled-in table of bookable facility windows.
package slot

import (
	"time"

	"github.com/ollema/skiftesgatan-sub000/internal/domain"
)

// Window is one bookable time range, expressed in wall-clock hours of the
// building's local day.
type Window struct {
	BookingType domain.BookingType
	StartHour   int
	EndHour     int
	Label       string
}

var windows = []Window{
	{domain.BookingLaundry, 7, 11, "morning"},
	{domain.BookingLaundry, 11, 15, "midday"},
	{domain.BookingLaundry, 15, 19, "afternoon"},
	{domain.BookingLaundry, 19, 22, "evening"},
	{domain.BookingBBQ, 8, 20, "all day"},
}

// Catalog validates booking requests against the window table, anchoring
// windows on calendar days in the building's timezone.
type Catalog struct {
	loc *time.Location
}

func NewCatalog(loc *time.Location) *Catalog {
	return &Catalog{loc: loc}
}

// Location is the building's timezone, shared with month-range queries.
func (c *Catalog) Location() *time.Location {
	return c.loc
}

// WindowsFor lists the windows for a facility type, in daily order.
func (c *Catalog) WindowsFor(t domain.BookingType) []Window {
	var out []Window
	for _, w := range windows {
		if w.BookingType == t {
			out = append(out, w)
		}
	}
	return out
}

// Matches reports whether [start, end) is exactly one of the facility's
// windows instantiated on start's calendar day.
func (c *Catalog) Matches(t domain.BookingType, start, end time.Time) bool {
	local := start.In(c.loc)
	for _, w := range windows {
		if w.BookingType != t {
			continue
		}
		// Anchored via time.Date so DST transition days keep wall-clock hours.
		ws := time.Date(local.Year(), local.Month(), local.Day(), w.StartHour, 0, 0, 0, c.loc)
		we := time.Date(local.Year(), local.Month(), local.Day(), w.EndHour, 0, 0, 0, c.loc)
		if start.Equal(ws) && end.Equal(we) {
			return true
		}
	}
	return false
}
