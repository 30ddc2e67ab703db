// Package period maps a granularity plus an anchor date onto concrete
// reporting windows. All functions are pure: navigation state lives with the
// caller and prev/next are symmetric shifts over the anchor.
package period

import (
	"fmt"
	"strings"

	"moneta/internal/core"
)

// Granularity is the unit of time a reporting period spans. It is a closed
// set; Parse rejects anything else so the switch statements below can stay
// exhaustive.
type Granularity string

const (
	Daily      Granularity = "daily"
	Weekly     Granularity = "weekly"
	Monthly    Granularity = "monthly"
	ThreeMonth Granularity = "3m"
	SixMonth   Granularity = "6m"
	NineMonth  Granularity = "9m"
	Yearly     Granularity = "yearly"
)

// Granularities lists every valid granularity in display order.
var Granularities = []Granularity{Daily, Weekly, Monthly, ThreeMonth, SixMonth, NineMonth, Yearly}

var ErrUnknownGranularity = fmt.Errorf("%w: unknown granularity", core.ErrValidation)

// Parse converts a wire string into a Granularity.
func Parse(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case Daily, Weekly, Monthly, ThreeMonth, SixMonth, NineMonth, Yearly:
		return g, nil
	}
	return "", ErrUnknownGranularity
}

// months returns the window width in calendar months for month-based
// granularities, 0 otherwise.
func (g Granularity) months() int {
	switch g {
	case Monthly:
		return 1
	case ThreeMonth:
		return 3
	case SixMonth:
		return 6
	case NineMonth:
		return 9
	case Yearly:
		return 12
	}
	return 0
}

// StartOf normalizes an arbitrary date to the canonical start of its
// enclosing period: same day for daily, Monday for weekly, first of the month
// for monthly and the multi-month windows, January 1 for yearly.
func StartOf(g Granularity, ref core.Date) core.Date {
	switch g {
	case Daily:
		return ref
	case Weekly:
		// Monday-start week; Go's Sunday == 0.
		diff := (int(ref.Weekday()) + 6) % 7
		return ref.AddDays(-diff)
	case Monthly, ThreeMonth, SixMonth, NineMonth:
		return core.NewDate(ref.Year(), int(ref.Month()), 1)
	case Yearly:
		return core.NewDate(ref.Year(), 1, 1)
	}
	return ref
}

// Range resolves the half-open [start, end) window for an anchor. The anchor
// is normalized first, so multi-month windows always run N whole calendar
// months from the anchor's month start. They are deliberately not aligned to
// fixed quarter boundaries.
func Range(g Granularity, anchor core.Date) (start, end core.Date) {
	start = StartOf(g, anchor)
	switch g {
	case Daily:
		return start, start.AddDays(1)
	case Weekly:
		return start, start.AddDays(7)
	default:
		return start, start.AddMonths(g.months())
	}
}

// Shift moves the anchor by exactly one period width in the given direction
// (+1 next, -1 previous). The anchor is normalized before shifting: month
// arithmetic on a month-start day never overflows, so Shift(g, Shift(g, a,
// +1), -1) returns StartOf(g, a) for every granularity. Raw month-end anchors
// would normalize through time.Time.AddDate (Jan 31 + 1 month = Mar 2/3);
// normalizing first avoids that lossy path entirely.
func Shift(g Granularity, anchor core.Date, direction int) core.Date {
	start := StartOf(g, anchor)
	switch g {
	case Daily:
		return start.AddDays(direction)
	case Weekly:
		return start.AddDays(7 * direction)
	default:
		return start.AddMonths(g.months() * direction)
	}
}

// Contains reports whether day falls inside the period anchored at anchor.
func Contains(g Granularity, anchor, day core.Date) bool {
	start, end := Range(g, anchor)
	return !day.Before(start.Time) && day.Before(end.Time)
}

// Label builds the human-readable description of a period.
func Label(g Granularity, anchor core.Date) string {
	start, end := Range(g, anchor)
	switch g {
	case Daily:
		return start.Format("Monday, January 2, 2006")
	case Weekly:
		return start.Format("Jan 2, 2006") + " - " + end.AddDays(-1).Format("Jan 2, 2006")
	case Monthly:
		return start.Format("January 2006")
	case ThreeMonth:
		return start.Format("January 2006") + " · 3 months"
	case SixMonth:
		return start.Format("January 2006") + " · 6 months"
	case NineMonth:
		return start.Format("January 2006") + " · 9 months"
	case Yearly:
		return start.Format("2006")
	}
	return ""
}

// DisplayName is the short selector label for a granularity.
func (g Granularity) DisplayName() string {
	switch g {
	case ThreeMonth:
		return "3 Months"
	case SixMonth:
		return "6 Months"
	case NineMonth:
		return "9 Months"
	default:
		return strings.ToUpper(string(g[:1])) + string(g[1:])
	}
}
