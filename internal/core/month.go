package core

import (
	"time"
)

const monthLayout = "January 2006"

// MonthLabel is the identifier of a calendar month, e.g. "March 2024".
func MonthLabel(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(monthLayout)
}

// MonthLabels returns the 12 identifiers of year in calendar order.
func MonthLabels(year int) []string {
	labels := make([]string, 12)
	for i := range labels {
		labels[i] = MonthLabel(year, time.Month(i+1))
	}
	return labels
}

// ParseMonthLabel returns the year and month of an identifier.
func ParseMonthLabel(label string) (int, time.Month, error) {
	t, err := time.Parse(monthLayout, label)
	if err != nil {
		return 0, 0, ErrInvalidMonth
	}
	return t.Year(), t.Month(), nil
}

// MonthIndex returns the position of label within the 12 months of year, or -1.
func MonthIndex(year int, label string) int {
	y, m, err := ParseMonthLabel(label)
	if err != nil || y != year {
		return -1
	}
	return int(m) - 1
}

// MonthNavigation describes the months reachable from the selected one.
type MonthNavigation struct {
	Selected string `json:"selected"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
}

// Navigate computes previous and next labels for selected. Navigation stays inside
// year and never moves past the month of today.
func Navigate(year int, selected string, today time.Time) MonthNavigation {
	nav := MonthNavigation{Selected: selected}
	idx := MonthIndex(year, selected)
	if idx < 0 {
		return nav
	}
	if idx > 0 {
		nav.Previous = MonthLabel(year, time.Month(idx))
	}
	last := 11
	if today.Year() == year {
		last = int(today.Month()) - 1
	} else if today.Year() < year {
		last = -1
	}
	if idx < last {
		nav.Next = MonthLabel(year, time.Month(idx+2))
	}
	return nav
}
