package core

import (
	"testing"
	"time"
)

func TestMonthLabels(t *testing.T) {
	labels := MonthLabels(2024)
	if len(labels) != 12 || labels[0] != "January 2024" || labels[11] != "December 2024" {
		t.Fatalf("unexpected labels %v", labels)
	}
	if MonthIndex(2024, "March 2024") != 2 {
		t.Fatal("March should be index 2")
	}
	if MonthIndex(2024, "March 2023") != -1 || MonthIndex(2024, "Smarch 2024") != -1 {
		t.Fatal("labels outside the year must not be found")
	}
}

func TestNavigate(t *testing.T) {
	today := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)

	nav := Navigate(2024, "January 2024", today)
	if nav.Previous != "" || nav.Next != "February 2024" {
		t.Fatalf("unexpected navigation %+v", nav)
	}
	nav = Navigate(2024, "May 2024", today)
	if nav.Previous != "April 2024" || nav.Next != "" {
		t.Fatalf("navigation must stop at the current month: %+v", nav)
	}
	nav = Navigate(2023, "December 2023", today)
	if nav.Previous != "November 2023" || nav.Next != "" {
		t.Fatalf("navigation must stay inside the year: %+v", nav)
	}
}
