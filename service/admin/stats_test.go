package admin

import (
	"testing"
	"time"
)

func TestMonthlyWindows(t *testing.T) {
	now := time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)
	windows := monthlyWindows(now, 6)

	if len(windows) != 6 {
		t.Fatalf("expected 6 windows, got %d", len(windows))
	}
	if windows[0].Label != "Apr" || windows[5].Label != "Sep" {
		t.Fatalf("expected Apr..Sep, got %s..%s", windows[0].Label, windows[5].Label)
	}
	for _, w := range windows {
		if !w.End.Equal(w.Start.AddDate(0, 1, 0)) {
			t.Fatalf("window %s is not one calendar month", w.Label)
		}
	}
	// contiguous, no gaps
	for i := 1; i < len(windows); i++ {
		if !windows[i].Start.Equal(windows[i-1].End) {
			t.Fatalf("gap between %s and %s", windows[i-1].Label, windows[i].Label)
		}
	}
}
