package admin

import (
	"time"
)

type monthWindow struct {
	Label string
	Start time.Time
	End   time.Time
}

// monthlyWindows returns the last n calendar months including the current
// one, oldest first.
func monthlyWindows(now time.Time, n int) []monthWindow {
	windows := make([]monthWindow, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		windows = append(windows, monthWindow{
			Label: start.Format("Jan"),
			Start: start,
			End:   start.AddDate(0, 1, 0),
		})
	}
	return windows
}
