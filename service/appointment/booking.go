package appointment

import (
	"fmt"
	"time"

	"github.com/kbaidoo/EduMeet-server/cmd/models"
)

// Bookable weekdays. Weekend days are never valid availability.
var validDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func isValidDay(day string) bool {
	for _, d := range validDays {
		if d == day {
			return true
		}
	}
	return false
}

// isValidClock accepts only zero-padded 24h "HH:mm". Fixed width means plain
// string comparison orders times correctly everywhere else.
func isValidClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	hh := s[:2]
	mm := s[3:]
	for _, c := range hh + mm {
		if c < '0' || c > '9' {
			return false
		}
	}
	return hh <= "23" && mm <= "59"
}

// weekdayName resolves a "2006-01-02" date to its day name.
func weekdayName(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return t.Weekday().String(), nil
}

// validateSlots checks a replacement availability list before it is written.
// Duplicate days are rejected: lookup is first-match per day, so a second
// window for the same day could never be booked anyway.
func validateSlots(slots []models.AvailabilitySlot) error {
	seen := make(map[string]bool, len(slots))
	for _, slot := range slots {
		if !isValidDay(slot.Day) {
			return fmt.Errorf("invalid day: %q", slot.Day)
		}
		if !isValidClock(slot.StartTime) {
			return fmt.Errorf("invalid start time format (HH:mm): %q", slot.StartTime)
		}
		if !isValidClock(slot.EndTime) {
			return fmt.Errorf("invalid end time format (HH:mm): %q", slot.EndTime)
		}
		if slot.EndTime <= slot.StartTime {
			return fmt.Errorf("end time must be after start time on %s", slot.Day)
		}
		if seen[slot.Day] {
			return fmt.Errorf("duplicate availability for %s", slot.Day)
		}
		seen[slot.Day] = true
	}
	return nil
}

// windowFor returns the first window matching the weekday name.
func windowFor(slots []models.AvailabilitySlot, day string) (models.AvailabilitySlot, bool) {
	for _, slot := range slots {
		if slot.Day == day {
			return slot, true
		}
	}
	return models.AvailabilitySlot{}, false
}

// slotWithin reports whether [start, end) is fully contained in the window.
func slotWithin(window models.AvailabilitySlot, start, end string) bool {
	return start < end && window.StartTime <= start && end <= window.EndTime
}

// isDecision reports whether a status is a legal target for the teacher
// transition. Cancellation is student-only and handled separately.
func isDecision(status string) bool {
	return status == models.StatusApproved || status == models.StatusRejected
}
