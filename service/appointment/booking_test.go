package appointment

import (
	"testing"

	"github.com/kbaidoo/EduMeet-server/cmd/models"
)

func TestIsValidClock(t *testing.T) {
	valid := []string{"00:00", "09:00", "13:45", "23:59"}
	for _, clock := range valid {
		if !isValidClock(clock) {
			t.Fatalf("expected %q to be valid", clock)
		}
	}
	invalid := []string{"", "9:00", "24:00", "12:60", "12-30", "12:3", "ab:cd", "120:0"}
	for _, clock := range invalid {
		if isValidClock(clock) {
			t.Fatalf("expected %q to be invalid", clock)
		}
	}
}

func TestWeekdayName(t *testing.T) {
	day, err := weekdayName("2025-09-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day != "Monday" {
		t.Fatalf("expected Monday, got %s", day)
	}

	if _, err := weekdayName("01-09-2025"); err == nil {
		t.Fatalf("expected error for malformed date")
	}
	if _, err := weekdayName("2025-02-30"); err == nil {
		t.Fatalf("expected error for impossible date")
	}
}

func TestValidateSlots(t *testing.T) {
	good := []models.AvailabilitySlot{
		{Day: "Monday", StartTime: "09:00", EndTime: "10:00"},
		{Day: "Wednesday", StartTime: "14:00", EndTime: "16:30"},
	}
	if err := validateSlots(good); err != nil {
		t.Fatalf("expected valid slots, got %v", err)
	}
	if err := validateSlots(nil); err != nil {
		t.Fatalf("empty list should be valid, got %v", err)
	}

	cases := map[string][]models.AvailabilitySlot{
		"weekend day":   {{Day: "Saturday", StartTime: "09:00", EndTime: "10:00"}},
		"unknown day":   {{Day: "Someday", StartTime: "09:00", EndTime: "10:00"}},
		"bad start":     {{Day: "Monday", StartTime: "9:00", EndTime: "10:00"}},
		"bad end":       {{Day: "Monday", StartTime: "09:00", EndTime: "25:00"}},
		"end at start":  {{Day: "Monday", StartTime: "09:00", EndTime: "09:00"}},
		"end too early": {{Day: "Monday", StartTime: "10:00", EndTime: "09:00"}},
		"duplicate day": {
			{Day: "Monday", StartTime: "09:00", EndTime: "10:00"},
			{Day: "Monday", StartTime: "11:00", EndTime: "12:00"},
		},
	}
	for name, slots := range cases {
		if err := validateSlots(slots); err == nil {
			t.Fatalf("expected %s to be rejected", name)
		}
	}
}

func TestWindowForFirstMatch(t *testing.T) {
	slots := []models.AvailabilitySlot{
		{Day: "Monday", StartTime: "09:00", EndTime: "10:00"},
		{Day: "Monday", StartTime: "14:00", EndTime: "15:00"},
		{Day: "Friday", StartTime: "08:00", EndTime: "12:00"},
	}

	window, ok := windowFor(slots, "Monday")
	if !ok {
		t.Fatalf("expected a Monday window")
	}
	if window.StartTime != "09:00" {
		t.Fatalf("expected first Monday window, got start %s", window.StartTime)
	}

	if _, ok := windowFor(slots, "Tuesday"); ok {
		t.Fatalf("expected no Tuesday window")
	}
	if _, ok := windowFor(nil, "Monday"); ok {
		t.Fatalf("expected no window in empty list")
	}
}

func TestSlotWithin(t *testing.T) {
	window := models.AvailabilitySlot{Day: "Monday", StartTime: "09:00", EndTime: "12:00"}

	within := [][2]string{
		{"09:00", "12:00"},
		{"09:00", "09:30"},
		{"10:15", "11:45"},
	}
	for _, slot := range within {
		if !slotWithin(window, slot[0], slot[1]) {
			t.Fatalf("expected %s-%s to fit %s-%s", slot[0], slot[1], window.StartTime, window.EndTime)
		}
	}

	outside := [][2]string{
		{"08:59", "09:30"},
		{"11:00", "12:01"},
		{"08:00", "13:00"},
		{"10:00", "10:00"},
		{"11:00", "10:00"},
	}
	for _, slot := range outside {
		if slotWithin(window, slot[0], slot[1]) {
			t.Fatalf("expected %s-%s to be rejected", slot[0], slot[1])
		}
	}
}

func TestIsDecision(t *testing.T) {
	if !isDecision(models.StatusApproved) || !isDecision(models.StatusRejected) {
		t.Fatalf("approved and rejected must be decision targets")
	}
	for _, status := range []string{models.StatusPending, models.StatusCancelled, "", "confirmed"} {
		if isDecision(status) {
			t.Fatalf("expected %q to be rejected as a decision target", status)
		}
	}
}
