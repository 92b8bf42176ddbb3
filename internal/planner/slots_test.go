package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monday is the fixed "now" for slot tests: Monday 2026-01-05.
var monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func clock(t *testing.T, s string) ClockMinutes {
	t.Helper()
	c, err := ParseClock(s)
	require.NoError(t, err)
	return c
}

func window(t *testing.T, day time.Weekday, start, end string) AvailabilityWindow {
	t.Helper()
	return AvailabilityWindow{
		UserID: "u1",
		Day:    day,
		Start:  clock(t, start),
		End:    clock(t, end),
	}
}

func TestGenerateSlotsCarvesSessionsWithBreaks(t *testing.T) {
	prefs := Preferences{SessionMinutes: 60, BreakMinutes: 10, MaxPerDay: 2}
	windows := []AvailabilityWindow{window(t, time.Monday, "09:00", "12:00")}

	slots := GenerateSlots(monday, prefs, windows)

	// 09:00-10:00, 10:10-11:10; 11:20+60 would pass 12:00.
	require.Len(t, slots, 2)
	assert.Equal(t, clock(t, "09:00"), slots[0].Start)
	assert.Equal(t, clock(t, "10:00"), slots[0].End)
	assert.Equal(t, clock(t, "10:10"), slots[1].Start)
	assert.Equal(t, clock(t, "11:10"), slots[1].End)
	for _, s := range slots {
		assert.Equal(t, monday, s.Date)
		assert.Equal(t, time.Monday, s.Day)
	}
}

func TestGenerateSlotsWindowShorterThanSession(t *testing.T) {
	prefs := Preferences{SessionMinutes: 90, BreakMinutes: 0, MaxPerDay: 3}
	windows := []AvailabilityWindow{window(t, time.Monday, "09:00", "10:00")}

	assert.Empty(t, GenerateSlots(monday, prefs, windows))
}

func TestGenerateSlotsExactFit(t *testing.T) {
	prefs := Preferences{SessionMinutes: 30, BreakMinutes: 0, MaxPerDay: 5}
	windows := []AvailabilityWindow{window(t, time.Tuesday, "08:00", "09:00")}

	slots := GenerateSlots(monday, prefs, windows)

	require.Len(t, slots, 2)
	assert.Equal(t, monday.AddDate(0, 0, 1), slots[0].Date)
	assert.Equal(t, clock(t, "08:00"), slots[0].Start)
	assert.Equal(t, clock(t, "08:30"), slots[1].Start)
	assert.Equal(t, clock(t, "09:00"), slots[1].End)
}

func TestGenerateSlotsNoWindows(t *testing.T) {
	prefs := Preferences{SessionMinutes: 60, BreakMinutes: 0, MaxPerDay: 1}
	assert.Empty(t, GenerateSlots(monday, prefs, nil))
}

func TestGenerateSlotsDayThenWindowOrder(t *testing.T) {
	prefs := Preferences{SessionMinutes: 60, BreakMinutes: 0, MaxPerDay: 9}
	windows := []AvailabilityWindow{
		window(t, time.Wednesday, "14:00", "15:00"),
		window(t, time.Monday, "09:00", "10:00"),
		window(t, time.Monday, "18:00", "19:00"),
	}

	slots := GenerateSlots(monday, prefs, windows)

	require.Len(t, slots, 3)
	// Day order first, then window input order within the day.
	assert.Equal(t, monday, slots[0].Date)
	assert.Equal(t, clock(t, "09:00"), slots[0].Start)
	assert.Equal(t, monday, slots[1].Date)
	assert.Equal(t, clock(t, "18:00"), slots[1].Start)
	assert.Equal(t, monday.AddDate(0, 0, 2), slots[2].Date)
}

func TestGenerateSlotsHorizonIsSevenDays(t *testing.T) {
	prefs := Preferences{SessionMinutes: 60, BreakMinutes: 0, MaxPerDay: 9}
	// A Monday window recurs weekly; only the occurrence inside the horizon
	// (today) is expanded, not next Monday.
	windows := []AvailabilityWindow{window(t, time.Monday, "09:00", "10:00")}

	slots := GenerateSlots(monday, prefs, windows)

	require.Len(t, slots, 1)
	assert.Equal(t, monday, slots[0].Date)
}
