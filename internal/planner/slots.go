package planner

import "time"

// GenerateSlots expands recurring weekly availability into dated candidate
// slots over the planning horizon, starting on now's calendar date. Within a
// window, sessions are carved back to back with a break between them; a
// session that would cross the window end is not carved at all.
//
// Slot order is day 0..6, then window input order, then chronological. The
// packer relies on this order and never reshuffles it.
func GenerateSlots(now time.Time, prefs Preferences, windows []AvailabilityWindow) []Slot {
	step := prefs.SessionMinutes + prefs.BreakMinutes

	var slots []Slot
	for i := 0; i < horizonDays; i++ {
		date := midnight(now.AddDate(0, 0, i))
		day := date.Weekday()
		for _, w := range windows {
			if w.Day != day {
				continue
			}
			for start := w.Start; start.Add(prefs.SessionMinutes) <= w.End; start = start.Add(step) {
				slots = append(slots, Slot{
					Date:  date,
					Day:   day,
					Start: start,
					End:   start.Add(prefs.SessionMinutes),
				})
			}
		}
	}
	return slots
}
