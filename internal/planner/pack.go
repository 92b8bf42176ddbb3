package planner

// Pack assigns each task, in the given order, to the earliest slot with
// remaining capacity, respecting the per-day cap. A single cursor moves
// left-to-right over the slot arena and never backs up: a slot skipped for
// one task is gone for all later tasks. Placing a task shrinks the hosting
// slot's start by the task's duration plus the break, so the same slot can
// host further tasks while capacity remains and placed intervals never
// overlap. Tasks that find no capacity are simply left out.
func Pack(slots []Slot, tasks []Task, prefs Preferences, overrides map[string]string) []ScheduleBlock {
	var blocks []ScheduleBlock

	cursor := 0
	placedPerDay := make(map[string]int)

	for _, task := range tasks {
		duration := task.EstimatedMinutes
		if duration <= 0 {
			duration = prefs.SessionMinutes
		}

		for cursor < len(slots) {
			slot := &slots[cursor]
			day := dateKey(slot.Date)

			if placedPerDay[day] >= prefs.MaxPerDay {
				cursor++
				continue
			}
			if slot.remaining() < duration {
				cursor++
				continue
			}

			blocks = append(blocks, ScheduleBlock{
				UserID:          task.UserID,
				CourseID:        task.CourseID,
				TaskID:          task.ID,
				StartAt:         slot.Start.On(slot.Date),
				EndAt:           slot.Start.Add(duration).On(slot.Date),
				Status:          StatusScheduled,
				CreatedByEngine: true,
				Color:           blockColor(task, overrides),
			})
			slot.Start = slot.Start.Add(duration + prefs.BreakMinutes)
			placedPerDay[day]++
			break
		}
	}
	return blocks
}

// blockColor resolves course override, then task color, then the default.
func blockColor(task Task, overrides map[string]string) string {
	if task.CourseID != "" {
		if c := overrides[task.CourseID]; c != "" {
			return c
		}
	}
	if task.Color != "" {
		return task.Color
	}
	return defaultColor
}
