package planner

import "sort"

// orderTasks returns tasks in packing order: earliest due date first, tasks
// without a due date after all dated ones, ties broken by priority (higher
// first) and then task ID so the order is a deterministic total order.
func orderTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return taskLess(out[i], out[j])
	})
	return out
}

func taskLess(a, b Task) bool {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		// fall through to priority
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	default:
		if !a.DueDate.Equal(*b.DueDate) {
			return a.DueDate.Before(*b.DueDate)
		}
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.ID < b.ID
}
