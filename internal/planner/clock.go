package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockMinutes is a same-day wall-clock time expressed as minutes after
// midnight. Availability windows and slots do all their arithmetic in it.
type ClockMinutes int

// ParseClock parses "HH:MM" or "HH:MM:SS". Seconds are accepted and dropped;
// the engine works at minute granularity.
func ParseClock(s string) (ClockMinutes, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock time %q (want HH:MM or HH:MM:SS)", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid second in %q", s)
		}
	}
	return ClockMinutes(h*60 + m), nil
}

func (c ClockMinutes) Add(mins int) ClockMinutes {
	return c + ClockMinutes(mins)
}

// On anchors the wall-clock time to a calendar date.
func (c ClockMinutes) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(c) * time.Minute)
}

// String renders "HH:MM:SS", the format the datastore keeps times in.
func (c ClockMinutes) String() string {
	return fmt.Sprintf("%02d:%02d:00", int(c)/60, int(c)%60)
}

var weekdaysByName = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// ParseWeekday maps a stored day name ("Monday") to its time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	d, ok := weekdaysByName[strings.TrimSpace(name)]
	if !ok {
		return 0, fmt.Errorf("invalid day of week %q", name)
	}
	return d, nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
