package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/study-planner/internal/db"
	"github.com/example/study-planner/internal/planner"
)

// Store implements planner.Store on Postgres. Wall-clock times are kept as
// "HH:MM:SS" text and weekdays as their English names, matching the records
// the rest of the product writes.
type Store struct{ db *db.DB }

func NewStore(d *db.DB) *Store { return &Store{db: d} }

func (s *Store) Preferences(ctx context.Context, userID string) (planner.Preferences, error) {
	p := planner.Preferences{UserID: userID}
	err := s.db.QueryRow(ctx, `
SELECT preferred_session_length, preferred_break_length, max_classes_per_day
FROM preferences
WHERE user_id=$1`, userID).
		Scan(&p.SessionMinutes, &p.BreakMinutes, &p.MaxPerDay)
	if err != nil {
		if db.IsNotFound(err) {
			return planner.Preferences{}, planner.ErrNoPreferences
		}
		return planner.Preferences{}, db.WrapNotFound(err)
	}
	return p, nil
}

func (s *Store) Availability(ctx context.Context, userID string) ([]planner.AvailabilityWindow, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, day_of_week, start_time, end_time
FROM user_availability
WHERE user_id=$1
ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []planner.AvailabilityWindow
	for rows.Next() {
		var (
			w          planner.AvailabilityWindow
			dayName    string
			start, end string
		)
		if err := rows.Scan(&w.ID, &dayName, &start, &end); err != nil {
			return nil, err
		}
		w.UserID = userID
		if w.Day, err = planner.ParseWeekday(dayName); err != nil {
			return nil, fmt.Errorf("availability %s: %w", w.ID, err)
		}
		if w.Start, err = planner.ParseClock(start); err != nil {
			return nil, fmt.Errorf("availability %s: %w", w.ID, err)
		}
		if w.End, err = planner.ParseClock(end); err != nil {
			return nil, fmt.Errorf("availability %s: %w", w.ID, err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) PendingTasks(ctx context.Context, userID string) ([]planner.Task, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, course_id, title, due_date, estimated_duration, priority, color
FROM tasks
WHERE user_id=$1 AND NOT completed
ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []planner.Task
	for rows.Next() {
		var (
			t        planner.Task
			courseID *string
			due      *time.Time
			duration *int
			color    *string
		)
		if err := rows.Scan(&t.ID, &courseID, &t.Title, &due, &duration, &t.Priority, &color); err != nil {
			return nil, err
		}
		t.UserID = userID
		if courseID != nil {
			t.CourseID = *courseID
		}
		t.DueDate = due
		if duration != nil {
			t.EstimatedMinutes = *duration
		}
		if color != nil {
			t.Color = *color
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Enrollments(ctx context.Context, userID string) ([]planner.Enrollment, error) {
	rows, err := s.db.Query(ctx, `
SELECT course_id, color_override
FROM user_courses
WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []planner.Enrollment
	for rows.Next() {
		var (
			en       planner.Enrollment
			override *string
		)
		if err := rows.Scan(&en.CourseID, &override); err != nil {
			return nil, err
		}
		if override != nil {
			en.ColorOverride = *override
		}
		out = append(out, en)
	}
	return out, rows.Err()
}

func (s *Store) CreateBlock(ctx context.Context, b planner.ScheduleBlock) error {
	var courseID *string
	if b.CourseID != "" {
		courseID = &b.CourseID
	}
	err := s.db.Exec(ctx, `
INSERT INTO study_blocks(id, user_id, course_id, task_id, start_time, end_time, status, created_by_engine, color)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		uuid.New().String(), b.UserID, courseID, b.TaskID, b.StartAt, b.EndAt, b.Status, b.CreatedByEngine, b.Color)
	if err != nil {
		return fmt.Errorf("insert study block: %w", err)
	}
	return nil
}

// ActiveUserIDs lists every user with a preferences record; the replanner
// iterates over it for the daily run.
func (s *Store) ActiveUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id FROM preferences ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

var _ planner.Store = (*Store)(nil)
