package planner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu sync.Mutex

	prefs    Preferences
	prefsErr error

	windows    []AvailabilityWindow
	windowsErr error

	tasks    []Task
	tasksErr error

	enrollments []Enrollment
	enrollErr   error

	createErr func(b ScheduleBlock) error
	created   []ScheduleBlock
}

func (f *fakeStore) Preferences(ctx context.Context, userID string) (Preferences, error) {
	return f.prefs, f.prefsErr
}

func (f *fakeStore) Availability(ctx context.Context, userID string) ([]AvailabilityWindow, error) {
	return f.windows, f.windowsErr
}

func (f *fakeStore) PendingTasks(ctx context.Context, userID string) ([]Task, error) {
	return f.tasks, f.tasksErr
}

func (f *fakeStore) Enrollments(ctx context.Context, userID string) ([]Enrollment, error) {
	return f.enrollments, f.enrollErr
}

func (f *fakeStore) CreateBlock(ctx context.Context, b ScheduleBlock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		if err := f.createErr(b); err != nil {
			return err
		}
	}
	f.created = append(f.created, b)
	return nil
}

func testEngine(store Store) *Engine {
	return NewEngine(store, zap.NewNop(), WithNow(func() time.Time { return monday }))
}

func validPrefs() Preferences {
	return Preferences{UserID: "u1", SessionMinutes: 60, BreakMinutes: 10, MaxPerDay: 2}
}

func TestEngineNoPreferencesIsNoOp(t *testing.T) {
	store := &fakeStore{prefsErr: ErrNoPreferences}
	result, err := testEngine(store).ScheduleForUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, OutcomeNoPreferences, result.Outcome)
	assert.Empty(t, result.Blocks)
	assert.Empty(t, store.created)
}

func TestEngineReadFailurePropagates(t *testing.T) {
	boom := errors.New("connection reset")
	store := &fakeStore{
		prefs:      validPrefs(),
		windowsErr: boom,
		tasks:      []Task{task("t1", 1, 60, nil)},
	}

	_, err := testEngine(store).ScheduleForUser(context.Background(), "u1")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.created, "nothing must be written after a failed read")
}

func TestEngineNothingToSchedule(t *testing.T) {
	tests := []struct {
		name    string
		windows []AvailabilityWindow
		tasks   []Task
	}{
		{name: "no availability", tasks: []Task{task("t1", 1, 60, nil), task("t2", 2, 60, nil)}},
		{name: "no tasks", windows: []AvailabilityWindow{{Day: time.Monday, Start: 9 * 60, End: 11 * 60}}},
		{name: "neither"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{prefs: validPrefs(), windows: tt.windows, tasks: tt.tasks}
			result, err := testEngine(store).ScheduleForUser(context.Background(), "u1")

			require.NoError(t, err)
			assert.Equal(t, OutcomeNothingToSchedule, result.Outcome)
			assert.Empty(t, store.created)
		})
	}
}

func TestEngineInvalidPreferences(t *testing.T) {
	store := &fakeStore{
		prefs:   Preferences{UserID: "u1", SessionMinutes: 0, MaxPerDay: 1},
		windows: []AvailabilityWindow{{Day: time.Monday, Start: 9 * 60, End: 11 * 60}},
		tasks:   []Task{task("t1", 1, 60, nil)},
	}

	_, err := testEngine(store).ScheduleForUser(context.Background(), "u1")
	assert.Error(t, err)
}

func TestEngineSchedulesAndPersists(t *testing.T) {
	dueDate := due(monday.AddDate(0, 0, 1))
	store := &fakeStore{
		prefs: validPrefs(),
		windows: []AvailabilityWindow{
			{Day: time.Monday, Start: 9 * 60, End: 13 * 60},
		},
		tasks: []Task{
			task("t-low", 3, 60, dueDate),
			task("t-high", 5, 60, dueDate),
		},
		enrollments: []Enrollment{{CourseID: "course-1", ColorOverride: "#123456"}},
	}

	result, err := testEngine(store).ScheduleForUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, OutcomeScheduled, result.Outcome)
	require.Len(t, result.Blocks, 2)
	assert.Equal(t, "t-high", result.Blocks[0].Block.TaskID)
	assert.Equal(t, "t-low", result.Blocks[1].Block.TaskID)
	for _, wr := range result.Blocks {
		assert.NoError(t, wr.Err)
	}
	assert.Equal(t, len(result.Blocks), len(store.created))
	assert.Len(t, result.Written(), 2)
	assert.Empty(t, result.Failed())
}

func TestEngineWriteFailureIsPerBlock(t *testing.T) {
	dueDate := due(monday.AddDate(0, 0, 1))
	boom := errors.New("insert failed")
	store := &fakeStore{
		prefs: validPrefs(),
		windows: []AvailabilityWindow{
			{Day: time.Monday, Start: 9 * 60, End: 13 * 60},
		},
		tasks: []Task{
			task("t1", 5, 60, dueDate),
			task("t2", 3, 60, dueDate),
		},
		createErr: func(b ScheduleBlock) error {
			if b.TaskID == "t1" {
				return boom
			}
			return nil
		},
	}

	result, err := testEngine(store).ScheduleForUser(context.Background(), "u1")

	require.NoError(t, err, "write failures are reported per block, not as a run failure")
	require.Len(t, result.Blocks, 2)

	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "t1", failed[0].Block.TaskID)
	assert.ErrorIs(t, failed[0].Err, boom)

	written := result.Written()
	require.Len(t, written, 1)
	assert.Equal(t, "t2", written[0].TaskID)
	require.Len(t, store.created, 1)
}

func TestEngineIdempotentOnUnchangedSnapshot(t *testing.T) {
	dueDate := due(monday.AddDate(0, 0, 2))
	newStore := func() *fakeStore {
		return &fakeStore{
			prefs: validPrefs(),
			windows: []AvailabilityWindow{
				{Day: time.Monday, Start: 9 * 60, End: 12 * 60},
				{Day: time.Wednesday, Start: 14 * 60, End: 18 * 60},
			},
			tasks: []Task{
				task("t1", 1, 60, dueDate),
				task("t2", 4, 45, dueDate),
				task("t3", 4, 60, nil),
			},
		}
	}

	first, err := testEngine(newStore()).ScheduleForUser(context.Background(), "u1")
	require.NoError(t, err)
	second, err := testEngine(newStore()).ScheduleForUser(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
