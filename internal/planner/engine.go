package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoPreferences is returned by Store.Preferences when the user has no
// preferences record. The engine turns it into a no-op outcome rather than a
// failure.
var ErrNoPreferences = errors.New("no preferences for user")

// Store is the engine's data-access boundary. Reads must be side-effect free;
// CreateBlock persists a single block.
type Store interface {
	Preferences(ctx context.Context, userID string) (Preferences, error)
	Availability(ctx context.Context, userID string) ([]AvailabilityWindow, error)
	PendingTasks(ctx context.Context, userID string) ([]Task, error)
	Enrollments(ctx context.Context, userID string) ([]Enrollment, error)
	CreateBlock(ctx context.Context, block ScheduleBlock) error
}

// Outcome classifies a run that did not fail outright.
type Outcome string

const (
	OutcomeScheduled         Outcome = "scheduled"
	OutcomeNoPreferences     Outcome = "no_preferences"
	OutcomeNothingToSchedule Outcome = "nothing_to_schedule"
)

// WriteResult is the persist outcome for one planned block. Err is nil when
// the block was written.
type WriteResult struct {
	Block ScheduleBlock
	Err   error
}

// RunResult is one engine invocation's report: the outcome and, for a
// scheduled run, every planned block with its individual write result.
type RunResult struct {
	Outcome Outcome
	Blocks  []WriteResult
}

// Written returns the blocks that persisted successfully.
func (r RunResult) Written() []ScheduleBlock {
	var out []ScheduleBlock
	for _, wr := range r.Blocks {
		if wr.Err == nil {
			out = append(out, wr.Block)
		}
	}
	return out
}

// Failed returns the write results that did not persist.
func (r RunResult) Failed() []WriteResult {
	var out []WriteResult
	for _, wr := range r.Blocks {
		if wr.Err != nil {
			out = append(out, wr)
		}
	}
	return out
}

// Engine runs the loader -> slot generator -> packer pipeline once per call.
// It holds no state across invocations.
type Engine struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

type Option func(*Engine)

// WithNow overrides the engine's clock. Used by the server to pin the
// configured timezone and by tests to pin "now".
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store Store, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{store: store, log: log, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ScheduleForUser loads the user's inputs, packs pending tasks into the next
// seven days of availability and persists the resulting blocks one at a time.
// Input reads run concurrently and join all-or-nothing; any read failure
// aborts the run before anything is written. Individual write failures do not
// stop the remaining writes and are reported per block in the result.
func (e *Engine) ScheduleForUser(ctx context.Context, userID string) (RunResult, error) {
	var (
		prefs       Preferences
		windows     []AvailabilityWindow
		tasks       []Task
		enrollments []Enrollment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := e.store.Preferences(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch preferences: %w", err)
		}
		prefs = p
		return nil
	})
	g.Go(func() error {
		w, err := e.store.Availability(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch availability: %w", err)
		}
		windows = w
		return nil
	})
	g.Go(func() error {
		t, err := e.store.PendingTasks(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch tasks: %w", err)
		}
		tasks = t
		return nil
	})
	g.Go(func() error {
		en, err := e.store.Enrollments(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch enrollments: %w", err)
		}
		enrollments = en
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrNoPreferences) {
			e.log.Warn("no preferences, skipping run", zap.String("user_id", userID))
			return RunResult{Outcome: OutcomeNoPreferences}, nil
		}
		return RunResult{}, err
	}

	if err := prefs.Validate(); err != nil {
		return RunResult{}, fmt.Errorf("invalid preferences for user %s: %w", userID, err)
	}

	if len(tasks) == 0 || len(windows) == 0 {
		e.log.Info("nothing to schedule",
			zap.String("user_id", userID),
			zap.Int("tasks", len(tasks)),
			zap.Int("windows", len(windows)))
		return RunResult{Outcome: OutcomeNothingToSchedule}, nil
	}

	now := e.now()
	slots := GenerateSlots(now, prefs, windows)
	blocks := Pack(slots, orderTasks(tasks), prefs, colorOverrides(enrollments))

	e.log.Info("packing done",
		zap.String("user_id", userID),
		zap.Int("slots", len(slots)),
		zap.Int("tasks", len(tasks)),
		zap.Int("blocks", len(blocks)))

	results := make([]WriteResult, 0, len(blocks))
	for _, b := range blocks {
		err := e.store.CreateBlock(ctx, b)
		if err != nil {
			e.log.Error("persist study block",
				zap.String("user_id", userID),
				zap.String("task_id", b.TaskID),
				zap.Error(err))
		} else {
			e.log.Info("study block created",
				zap.String("user_id", userID),
				zap.String("task_id", b.TaskID),
				zap.Time("start", b.StartAt),
				zap.Time("end", b.EndAt))
		}
		results = append(results, WriteResult{Block: b, Err: err})
	}

	return RunResult{Outcome: OutcomeScheduled, Blocks: results}, nil
}

func colorOverrides(enrollments []Enrollment) map[string]string {
	m := make(map[string]string, len(enrollments))
	for _, en := range enrollments {
		if en.ColorOverride != "" {
			m[en.CourseID] = en.ColorOverride
		}
	}
	return m
}
