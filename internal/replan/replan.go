package replan

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/example/study-planner/internal/planner"
)

// UserSource lists the users worth re-planning.
type UserSource interface {
	ActiveUserIDs(ctx context.Context) ([]string, error)
}

// Scheduler is the engine operation the job invokes.
type Scheduler interface {
	ScheduleForUser(ctx context.Context, userID string) (planner.RunResult, error)
}

// Replanner re-runs the engine for every active user once a day at a
// configured wall-clock time. Each run appends a fresh set of blocks, so the
// job is opt-in.
type Replanner struct {
	users  UserSource
	engine Scheduler
	log    *zap.Logger
	cron   *cron.Cron
}

func New(users UserSource, engine Scheduler, log *zap.Logger, loc *time.Location) *Replanner {
	return &Replanner{
		users:  users,
		engine: engine,
		log:    log,
		cron:   cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// Start registers the daily job at the given "HH:MM" and starts the cron
// loop.
func (r *Replanner) Start(timeStr string) error {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return err
	}
	if _, err := r.cron.AddFunc(spec, r.runAll); err != nil {
		return err
	}
	r.cron.Start()
	r.log.Info("daily replan scheduled", zap.String("at", timeStr))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (r *Replanner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Replanner) runAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ids, err := r.users.ActiveUserIDs(ctx)
	if err != nil {
		r.log.Error("list users for replan", zap.Error(err))
		return
	}
	for _, id := range ids {
		result, err := r.engine.ScheduleForUser(ctx, id)
		if err != nil {
			r.log.Error("replan failed", zap.String("user_id", id), zap.Error(err))
			continue
		}
		r.log.Info("replan complete",
			zap.String("user_id", id),
			zap.String("outcome", string(result.Outcome)),
			zap.Int("blocks", len(result.Blocks)))
	}
}

// buildDailySpec turns "HH:MM" into a six-field cron spec.
func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
