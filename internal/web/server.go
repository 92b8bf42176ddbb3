package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/study-planner/internal/planner"
)

// Scheduler is the part of the engine the HTTP layer needs.
type Scheduler interface {
	ScheduleForUser(ctx context.Context, userID string) (planner.RunResult, error)
}

type Server struct {
	Engine Scheduler
	Log    *zap.Logger
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/api/schedule/", s.handleSchedule)

	return mux
}

type blockJSON struct {
	UserID          string    `json:"user_id"`
	CourseID        string    `json:"course_id,omitempty"`
	TaskID          string    `json:"task_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	CreatedByEngine bool      `json:"created_by_engine"`
	Color           string    `json:"color"`
}

type failureJSON struct {
	TaskID string `json:"task_id"`
	Error  string `json:"error"`
}

type scheduleResponse struct {
	Message   string        `json:"message,omitempty"`
	Scheduled []blockJSON   `json:"scheduled,omitempty"`
	Failures  []failureJSON `json:"failures,omitempty"`
}

// handleSchedule runs the engine for one user: POST /api/schedule/{userId}.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/api/schedule/")
	if userID == "" || strings.Contains(userID, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing userId parameter"})
		return
	}

	result, err := s.Engine.ScheduleForUser(r.Context(), userID)
	if err != nil {
		s.Log.Error("engine run failed", zap.String("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to run scheduling engine"})
		return
	}

	switch result.Outcome {
	case planner.OutcomeNoPreferences:
		writeJSON(w, http.StatusOK, scheduleResponse{Message: "no preferences found for user"})
		return
	case planner.OutcomeNothingToSchedule:
		writeJSON(w, http.StatusOK, scheduleResponse{Message: "No study blocks scheduled (no tasks or no availability)"})
		return
	}

	if len(result.Blocks) == 0 {
		writeJSON(w, http.StatusOK, scheduleResponse{Message: "No study blocks scheduled (no tasks or no availability)"})
		return
	}

	resp := scheduleResponse{}
	for _, wr := range result.Blocks {
		if wr.Err != nil {
			resp.Failures = append(resp.Failures, failureJSON{TaskID: wr.Block.TaskID, Error: wr.Err.Error()})
			continue
		}
		resp.Scheduled = append(resp.Scheduled, toBlockJSON(wr.Block))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toBlockJSON(b planner.ScheduleBlock) blockJSON {
	return blockJSON{
		UserID:          b.UserID,
		CourseID:        b.CourseID,
		TaskID:          b.TaskID,
		StartTime:       b.StartAt,
		EndTime:         b.EndAt,
		Status:          b.Status,
		CreatedByEngine: b.CreatedByEngine,
		Color:           b.Color,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Start serves h until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("listening", zap.String("addr", addr))
	return srv.ListenAndServe()
}
