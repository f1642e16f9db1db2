package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/formcheck/internal/batch"
	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/pose"
	"github.com/2beens/formcheck/internal/session"
	"github.com/2beens/formcheck/internal/telemetry/tracing"
	"github.com/2beens/formcheck/pkg"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=analysis_test

type analysisService interface {
	AnalyzeFrame(ctx context.Context, sessionID string, exType exercise.Type, obs pose.Observation) (*AnalyzeResponse, error)
	Reset(ctx context.Context, sessionID string, exType exercise.Type) error
	EndSession(ctx context.Context, sessionID string) error
	Stats(ctx context.Context, sessionID string) (*session.Stats, error)
	AnalyzeBatch(ctx context.Context, params batch.Params) (*batch.Report, error)
}

type AnalyzeRequest struct {
	ExerciseType string           `json:"exercise_type"`
	Observation  pose.Observation `json:"observation"`
}

type BatchRequest struct {
	ExerciseType string        `json:"exercise_type"`
	FPS          float64       `json:"fps,omitempty"`
	Frames       []batch.Frame `json:"frames"`
}

type ResetResponse struct {
	SessionID    string        `json:"session_id"`
	ExerciseType exercise.Type `json:"exercise_type"`
}

type EndSessionResponse struct {
	EndedID string `json:"endedId"`
}

type ExercisesResponse struct {
	Exercises []exercise.Info `json:"exercises"`
}

type Handler struct {
	service analysisService
	// request bodies above this size are rejected
	maxBodyBytes int64
	upgrader     websocket.Upgrader
}

func NewHandler(service analysisService, maxBodyBytes int64) *Handler {
	return &Handler{
		service:      service,
		maxBodyBytes: maxBodyBytes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// origins are already checked by the CORS middleware
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/exercises", h.HandleExercises).Methods("GET", "OPTIONS").Name("list-exercises")
	router.HandleFunc("/sessions/{sid}/analyze", h.HandleAnalyze).Methods("POST", "OPTIONS").Name("analyze-frame")
	router.HandleFunc("/sessions/{sid}/reset/{exercise}", h.HandleReset).Methods("POST", "OPTIONS").Name("reset-exercise")
	router.HandleFunc("/sessions/{sid}/stats", h.HandleStats).Methods("GET", "OPTIONS").Name("session-stats")
	router.HandleFunc("/sessions/{sid}", h.HandleEndSession).Methods("DELETE", "OPTIONS").Name("end-session")
	router.HandleFunc("/ws/sessions/{sid}/stream", h.HandleStream).Methods("GET").Name("stream-session")
	router.HandleFunc("/ws/stream", h.HandleStream).Methods("GET").Name("stream-anonymous")
}

// SetupBatchRoute registers the batch endpoint wrapped with mw (rate limiting).
func (h *Handler) SetupBatchRoute(router *mux.Router, mw ...mux.MiddlewareFunc) {
	var handler http.Handler = http.HandlerFunc(h.HandleBatch)
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	router.Handle("/batch/analyze", handler).Methods("POST", "OPTIONS").Name("batch-analyze")
}

func (h *Handler) HandleExercises(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, ExercisesResponse{Exercises: exercise.Catalogue()}, http.StatusOK)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return errors.New("invalid content type")
	}
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	return json.NewDecoder(body).Decode(v)
}

func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.frame")
	defer span.End()

	sessionID := mux.Vars(r)["sid"]
	if sessionID == "" {
		http.Error(w, "error, session id empty", http.StatusBadRequest)
		return
	}

	var req AnalyzeRequest
	if err := h.decode(w, r, &req); err != nil {
		log.Tracef("analyze frame, decode request: %s", err)
		http.Error(w, "error, invalid analyze request", http.StatusBadRequest)
		return
	}

	exType, err := exercise.ParseType(req.ExerciseType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.service.AnalyzeFrame(ctx, sessionID, exType, req.Observation)
	if err != nil {
		if errors.Is(err, exercise.ErrUnknownExerciseType) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("analyze frame, session [%s] exercise [%s]: %s", sessionID, exType, err)
		http.Error(w, "error, failed to analyze frame", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.reset")
	defer span.End()

	vars := mux.Vars(r)
	sessionID := vars["sid"]
	exType, err := exercise.ParseType(vars["exercise"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Reset(ctx, sessionID, exType); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			http.Error(w, "error, session not found", http.StatusNotFound)
			return
		}
		log.Errorf("reset session [%s] exercise [%s]: %s", sessionID, exType, err)
		http.Error(w, "error, failed to reset", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ResetResponse{SessionID: sessionID, ExerciseType: exType}, http.StatusOK)
}

func (h *Handler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.end")
	defer span.End()

	sessionID := mux.Vars(r)["sid"]
	if err := h.service.EndSession(ctx, sessionID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			http.Error(w, "error, session not found", http.StatusNotFound)
			return
		}
		log.Errorf("end session [%s]: %s", sessionID, err)
		http.Error(w, "error, failed to end session", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, EndSessionResponse{EndedID: sessionID}, http.StatusOK)
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.stats")
	defer span.End()

	sessionID := mux.Vars(r)["sid"]
	stats, err := h.service.Stats(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			http.Error(w, "error, session not found", http.StatusNotFound)
			return
		}
		log.Errorf("get session [%s] stats: %s", sessionID, err)
		http.Error(w, "error, failed to get session stats", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, stats, http.StatusOK)
}

func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analysis.batch")
	defer span.End()

	var req BatchRequest
	if err := h.decode(w, r, &req); err != nil {
		log.Tracef("batch analyze, decode request: %s", err)
		http.Error(w, "error, invalid batch request", http.StatusBadRequest)
		return
	}

	exType, err := exercise.ParseType(req.ExerciseType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.FPS < 0 {
		http.Error(w, "error, fps must not be negative", http.StatusBadRequest)
		return
	}

	report, err := h.service.AnalyzeBatch(ctx, batch.Params{
		ExerciseType: exType,
		FPS:          req.FPS,
		Frames:       req.Frames,
	})
	if err != nil {
		switch {
		case errors.Is(err, batch.ErrTooManyFrames):
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		case errors.Is(err, context.Canceled):
			log.Warnf("batch analyze cancelled: %s", err)
			http.Error(w, "error, batch analysis cancelled", http.StatusServiceUnavailable)
		default:
			log.Errorf("batch analyze [%s], %d frames: %s", exType, len(req.Frames), err)
			http.Error(w, "error, batch analysis failed", http.StatusInternalServerError)
		}
		return
	}

	log.Debugf("batch report %s: %s, %d frames, score %.2f", report.ID, exType, report.TotalFrames, report.OverallFormScore)
	pkg.WriteJSON(w, report, http.StatusCreated)
}
