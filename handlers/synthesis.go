// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-pulse/auth"
	"github.com/danielhkuo/quickly-pulse/cliparse"
	"github.com/danielhkuo/quickly-pulse/middleware"
	"github.com/danielhkuo/quickly-pulse/models"
	"github.com/danielhkuo/quickly-pulse/synthesis"
)

type SynthesisHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	live *Live
}

func NewSynthesisHandler(db *sql.DB, cfg cliparse.Config, live *Live) *SynthesisHandler {
	return &SynthesisHandler{db: db, cfg: cfg, live: live}
}

// Synthesize handles POST /sessions/{id}/questions/{qid}/synthesize
func (h *SynthesisHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	questionID := r.PathValue("qid")
	if sessionID == "" || questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id and question_id are required")
		return
	}

	key := r.Header.Get("X-Presenter-Key")
	if err := auth.ValidatePresenterKey(sessionID, key, h.cfg.PresenterKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid presenter key")
		return
	}

	if !h.live.SynthesisEnabled() {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Synthesis is not configured")
		return
	}

	q, err := loadQuestion(r.Context(), h.db, sessionID, questionID)
	if errors.Is(err, errNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to load question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !synthesis.Supports(q.Type) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Synthesis is only available for text questions")
		return
	}

	answers, err := loadAnswers(r.Context(), h.db, q.ID)
	if err != nil {
		slog.Error("failed to load answers", "error", err, "question_id", q.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	ctrl := h.live.controller(sessionID)
	if q.Synthesis != nil {
		ctrl.Load(q.ID, *q.Synthesis)
	}

	record, err := ctrl.Run(r.Context(), q.ID, models.SynthesisRequest{
		Question: q.Prompt,
		Items:    synthesis.EligibleItems(answerValues(answers)),
		Mode:     synthesis.ModeFor(q.Type),
	})
	outcome := synthesisOutcome(err)
	h.live.Metrics.SynthesisRequests.WithLabelValues(outcome).Inc()

	switch {
	case errors.Is(err, synthesis.ErrInFlight):
		middleware.ErrorResponse(w, http.StatusConflict, "Synthesis already in progress")
		return
	case errors.Is(err, synthesis.ErrNoItems):
		middleware.ErrorResponse(w, http.StatusBadRequest, "No text responses to synthesize")
		return
	case errors.Is(err, synthesis.ErrSuperseded):
		slog.Warn("discarded synthesis for inactive question", "session_id", sessionID, "question_id", q.ID)
		middleware.ErrorResponse(w, http.StatusConflict, "Active question changed during synthesis")
		return
	case err != nil:
		slog.Error("synthesis failed", "error", err, "question_id", q.ID)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Synthesis failed")
		return
	}

	if err := saveSynthesis(r.Context(), h.db, q.ID, record); err != nil {
		slog.Error("failed to save synthesis", "error", err, "question_id", q.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("synthesis stored", "question_id", q.ID, "groups", len(record.Groups), "source_count", record.SourceCount)

	middleware.JSONResponse(w, http.StatusOK, models.SynthesizeResponse{Synthesis: record})
}

func synthesisOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, synthesis.ErrInFlight):
		return "in_flight"
	case errors.Is(err, synthesis.ErrNoItems):
		return "no_items"
	case errors.Is(err, synthesis.ErrSuperseded):
		return "superseded"
	default:
		return "error"
	}
}
