// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/quickly-pulse/cliparse"
	"github.com/danielhkuo/quickly-pulse/layout"
	"github.com/danielhkuo/quickly-pulse/middleware"
	"github.com/danielhkuo/quickly-pulse/models"
	"github.com/danielhkuo/quickly-pulse/stats"
	"github.com/danielhkuo/quickly-pulse/synthesis"
	"github.com/danielhkuo/quickly-pulse/words"
)

// ResultsTopTerms is how many terms the word view shows.
const ResultsTopTerms = 90

type ResultsHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	live *Live
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config, live *Live) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg, live: live}
}

// roomQuestion resolves the question a results request is about: the
// question_id query parameter, or the room's active question.
func (h *ResultsHandler) roomQuestion(w http.ResponseWriter, r *http.Request) (models.Session, storedQuestion, bool) {
	session, ok := roomSession(w, r, h.db)
	if !ok {
		return models.Session{}, storedQuestion{}, false
	}

	questionID := r.URL.Query().Get("question_id")
	if questionID == "" && session.ActiveQuestionID != nil {
		questionID = *session.ActiveQuestionID
	}
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusNotFound, "No active question")
		return models.Session{}, storedQuestion{}, false
	}

	q, err := loadQuestion(r.Context(), h.db, session.ID, questionID)
	if errors.Is(err, errNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return models.Session{}, storedQuestion{}, false
	}
	if err != nil {
		slog.Error("failed to load question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Session{}, storedQuestion{}, false
	}
	return session, q, true
}

// GetResults handles GET /rooms/{code}/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	session, q, ok := h.roomQuestion(w, r)
	if !ok {
		return
	}

	answers, err := loadAnswers(r.Context(), h.db, q.ID)
	if err != nil {
		slog.Error("failed to load answers", "error", err, "question_id", q.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	done := h.live.Metrics.TimeRecompute(q.Type)
	resp := models.ResultsResponse{
		Question:      q.Question,
		ResponseCount: len(answers),
	}

	switch q.Type {
	case models.TypeMCQ:
		resp.Choices = stats.TallyChoices(q.Options, answers)
	case models.TypePie:
		resp.Allocations = stats.TallyAllocations(q.Options, answers)
	case models.TypeNumber:
		view := stats.View(stats.Summarize(answerValues(answers)))
		resp.Numeric = &view
	case models.TypeShort, models.TypeLong:
		eligible := synthesis.EligibleItems(answerValues(answers))
		resp.Words = words.Frequencies(eligible, ResultsTopTerms)
		resp.EligibleCount = len(eligible)

		ctrl := h.live.controller(session.ID)
		if q.Synthesis != nil {
			ctrl.Load(q.ID, *q.Synthesis)
		}
		if record, ok := ctrl.Record(q.ID); ok {
			resp.Synthesis = &record
			resp.Stale = ctrl.Stale(q.ID, len(eligible))
		}
		resp.Synthesizing = ctrl.InFlight() && ctrl.Question() == q.ID
		resp.SynthesisErr = ctrl.Err(q.ID)
	}
	done()

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetCards handles GET /rooms/{code}/cards?width=&height=&canvas=
// Each canvas keeps its own placements, so a presenter screen and a phone
// view of the same question do not disturb each other.
func (h *ResultsHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	_, q, ok := h.roomQuestion(w, r)
	if !ok {
		return
	}
	if !synthesis.Supports(q.Type) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Cards are only available for text questions")
		return
	}

	query := r.URL.Query()
	width, err := optionalInt(query.Get("width"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "width must be a non-negative integer")
		return
	}
	height, err := optionalInt(query.Get("height"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "height must be a non-negative integer")
		return
	}
	name := strings.TrimSpace(query.Get("canvas"))
	if name == "" {
		name = DefaultCanvas
	}

	answers, err := loadAnswers(r.Context(), h.db, q.ID)
	if err != nil {
		slog.Error("failed to load answers", "error", err, "question_id", q.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	items := make([]layout.Item, 0, len(answers))
	for _, a := range answers {
		if text, ok := a.Value.(string); ok {
			items = append(items, layout.Item{ID: a.ID, Text: text})
		}
	}

	c, err := h.live.canvas(q.ID, name)
	if errors.Is(err, errTooManyCanvases) {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("At most %d named canvases per question", MaxCanvases))
		return
	}
	c.mu.Lock()
	done := h.live.Metrics.TimeRecompute("cards")
	if width > 0 && height > 0 {
		c.engine.Resize(width, height)
	}
	c.engine.Update(items)
	result := c.engine.Recompute()
	done()

	size := c.engine.Size()
	resp := models.CardsResponse{
		QuestionID: q.ID,
		State:      c.engine.State().String(),
		Width:      size.Width,
		Height:     size.Height,
		Cards:      c.engine.Cards(),
	}
	c.mu.Unlock()

	if result.Overlapping > 0 {
		h.live.Metrics.OverlapFallbacks.Add(float64(result.Overlapping))
		slog.Warn("layout fell back to overlapping cards",
			"question_id", q.ID, "canvas", name, "overlapping", result.Overlapping, "cards", len(resp.Cards))
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
