// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-pulse/auth"
	"github.com/danielhkuo/quickly-pulse/cliparse"
	"github.com/danielhkuo/quickly-pulse/middleware"
	"github.com/danielhkuo/quickly-pulse/models"
	"github.com/danielhkuo/quickly-pulse/stats"
)

type RoomHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	live *Live
}

func NewRoomHandler(db *sql.DB, cfg cliparse.Config, live *Live) *RoomHandler {
	return &RoomHandler{db: db, cfg: cfg, live: live}
}

// roomSession resolves the {code} path value and writes the error response
// itself when the room does not exist.
func roomSession(w http.ResponseWriter, r *http.Request, db *sql.DB) (models.Session, bool) {
	code := r.PathValue("code")
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "room code is required")
		return models.Session{}, false
	}

	session, err := loadSessionByCode(r.Context(), db, code)
	if errors.Is(err, errNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Room not found")
		return models.Session{}, false
	}
	if err != nil {
		slog.Error("failed to load room", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Session{}, false
	}
	return session, true
}

// GetRoom handles GET /rooms/{code}
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	session, ok := roomSession(w, r, h.db)
	if !ok {
		return
	}

	resp := models.RoomResponse{Session: session}
	if session.ActiveQuestionID != nil {
		q, err := loadQuestion(r.Context(), h.db, session.ID, *session.ActiveQuestionID)
		if err != nil && !errors.Is(err, errNotFound) {
			slog.Error("failed to load active question", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if err == nil {
			resp.Question = &q.Question
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Join handles POST /rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	session, ok := roomSession(w, r, h.db)
	if !ok {
		return
	}
	if !session.IsOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Room is closed")
		return
	}

	token := auth.GenerateRespondentToken()
	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO respondent (token, session_id, created_at)
		VALUES ($1, $2, $3)
	`, token, session.ID, time.Now().UTC())
	if err != nil {
		slog.Error("failed to insert respondent", "error", err, "session_id", session.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join room")
		return
	}

	slog.Info("respondent joined", "session_id", session.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.JoinRoomResponse{
		RespondentToken: token,
	})
}

// SubmitAnswer handles POST /rooms/{code}/answers
// A second submission from the same respondent replaces the first.
func (h *RoomHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	session, ok := roomSession(w, r, h.db)
	if !ok {
		return
	}

	token := r.Header.Get("X-Respondent-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Respondent-Token header required")
		return
	}
	if err := auth.ValidateRespondentToken(token); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid respondent token")
		return
	}

	var req models.SubmitAnswerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := middleware.ValidateStruct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if !session.IsOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Room is closed")
		return
	}

	var registered bool
	err := h.db.QueryRowContext(r.Context(), `
		SELECT EXISTS (SELECT 1 FROM respondent WHERE token = $1 AND session_id = $2)
	`, token, session.ID).Scan(&registered)
	if err != nil {
		slog.Error("failed to query respondent", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !registered {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid respondent token")
		return
	}

	if session.ActiveQuestionID == nil || *session.ActiveQuestionID != req.QuestionID {
		middleware.ErrorResponse(w, http.StatusConflict, "Question is not active")
		return
	}

	q, err := loadQuestion(r.Context(), h.db, session.ID, req.QuestionID)
	if errors.Is(err, errNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to load question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	value, err := normalizeAnswer(q.Question, req.Value)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := upsertAnswer(r.Context(), h.db, q.ID, token, value); err != nil {
		slog.Error("failed to store answer", "error", err, "question_id", q.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit answer")
		return
	}

	h.live.Metrics.AnswersSubmitted.WithLabelValues(q.Type).Inc()
	slog.Info("answer submitted", "question_id", q.ID, "type", q.Type)

	middleware.JSONResponse(w, http.StatusOK, models.SubmitAnswerResponse{
		QuestionID: q.ID,
		Message:    "Answer recorded",
	})
}

// normalizeAnswer converts a submitted value into the form stored for the
// question type.
func normalizeAnswer(q models.Question, value any) (any, error) {
	switch q.Type {
	case models.TypeMCQ:
		choice, ok := value.(string)
		if !ok || !slices.Contains(q.Options, strings.TrimSpace(choice)) {
			return nil, errors.New("value must be one of the question options")
		}
		return strings.TrimSpace(choice), nil

	case models.TypeNumber:
		if n, ok := stats.ParseNumber(value); ok {
			return n, nil
		}
		// Unparseable input is kept and skipped by the summarizer
		text, ok := stats.ScalarText(value)
		if !ok {
			return nil, errors.New("value must be a number")
		}
		return strings.TrimSpace(text), nil

	case models.TypeShort, models.TypeLong:
		text, ok := value.(string)
		if !ok {
			return nil, errors.New("value must be a string")
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, errors.New("value is required")
		}
		return text, nil

	case models.TypePie:
		raw, ok := value.(map[string]any)
		if !ok {
			return nil, errors.New("value must be an object of option to points")
		}
		alloc := make(map[string]float64, len(q.Options))
		for _, option := range q.Options {
			if points, ok := stats.ParseNumber(raw[option]); ok {
				alloc[option] = points
			}
		}
		return alloc, nil

	default:
		return nil, fmt.Errorf("unsupported question type %q", q.Type)
	}
}
