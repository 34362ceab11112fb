// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-pulse/auth"
	"github.com/danielhkuo/quickly-pulse/cliparse"
	"github.com/danielhkuo/quickly-pulse/middleware"
	"github.com/danielhkuo/quickly-pulse/models"
)

// Room codes are short, so a collision is possible; retry a few times.
const roomCodeAttempts = 5

type SessionHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	live *Live
}

func NewSessionHandler(db *sql.DB, cfg cliparse.Config, live *Live) *SessionHandler {
	return &SessionHandler{db: db, cfg: cfg, live: live}
}

// authorize checks the presenter key for the {id} path value and writes the
// error response itself. It returns the session id on success.
func (h *SessionHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session_id is required")
		return "", false
	}

	key := r.Header.Get("X-Presenter-Key")
	if err := auth.ValidatePresenterKey(sessionID, key, h.cfg.PresenterKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid presenter key")
		return "", false
	}
	return sessionID, true
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := middleware.ValidateStruct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate session ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	var roomCode string
	for attempt := range roomCodeAttempts {
		roomCode, err = auth.GenerateRoomCode()
		if err != nil {
			break
		}

		var taken bool
		err = h.db.QueryRowContext(r.Context(),
			"SELECT EXISTS (SELECT 1 FROM session WHERE room_code = $1)", roomCode,
		).Scan(&taken)
		if err != nil || !taken {
			break
		}
		slog.Warn("room code collision", "attempt", attempt+1)
		roomCode = ""
	}
	if err != nil || roomCode == "" {
		slog.Error("failed to allocate room code", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO session (id, room_code, title, is_open, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sessionID, roomCode, req.Title, true, time.Now().UTC())
	if err != nil {
		slog.Error("failed to insert session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("session created", "session_id", sessionID, "room_code", roomCode)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID:    sessionID,
		RoomCode:     roomCode,
		PresenterKey: auth.GeneratePresenterKey(sessionID, h.cfg.PresenterKeySalt),
	})
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	session, err := loadSession(r.Context(), h.db, sessionID)
	if errors.Is(err, errNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to load session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	questions, err := loadQuestions(r.Context(), h.db, sessionID)
	if err != nil {
		slog.Error("failed to load questions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionDetailResponse{
		Session:   session,
		Questions: questions,
	})
}

// AddQuestion handles POST /sessions/{id}/questions
func (h *SessionHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req models.AddQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if err := middleware.ValidateStruct(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	options := cleanOptions(req.Options)
	switch req.Type {
	case models.TypeMCQ, models.TypePie:
		if len(options) < 2 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Question must have at least 2 options")
			return
		}
	default:
		options = []string{}
	}

	if _, err := loadSession(r.Context(), h.db, sessionID); err != nil {
		if errors.Is(err, errNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
			return
		}
		slog.Error("failed to load session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var position int
	err := h.db.QueryRowContext(r.Context(), `
		SELECT COUNT(*) FROM question WHERE session_id = $1
	`, sessionID).Scan(&position)
	if err != nil {
		slog.Error("failed to count questions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	questionID, err := auth.GenerateID(12)
	if err != nil {
		slog.Error("failed to generate question ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	encoded, _ := json.Marshal(options)
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO question (id, session_id, position, type, prompt, options, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, questionID, sessionID, position, req.Type, req.Prompt, string(encoded), time.Now().UTC())
	if err != nil {
		slog.Error("failed to insert question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	slog.Info("question added", "session_id", sessionID, "question_id", questionID, "type", req.Type)

	middleware.JSONResponse(w, http.StatusCreated, models.AddQuestionResponse{
		QuestionID: questionID,
	})
}

// cleanOptions trims labels, drops blanks and keeps the first of duplicates.
func cleanOptions(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	options := make([]string, 0, len(raw))
	for _, o := range raw {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		options = append(options, o)
	}
	return options
}

// ActivateQuestion handles POST /sessions/{id}/activate
// An empty question_id clears the active question.
func (h *SessionHandler) ActivateQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req models.ActivateQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var active *string
	if req.QuestionID != "" {
		_, err := loadQuestion(r.Context(), h.db, sessionID, req.QuestionID)
		if errors.Is(err, errNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
			return
		}
		if err != nil {
			slog.Error("failed to load question", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		active = &req.QuestionID
	}

	result, err := h.db.ExecContext(r.Context(), `
		UPDATE session SET active_question_id = $1 WHERE id = $2
	`, active, sessionID)
	if err != nil {
		slog.Error("failed to activate question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	// Outstanding synthesis for the previous question must not land
	h.live.controller(sessionID).SetQuestion(req.QuestionID)

	slog.Info("question activated", "session_id", sessionID, "question_id", req.QuestionID)

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"session_id":         sessionID,
		"active_question_id": active,
	})
}

// CloseSession handles POST /sessions/{id}/close
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	result, err := h.db.ExecContext(r.Context(), `
		UPDATE session SET is_open = $1 WHERE id = $2
	`, false, sessionID)
	if err != nil {
		slog.Error("failed to close session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	slog.Info("session closed", "session_id", sessionID)

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"is_open":    false,
	})
}

// DeleteSession handles DELETE /sessions/{id}
// Rows are removed child-first so the delete does not depend on the driver
// enforcing cascades.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	questions, err := loadQuestions(r.Context(), h.db, sessionID)
	if err != nil {
		slog.Error("failed to load questions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	statements := []string{
		"DELETE FROM answer WHERE question_id IN (SELECT id FROM question WHERE session_id = $1)",
		"DELETE FROM question WHERE session_id = $1",
		"DELETE FROM respondent WHERE session_id = $1",
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(r.Context(), stmt, sessionID); err != nil {
			slog.Error("failed to delete session data", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	result, err := tx.ExecContext(r.Context(), "DELETE FROM session WHERE id = $1", sessionID)
	if err != nil {
		slog.Error("failed to delete session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit delete", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	h.live.forgetSession(sessionID, ids)

	slog.Info("session deleted", "session_id", sessionID, "questions", len(ids))
	w.WriteHeader(http.StatusNoContent)
}
