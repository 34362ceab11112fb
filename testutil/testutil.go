// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-pulse/auth"
	"github.com/danielhkuo/quickly-pulse/cliparse"
	"github.com/danielhkuo/quickly-pulse/db"
)

// TestPresenterSalt signs presenter keys in tests
const TestPresenterSalt = "test-presenter-salt"

// SetupTestDB opens a private in-memory sqlite database with the full schema.
// It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := db.Open("sqlite", url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseType:     "sqlite",
		DatabaseURL:      ":memory:",
		PresenterKeySalt: TestPresenterSalt,
	}
}

// CreateTestSession inserts an open session and returns its ID, presenter key
// and room code.
func CreateTestSession(t *testing.T, conn *sql.DB, cfg cliparse.Config) (sessionID, presenterKey, roomCode string) {
	t.Helper()

	sessionID, _ = auth.GenerateID(16)
	roomCode, err := auth.GenerateRoomCode()
	if err != nil {
		t.Fatalf("Failed to generate room code: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO session (id, room_code, title, is_open, created_at)
		VALUES ($1, $2, 'Test Session', $3, $4)
	`, sessionID, roomCode, true, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return sessionID, auth.GeneratePresenterKey(sessionID, cfg.PresenterKeySalt), roomCode
}

// AddTestQuestion adds a question at the end of the session and returns its ID.
// When activate is true it also becomes the session's active question.
func AddTestQuestion(t *testing.T, conn *sql.DB, sessionID, qType, prompt string, options []string, activate bool) string {
	t.Helper()

	if options == nil {
		options = []string{}
	}
	encoded, _ := json.Marshal(options)

	var position int
	if err := conn.QueryRow("SELECT COUNT(*) FROM question WHERE session_id = $1", sessionID).Scan(&position); err != nil {
		t.Fatalf("Failed to count questions: %v", err)
	}

	questionID, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO question (id, session_id, position, type, prompt, options, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, questionID, sessionID, position, qType, prompt, string(encoded), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	if activate {
		if _, err := conn.Exec("UPDATE session SET active_question_id = $1 WHERE id = $2", questionID, sessionID); err != nil {
			t.Fatalf("Failed to activate test question: %v", err)
		}
	}
	return questionID
}

// CreateTestRespondent registers a respondent for a session and returns the token
func CreateTestRespondent(t *testing.T, conn *sql.DB, sessionID string) string {
	t.Helper()

	token := auth.GenerateRespondentToken()
	_, err := conn.Exec(`
		INSERT INTO respondent (token, session_id, created_at)
		VALUES ($1, $2, $3)
	`, token, sessionID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test respondent: %v", err)
	}
	return token
}

// SubmitTestAnswer writes an answer row directly. Rows are spaced a
// millisecond apart so arrival order follows call order.
func SubmitTestAnswer(t *testing.T, conn *sql.DB, questionID, respondentID string, value any) {
	t.Helper()

	encoded, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("Failed to encode test answer: %v", err)
	}
	time.Sleep(time.Millisecond)
	now := time.Now().UTC()
	_, err = conn.Exec(`
		INSERT INTO answer (question_id, respondent_id, value, created_at, submitted_at)
		VALUES ($1, $2, $3, $4, $4)
	`, questionID, respondentID, string(encoded), now)
	if err != nil {
		t.Fatalf("Failed to create test answer: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
