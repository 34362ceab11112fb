// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-pulse/models"
	tu "github.com/danielhkuo/quickly-pulse/testutil"
)

func TestGetRoom(t *testing.T) {
	db := tu.SetupTestDB(t)
	cfg := tu.GetTestConfig()
	handler := NewRoomHandler(db, cfg, newTestLive(nil))
	sessionID, _, roomCode := tu.CreateTestSession(t, db, cfg)

	get := func(code string) *httptest.ResponseRecorder {
		req := tu.MakeRequest("GET", "/rooms/"+code, nil, nil)
		req.SetPathValue("code", code)
		w := httptest.NewRecorder()
		handler.GetRoom(w, req)
		return w
	}

	t.Run("no active question", func(t *testing.T) {
		w := get(roomCode)
		tu.AssertStatus(t, w, http.StatusOK)

		var resp models.RoomResponse
		tu.AssertJSON(t, w, &resp)
		assert.Equal(t, sessionID, resp.Session.ID)
		assert.Nil(t, resp.Question)
	})

	t.Run("active question, code in any case", func(t *testing.T) {
		questionID := tu.AddTestQuestion(t, db, sessionID, "mcq", "Pick", []string{"A", "B"}, true)

		w := get(" " + strings.ToLower(roomCode) + " ")
		tu.AssertStatus(t, w, http.StatusOK)

		var resp models.RoomResponse
		tu.AssertJSON(t, w, &resp)
		require.NotNil(t, resp.Question)
		assert.Equal(t, questionID, resp.Question.ID)
		assert.Equal(t, []string{"A", "B"}, resp.Question.Options)
	})

	t.Run("unknown room", func(t *testing.T) {
		tu.AssertStatus(t, get("ZZZZZZ"), http.StatusNotFound)
	})
}

func TestJoin(t *testing.T) {
	db := tu.SetupTestDB(t)
	cfg := tu.GetTestConfig()
	handler := NewRoomHandler(db, cfg, newTestLive(nil))
	sessionID, _, roomCode := tu.CreateTestSession(t, db, cfg)

	join := func() *httptest.ResponseRecorder {
		req := tu.MakeRequest("POST", "/rooms/"+roomCode+"/join", nil, nil)
		req.SetPathValue("code", roomCode)
		w := httptest.NewRecorder()
		handler.Join(w, req)
		return w
	}

	w := join()
	tu.AssertStatus(t, w, http.StatusCreated)
	var resp models.JoinRoomResponse
	tu.AssertJSON(t, w, &resp)
	_, err := uuid.Parse(resp.RespondentToken)
	assert.NoError(t, err)

	_, err = db.Exec("UPDATE session SET is_open = $1 WHERE id = $2", false, sessionID)
	require.NoError(t, err)
	tu.AssertStatus(t, join(), http.StatusConflict)
}

// answerFixture is an open session with one active question and a joined
// respondent.
type answerFixture struct {
	handler    *RoomHandler
	live       *Live
	sessionID  string
	roomCode   string
	questionID string
	token      string
}

func newAnswerFixture(t *testing.T, qType string, options []string) answerFixture {
	t.Helper()
	db := tu.SetupTestDB(t)
	cfg := tu.GetTestConfig()
	live := newTestLive(nil)
	sessionID, _, roomCode := tu.CreateTestSession(t, db, cfg)
	questionID := tu.AddTestQuestion(t, db, sessionID, qType, "Question", options, true)
	return answerFixture{
		handler:    NewRoomHandler(db, cfg, live),
		live:       live,
		sessionID:  sessionID,
		roomCode:   roomCode,
		questionID: questionID,
		token:      tu.CreateTestRespondent(t, db, sessionID),
	}
}

func (f answerFixture) submit(token, questionID string, value any) *httptest.ResponseRecorder {
	req := tu.MakeRequest("POST", "/rooms/"+f.roomCode+"/answers",
		map[string]any{"question_id": questionID, "value": value},
		map[string]string{"X-Respondent-Token": token})
	req.SetPathValue("code", f.roomCode)
	w := httptest.NewRecorder()
	f.handler.SubmitAnswer(w, req)
	return w
}

func (f answerFixture) stored(t *testing.T) []models.Answer {
	t.Helper()
	answers, err := loadAnswers(context.Background(), f.handler.db, f.questionID)
	require.NoError(t, err)
	return answers
}

func TestSubmitAnswerByType(t *testing.T) {
	tests := []struct {
		name           string
		qType          string
		options        []string
		value          any
		expectedStatus int
		want           any
	}{
		{"mcq option", "mcq", []string{"A", "B"}, "B", http.StatusOK, "B"},
		{"mcq unknown option", "mcq", []string{"A", "B"}, "C", http.StatusBadRequest, nil},
		{"mcq non-string", "mcq", []string{"A", "B"}, 1, http.StatusBadRequest, nil},
		{"number", "number", nil, 4.5, http.StatusOK, 4.5},
		{"number as string", "number", nil, " 12 ", http.StatusOK, 12.0},
		{"number unparseable kept as text", "number", nil, " lots ", http.StatusOK, "lots"},
		{"number object", "number", nil, map[string]any{"a": 1}, http.StatusBadRequest, nil},
		{"short trimmed", "short", nil, "  hello world  ", http.StatusOK, "hello world"},
		{"long blank", "long", nil, "   ", http.StatusBadRequest, nil},
		{"short number", "short", nil, 3, http.StatusBadRequest, nil},
		{
			"pie keeps declared finite categories", "pie", []string{"Rent", "Food"},
			map[string]any{"Rent": 60, "Food": "40", "Fun": 10},
			http.StatusOK,
			map[string]any{"Rent": 60.0, "Food": 40.0},
		},
		{"pie non-object", "pie", []string{"Rent", "Food"}, "Rent", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAnswerFixture(t, tt.qType, tt.options)

			w := f.submit(f.token, f.questionID, tt.value)
			tu.AssertStatus(t, w, tt.expectedStatus)

			answers := f.stored(t)
			if tt.expectedStatus != http.StatusOK {
				assert.Empty(t, answers)
				return
			}
			require.Len(t, answers, 1)
			assert.Equal(t, f.token, answers[0].ID)
			assert.Equal(t, tt.want, answers[0].Value)
		})
	}
}

func TestSubmitAnswerReplacesPrevious(t *testing.T) {
	f := newAnswerFixture(t, "short", nil)
	other := tu.CreateTestRespondent(t, f.handler.db, f.sessionID)

	tu.AssertStatus(t, f.submit(f.token, f.questionID, "first"), http.StatusOK)
	tu.AssertStatus(t, f.submit(other, f.questionID, "other"), http.StatusOK)
	tu.AssertStatus(t, f.submit(f.token, f.questionID, "second"), http.StatusOK)

	answers := f.stored(t)
	require.Len(t, answers, 2)
	// Arrival order is kept across the replacement
	assert.Equal(t, f.token, answers[0].ID)
	assert.Equal(t, "second", answers[0].Value)
	assert.Equal(t, other, answers[1].ID)

	assert.Equal(t, 3.0, testutil.ToFloat64(f.live.Metrics.AnswersSubmitted.WithLabelValues("short")))
}

func TestSubmitAnswerRejections(t *testing.T) {
	f := newAnswerFixture(t, "short", nil)
	inactive := tu.AddTestQuestion(t, f.handler.db, f.sessionID, "short", "Later", nil, false)

	t.Run("missing token", func(t *testing.T) {
		tu.AssertStatus(t, f.submit("", f.questionID, "x"), http.StatusUnauthorized)
	})

	t.Run("malformed token", func(t *testing.T) {
		tu.AssertStatus(t, f.submit("not-a-uuid", f.questionID, "x"), http.StatusUnauthorized)
	})

	t.Run("unregistered token", func(t *testing.T) {
		tu.AssertStatus(t, f.submit(uuid.NewString(), f.questionID, "x"), http.StatusUnauthorized)
	})

	t.Run("missing question id", func(t *testing.T) {
		tu.AssertStatus(t, f.submit(f.token, "", "x"), http.StatusBadRequest)
	})

	t.Run("question not active", func(t *testing.T) {
		tu.AssertStatus(t, f.submit(f.token, inactive, "x"), http.StatusConflict)
	})

	t.Run("room closed", func(t *testing.T) {
		_, err := f.handler.db.Exec("UPDATE session SET is_open = $1 WHERE id = $2", false, f.sessionID)
		require.NoError(t, err)
		tu.AssertStatus(t, f.submit(f.token, f.questionID, "x"), http.StatusConflict)
	})

	assert.Empty(t, f.stored(t))
}
