// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-pulse/auth"
	"github.com/danielhkuo/quickly-pulse/metrics"
	"github.com/danielhkuo/quickly-pulse/models"
	"github.com/danielhkuo/quickly-pulse/synthesis"
	"github.com/danielhkuo/quickly-pulse/testutil"
)

func newTestLive(synth synthesis.Synthesizer) *Live {
	return NewLive(synth, metrics.NewCollector("test"))
}

// fakeSynthesizer answers with a fixed record, or runs fn when set.
type fakeSynthesizer struct {
	fn func(ctx context.Context, req models.SynthesisRequest) (models.SynthesisRecord, error)
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, req models.SynthesisRequest) (models.SynthesisRecord, error) {
	if f.fn != nil {
		return f.fn(ctx, req)
	}
	return models.SynthesisRecord{
		OverallSummary: "summary",
		Groups: []models.SynthesisGroup{
			{Theme: "All", Summary: "everything", Contributions: req.Items},
		},
		SourceCount: len(req.Items),
	}, nil
}

func TestCreateSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg, newTestLive(nil))

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{"valid session", models.CreateSessionRequest{Title: "Friday retro"}, http.StatusCreated},
		{"title is trimmed to empty", models.CreateSessionRequest{Title: "   "}, http.StatusBadRequest},
		{"missing title", map[string]any{}, http.StatusBadRequest},
		{"title too long", models.CreateSessionRequest{Title: string(make([]byte, 201))}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/sessions", tt.body, nil)
			w := httptest.NewRecorder()

			handler.CreateSession(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.CreateSessionResponse
			testutil.AssertJSON(t, w, &resp)
			assert.NotEmpty(t, resp.SessionID)
			assert.Len(t, resp.RoomCode, auth.RoomCodeLength)
			assert.NoError(t, auth.ValidatePresenterKey(resp.SessionID, resp.PresenterKey, cfg.PresenterKeySalt))

			var isOpen bool
			err := db.QueryRow("SELECT is_open FROM session WHERE id = $1", resp.SessionID).Scan(&isOpen)
			require.NoError(t, err)
			assert.True(t, isOpen)
		})
	}
}

func TestCreateSessionInvalidJSON(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSessionHandler(db, testutil.GetTestConfig(), newTestLive(nil))

	req := httptest.NewRequest("POST", "/sessions", nil)
	w := httptest.NewRecorder()
	handler.CreateSession(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestPresenterKeyRequired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg, newTestLive(nil))
	sessionID, _, _ := testutil.CreateTestSession(t, db, cfg)

	routes := []struct {
		name string
		call http.HandlerFunc
		body any
	}{
		{"get", handler.GetSession, nil},
		{"add question", handler.AddQuestion, models.AddQuestionRequest{Type: "short", Prompt: "Why?"}},
		{"activate", handler.ActivateQuestion, models.ActivateQuestionRequest{}},
		{"close", handler.CloseSession, nil},
		{"delete", handler.DeleteSession, nil},
	}

	for _, rt := range routes {
		for _, key := range []string{"", "wrong-key"} {
			t.Run(rt.name+"/"+key, func(t *testing.T) {
				req := testutil.MakeRequest("POST", "/sessions/"+sessionID, rt.body,
					map[string]string{"X-Presenter-Key": key})
				req.SetPathValue("id", sessionID)
				w := httptest.NewRecorder()

				rt.call(w, req)

				testutil.AssertStatus(t, w, http.StatusUnauthorized)
			})
		}
	}
}

func TestAddQuestion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg, newTestLive(nil))
	sessionID, presenterKey, _ := testutil.CreateTestSession(t, db, cfg)

	tests := []struct {
		name           string
		body           models.AddQuestionRequest
		expectedStatus int
		wantOptions    []string
	}{
		{
			name:           "mcq with options",
			body:           models.AddQuestionRequest{Type: "mcq", Prompt: " Lunch? ", Options: []string{" Pizza", "Sushi ", "Pizza", ""}},
			expectedStatus: http.StatusCreated,
			wantOptions:    []string{"Pizza", "Sushi"},
		},
		{
			name:           "mcq needs two distinct options",
			body:           models.AddQuestionRequest{Type: "mcq", Prompt: "Lunch?", Options: []string{"Pizza", " Pizza "}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "pie needs options",
			body:           models.AddQuestionRequest{Type: "pie", Prompt: "Split 100 points"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "text question drops options",
			body:           models.AddQuestionRequest{Type: "short", Prompt: "One word", Options: []string{"ignored"}},
			expectedStatus: http.StatusCreated,
			wantOptions:    []string{},
		},
		{
			name:           "unknown type",
			body:           models.AddQuestionRequest{Type: "essay", Prompt: "Write"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "blank prompt",
			body:           models.AddQuestionRequest{Type: "number", Prompt: "   "},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/questions", tt.body,
				map[string]string{"X-Presenter-Key": presenterKey})
			req.SetPathValue("id", sessionID)
			w := httptest.NewRecorder()

			handler.AddQuestion(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.AddQuestionResponse
			testutil.AssertJSON(t, w, &resp)

			q, err := loadQuestion(context.Background(), db, sessionID, resp.QuestionID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOptions, q.Options)
			assert.Equal(t, tt.body.Type, q.Type)
		})
	}
}

func TestGetSessionListsQuestionsInOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg, newTestLive(nil))
	sessionID, presenterKey, _ := testutil.CreateTestSession(t, db, cfg)

	first := testutil.AddTestQuestion(t, db, sessionID, "short", "First", nil, false)
	second := testutil.AddTestQuestion(t, db, sessionID, "mcq", "Second", []string{"A", "B"}, true)

	req := testutil.MakeRequest("GET", "/sessions/"+sessionID, nil,
		map[string]string{"X-Presenter-Key": presenterKey})
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.GetSession(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.SessionDetailResponse
	testutil.AssertJSON(t, w, &resp)

	require.Len(t, resp.Questions, 2)
	assert.Equal(t, first, resp.Questions[0].ID)
	assert.Equal(t, second, resp.Questions[1].ID)
	assert.Equal(t, []string{"A", "B"}, resp.Questions[1].Options)
	require.NotNil(t, resp.Session.ActiveQuestionID)
	assert.Equal(t, second, *resp.Session.ActiveQuestionID)
}

func TestActivateQuestion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	live := newTestLive(nil)
	handler := NewSessionHandler(db, cfg, live)
	sessionID, presenterKey, _ := testutil.CreateTestSession(t, db, cfg)
	questionID := testutil.AddTestQuestion(t, db, sessionID, "long", "Thoughts?", nil, false)

	activate := func(id string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/activate",
			models.ActivateQuestionRequest{QuestionID: id},
			map[string]string{"X-Presenter-Key": presenterKey})
		req.SetPathValue("id", sessionID)
		w := httptest.NewRecorder()
		handler.ActivateQuestion(w, req)
		return w
	}

	t.Run("activates and retargets synthesis", func(t *testing.T) {
		w := activate(questionID)
		testutil.AssertStatus(t, w, http.StatusOK)

		session, err := loadSession(context.Background(), db, sessionID)
		require.NoError(t, err)
		require.NotNil(t, session.ActiveQuestionID)
		assert.Equal(t, questionID, *session.ActiveQuestionID)
		assert.Equal(t, questionID, live.controller(sessionID).Question())
	})

	t.Run("unknown question", func(t *testing.T) {
		testutil.AssertStatus(t, activate("missing"), http.StatusNotFound)
	})

	t.Run("empty id clears", func(t *testing.T) {
		testutil.AssertStatus(t, activate(""), http.StatusOK)

		session, err := loadSession(context.Background(), db, sessionID)
		require.NoError(t, err)
		assert.Nil(t, session.ActiveQuestionID)
	})
}

func TestCloseSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewSessionHandler(db, cfg, newTestLive(nil))
	sessionID, presenterKey, _ := testutil.CreateTestSession(t, db, cfg)

	req := testutil.MakeRequest("POST", "/sessions/"+sessionID+"/close", nil,
		map[string]string{"X-Presenter-Key": presenterKey})
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.CloseSession(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	session, err := loadSession(context.Background(), db, sessionID)
	require.NoError(t, err)
	assert.False(t, session.IsOpen)
}

func TestDeleteSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	live := newTestLive(nil)
	handler := NewSessionHandler(db, cfg, live)
	sessionID, presenterKey, _ := testutil.CreateTestSession(t, db, cfg)
	questionID := testutil.AddTestQuestion(t, db, sessionID, "short", "Word?", nil, true)
	token := testutil.CreateTestRespondent(t, db, sessionID)
	testutil.SubmitTestAnswer(t, db, questionID, token, "hello")

	c, err := live.canvas(questionID, DefaultCanvas)
	require.NoError(t, err)

	del := func() *httptest.ResponseRecorder {
		req := testutil.MakeRequest("DELETE", "/sessions/"+sessionID, nil,
			map[string]string{"X-Presenter-Key": presenterKey})
		req.SetPathValue("id", sessionID)
		w := httptest.NewRecorder()
		handler.DeleteSession(w, req)
		return w
	}

	testutil.AssertStatus(t, del(), http.StatusNoContent)

	for _, table := range []string{"session", "question", "respondent", "answer"} {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Zero(t, n, table)
	}
	c.mu.Lock()
	assert.Equal(t, "closed", c.engine.State().String())
	c.mu.Unlock()

	testutil.AssertStatus(t, del(), http.StatusNotFound)
}
