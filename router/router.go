// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-pulse/cliparse"
	"github.com/danielhkuo/quickly-pulse/handlers"
	"github.com/danielhkuo/quickly-pulse/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, live *handlers.Live) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(db, cfg, live)
	roomHandler := handlers.NewRoomHandler(db, cfg, live)
	resultsHandler := handlers.NewResultsHandler(db, cfg, live)
	synthesisHandler := handlers.NewSynthesisHandler(db, cfg, live)

	// handle mounts h with request logging and metrics labelled by the
	// pattern's path
	handle := func(pattern string, h http.HandlerFunc) {
		_, route, _ := strings.Cut(pattern, " ")
		mux.HandleFunc(pattern, middleware.WithLogging(middleware.WithMetrics(live.Metrics, route, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", live.Metrics.Handler())

	// Session management (presenter operations)
	handle("POST /sessions", sessionHandler.CreateSession)
	handle("GET /sessions/{id}", sessionHandler.GetSession)
	handle("DELETE /sessions/{id}", sessionHandler.DeleteSession)
	handle("POST /sessions/{id}/questions", sessionHandler.AddQuestion)
	handle("POST /sessions/{id}/activate", sessionHandler.ActivateQuestion)
	handle("POST /sessions/{id}/close", sessionHandler.CloseSession)
	handle("POST /sessions/{id}/questions/{qid}/synthesize", synthesisHandler.Synthesize)

	// Participant operations (public, by room code)
	handle("GET /rooms/{code}", roomHandler.GetRoom)
	handle("POST /rooms/{code}/join", roomHandler.Join)
	handle("POST /rooms/{code}/answers", roomHandler.SubmitAnswer)

	// Live views
	handle("GET /rooms/{code}/results", resultsHandler.GetResults)
	handle("GET /rooms/{code}/cards", resultsHandler.GetCards)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-pulse API v1"))
	})

	return mux
}
