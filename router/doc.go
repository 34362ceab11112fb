// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Pulse API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	live := handlers.NewLive(synth, collector)
	mux := router.NewRouter(db, cfg, live)

Every API route is wrapped with request logging and Prometheus metrics,
labelled by the route pattern rather than the concrete path.

# Endpoints

Operational:

	GET /health  - Liveness probe
	GET /metrics - Prometheus metrics

Session management (presenter, requires X-Presenter-Key except create):

	POST   /sessions                                 - Create session
	GET    /sessions/{id}                            - Session and questions
	DELETE /sessions/{id}                            - Delete session
	POST   /sessions/{id}/questions                  - Add question
	POST   /sessions/{id}/activate                   - Set active question
	POST   /sessions/{id}/close                      - Close for answers
	POST   /sessions/{id}/questions/{qid}/synthesize - Synthesize text answers

Participants (public, by room code):

	GET  /rooms/{code}         - Session and active question
	POST /rooms/{code}/join    - Get a respondent token
	POST /rooms/{code}/answers - Submit or replace an answer (X-Respondent-Token)

Live views (public):

	GET /rooms/{code}/results - Aggregated view of a question
	GET /rooms/{code}/cards   - Card layout for a canvas (width, height, canvas)

Both views default to the active question; pass question_id to pick another.
*/
package router
