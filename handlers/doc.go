// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Pulse API.

# Handler Types

Each handler is a struct with database, config and live-state dependencies:

  - SessionHandler: Session lifecycle (create, questions, activate, close, delete)
  - RoomHandler: Joining a room and submitting answers
  - ResultsHandler: Aggregated results and card layouts
  - SynthesisHandler: Thematic synthesis of text answers

Handlers are created via constructor functions:

	live := handlers.NewLive(synth, collector)
	sessionHandler := handlers.NewSessionHandler(db, cfg, live)

# Live State

Live holds what does not belong in the database: one layout.Engine per
question and canvas, and one synthesis.Controller per session. Engines are
seeded from their key so a restarted server lays cards out the same way.
Each engine is used under its own lock.

# Session Flow

	POST /sessions                  → CreateSession (returns presenter_key, room_code)
	POST /sessions/{id}/questions   → AddQuestion
	POST /sessions/{id}/activate    → ActivateQuestion
	POST /sessions/{id}/close       → CloseSession
	DELETE /sessions/{id}           → DeleteSession

Presenter operations require the X-Presenter-Key header.

# Answer Flow

	POST /rooms/{code}/join    → Join (returns respondent_token)
	POST /rooms/{code}/answers → SubmitAnswer (create or replace)

Answers are only accepted for the active question of an open room and
require the X-Respondent-Token header. Values are normalized per question
type before they are stored.

# Views

	GET /rooms/{code}/results → GetResults
	GET /rooms/{code}/cards   → GetCards
	POST /sessions/{id}/questions/{qid}/synthesize → Synthesize

Views are recomputed from stored answers on each request.
*/
package handlers
