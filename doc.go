// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Pulse API server.

Quickly Pulse is a live audience polling service. A presenter opens a room,
asks multiple-choice, numeric, short, long and point-allocation questions,
and watches answers aggregate in real time: choice tallies, histograms with
outlier trimming, word frequencies, non-overlapping answer cards and an
optional model-written synthesis of free text.

# Starting the Server

With no flags the server uses a local sqlite file:

	PRESENTER_KEY_SALT=change-me go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." --presenter-salt change-me

A .env file in the working directory is read first if present.

# Configuration

Required settings:

  - PRESENTER_KEY_SALT (--presenter-salt): Secret for presenter key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DATABASE_URL (-d): Connection string (sqlite default: quickly-pulse.db)
  - OPENAI_API_KEY (--openai-key): Enables synthesis
  - OPENAI_MODEL (--openai-model): Model name (default: gpt-4o-mini)
  - OPENAI_BASE_URL (--openai-url): Compatible API endpoint
  - SYNTHESIS_TOKEN_BUDGET (--token-budget): Token cap per request (default: 100000)

# Architecture

  - handlers: HTTP request handlers and live per-question state
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, validation, JSON helpers
  - stats: Numeric summaries and category tallies
  - words: Tokenizer and term frequencies
  - layout: Card placement engine
  - synthesis: Synthesis controller and OpenAI client
  - metrics: Prometheus collector
  - models: Request/response and domain types
  - auth: Room codes, presenter keys, respondent tokens
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
