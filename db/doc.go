// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Connecting

Open registers both drivers and pings the server:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

sqlite (modernc.org/sqlite, pure Go) is the default and what tests use;
postgres goes through lib/pq. sqlite pools are limited to one connection.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - session: room code, title, open flag, active question
  - question: type, prompt, options (JSON text) and the cached synthesis
  - respondent: tokens handed out by join
  - answer: latest value per (question_id, respondent_id)

# Relationships

	session 1──* question
	session 1──* respondent
	question 1──* answer

Answers are written with INSERT ... ON CONFLICT DO UPDATE, so a respondent
always has at most one answer per question and created_at keeps the time of
first arrival.
*/
package db
