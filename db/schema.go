// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The statements stay within the subset sqlite and postgres share. Values
// that are JSON on the wire (options, answer values, synthesis records) are
// stored as TEXT.
const schema = `
-- Sessions
CREATE TABLE IF NOT EXISTS session (
    id TEXT PRIMARY KEY,
    room_code TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    is_open BOOLEAN NOT NULL DEFAULT TRUE,
    active_question_id TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_session_room_code ON session(room_code);

-- Questions
CREATE TABLE IF NOT EXISTS question (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('mcq', 'number', 'short', 'long', 'pie')),
    prompt TEXT NOT NULL,
    options TEXT NOT NULL DEFAULT '[]',
    synthesis TEXT,
    synthesized_count INTEGER,
    synthesized_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_question_session_id ON question(session_id);

-- Respondents
CREATE TABLE IF NOT EXISTS respondent (
    token TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_respondent_session_id ON respondent(session_id);

-- Answers: one row per respondent per question, replaced on resubmit
CREATE TABLE IF NOT EXISTS answer (
    question_id TEXT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    respondent_id TEXT NOT NULL,
    value TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (question_id, respondent_id)
);

CREATE INDEX IF NOT EXISTS idx_answer_arrival ON answer(question_id, created_at, respondent_id);
`
