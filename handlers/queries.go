// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-pulse/auth"
	"github.com/danielhkuo/quickly-pulse/models"
)

var errNotFound = errors.New("not found")

// storedQuestion is a question row with its cached synthesis, which only the
// results and synthesis paths need.
type storedQuestion struct {
	models.Question
	Synthesis        *models.SynthesisRecord
	SynthesizedCount *int
}

func loadSession(ctx context.Context, db *sql.DB, sessionID string) (models.Session, error) {
	return scanSession(db.QueryRowContext(ctx, `
		SELECT id, room_code, title, is_open, active_question_id, created_at
		FROM session
		WHERE id = $1
	`, sessionID))
}

func loadSessionByCode(ctx context.Context, db *sql.DB, code string) (models.Session, error) {
	return scanSession(db.QueryRowContext(ctx, `
		SELECT id, room_code, title, is_open, active_question_id, created_at
		FROM session
		WHERE room_code = $1
	`, auth.NormalizeRoomCode(code)))
}

func scanSession(row *sql.Row) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.RoomCode, &s.Title, &s.IsOpen, &s.ActiveQuestionID, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, errNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query session: %w", err)
	}
	return s, nil
}

// loadQuestion fetches a question that must belong to sessionID.
func loadQuestion(ctx context.Context, db *sql.DB, sessionID, questionID string) (storedQuestion, error) {
	var (
		q         storedQuestion
		options   string
		synthesis sql.NullString
		count     sql.NullInt64
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, session_id, type, prompt, options, synthesis, synthesized_count, created_at
		FROM question
		WHERE id = $1 AND session_id = $2
	`, questionID, sessionID).Scan(
		&q.ID, &q.SessionID, &q.Type, &q.Prompt, &options, &synthesis, &count, &q.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storedQuestion{}, errNotFound
	}
	if err != nil {
		return storedQuestion{}, fmt.Errorf("failed to query question: %w", err)
	}

	if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
		return storedQuestion{}, fmt.Errorf("failed to decode options: %w", err)
	}
	if synthesis.Valid {
		var record models.SynthesisRecord
		if err := json.Unmarshal([]byte(synthesis.String), &record); err != nil {
			return storedQuestion{}, fmt.Errorf("failed to decode synthesis: %w", err)
		}
		q.Synthesis = &record
	}
	if count.Valid {
		n := int(count.Int64)
		q.SynthesizedCount = &n
		// Records saved without a source count take it from the column
		if q.Synthesis != nil && q.Synthesis.SourceCount <= 0 {
			q.Synthesis.SourceCount = n
		}
	}
	return q, nil
}

func loadQuestions(ctx context.Context, db *sql.DB, sessionID string) ([]models.Question, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, session_id, type, prompt, options, created_at
		FROM question
		WHERE session_id = $1
		ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		var options string
		if err := rows.Scan(&q.ID, &q.SessionID, &q.Type, &q.Prompt, &options, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// loadAnswers returns the current answers for a question in order of first
// arrival. Each respondent appears once.
func loadAnswers(ctx context.Context, db *sql.DB, questionID string) ([]models.Answer, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT respondent_id, value, submitted_at
		FROM answer
		WHERE question_id = $1
		ORDER BY created_at, respondent_id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	answers := []models.Answer{}
	for rows.Next() {
		var a models.Answer
		var raw string
		if err := rows.Scan(&a.ID, &raw, &a.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &a.Value); err != nil {
			return nil, fmt.Errorf("failed to decode answer %s: %w", a.ID, err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// upsertAnswer replaces the respondent's answer, keeping the time of first
// arrival.
func upsertAnswer(ctx context.Context, db *sql.DB, questionID, respondentID string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode answer: %w", err)
	}
	now := time.Now().UTC()
	_, err = db.ExecContext(ctx, `
		INSERT INTO answer (question_id, respondent_id, value, created_at, submitted_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (question_id, respondent_id)
		DO UPDATE SET value = EXCLUDED.value, submitted_at = EXCLUDED.submitted_at
	`, questionID, respondentID, string(encoded), now)
	if err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}
	return nil
}

// saveSynthesis persists a fresh record on the question row.
func saveSynthesis(ctx context.Context, db *sql.DB, questionID string, record models.SynthesisRecord) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode synthesis: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		UPDATE question
		SET synthesis = $1, synthesized_count = $2, synthesized_at = $3
		WHERE id = $4
	`, string(encoded), record.SourceCount, time.Now().UTC(), questionID)
	if err != nil {
		return fmt.Errorf("failed to save synthesis: %w", err)
	}
	return nil
}

// answerValues extracts the raw values in arrival order.
func answerValues(answers []models.Answer) []any {
	values := make([]any, len(answers))
	for i, a := range answers {
		values[i] = a.Value
	}
	return values
}
