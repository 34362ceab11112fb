// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Room codes avoid 0/O and 1/I so they can be read off a projector.
const (
	RoomCodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	RoomCodeLength   = 6
)

var (
	ErrInvalidPresenterKey = errors.New("invalid presenter key")
	ErrInvalidToken        = errors.New("invalid token format")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateRoomCode draws RoomCodeLength characters from RoomCodeAlphabet.
// The alphabet has 32 symbols, so masking a random byte is unbiased.
func GenerateRoomCode() (string, error) {
	b := make([]byte, RoomCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate room code: %w", err)
	}
	for i := range b {
		b[i] = RoomCodeAlphabet[int(b[i])%len(RoomCodeAlphabet)]
	}
	return string(b), nil
}

// NormalizeRoomCode uppercases and trims a code typed by a participant.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GeneratePresenterKey creates an HMAC-based key for a session
// This is deterministic and verifiable
func GeneratePresenterKey(sessionID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(sessionID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidatePresenterKey checks if the provided key is valid for the session
func ValidatePresenterKey(sessionID, key, salt string) error {
	expected := GeneratePresenterKey(sessionID, salt)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidPresenterKey
	}
	return nil
}

// GenerateRespondentToken creates the opaque id a participant answers with.
// One token means one respondent, so a second answer replaces the first.
func GenerateRespondentToken() string {
	return uuid.NewString()
}

// ValidateRespondentToken checks that a token has the shape
// GenerateRespondentToken produces.
func ValidateRespondentToken(token string) error {
	if _, err := uuid.Parse(token); err != nil || strings.TrimSpace(token) == "" {
		return ErrInvalidToken
	}
	return nil
}
