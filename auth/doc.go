// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides key, code and token generation.

# Presenter Keys

Presenter keys use HMAC-SHA256 to create deterministic, verifiable keys:

	key := auth.GeneratePresenterKey(sessionID, salt)
	err := auth.ValidatePresenterKey(sessionID, key, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
validation needs no stored secret per session.

# Room Codes

Participants join with a six character code drawn from an alphabet without
easily confused characters:

	code, err := auth.GenerateRoomCode() // e.g. "K7QH2M"

# Respondent Tokens

A respondent token is a UUID handed out on join. It identifies one respondent
across questions, so resubmitting replaces the earlier answer.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
