// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, domain, and aggregation types.

# Request Types

Types for parsing incoming JSON:

  - CreateSessionRequest: title
  - AddQuestionRequest: type, prompt, options
  - ActivateQuestionRequest: question_id
  - SubmitAnswerRequest: question_id, value

Request types carry validator tags; see the middleware package for how they
are checked.

# Response Types

  - CreateSessionResponse: session_id, room_code, presenter_key
  - AddQuestionResponse: question_id
  - SessionDetailResponse: session plus its questions in order
  - JoinRoomResponse: respondent_token
  - SubmitAnswerResponse: question_id, message
  - ResultsResponse: per-type aggregate view plus synthesis state
  - CardsResponse: id to box geometry for a text canvas
  - ErrorResponse: error, message

# Domain Types

  - Session: a room with an optional active question
  - Question: prompt, type, ordered options
  - Answer: latest value of one respondent for one question

# Aggregation Types

Plain data handed to renderers:

  - HistogramBin, NumericSummary: numeric questions
  - CategoryTotal: choice and allocation questions
  - TermWeight: word cloud input
  - TextCard: placed short-answer box
  - SynthesisRecord: cached thematic summary

# Constants

Question types:

	TypeMCQ    = "mcq"
	TypeNumber = "number"
	TypeShort  = "short"
	TypeLong   = "long"
	TypePie    = "pie"

Synthesis modes:

	ModeGrouped = "grouped"
	ModeSummary = "summary"
*/
package models
