package models

import "time"

// Question type constants
const (
	TypeMCQ    = "mcq"
	TypeNumber = "number"
	TypeShort  = "short"
	TypeLong   = "long"
	TypePie    = "pie"
)

// Synthesis mode constants
const (
	ModeGrouped = "grouped"
	ModeSummary = "summary"
)

// Request types

type CreateSessionRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type AddQuestionRequest struct {
	Type    string   `json:"type" validate:"required,oneof=mcq number short long pie"`
	Prompt  string   `json:"prompt" validate:"required,max=500"`
	Options []string `json:"options" validate:"max=20,dive,max=100"`
}

type ActivateQuestionRequest struct {
	QuestionID string `json:"question_id"`
}

// Value is a number, a string, or an object of category -> points,
// depending on the question type.
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Value      any    `json:"value"`
}

// Response types

type CreateSessionResponse struct {
	SessionID    string `json:"session_id"`
	RoomCode     string `json:"room_code"`
	PresenterKey string `json:"presenter_key"`
}

type AddQuestionResponse struct {
	QuestionID string `json:"question_id"`
}

type JoinRoomResponse struct {
	RespondentToken string `json:"respondent_token"`
}

type SubmitAnswerResponse struct {
	QuestionID string `json:"question_id"`
	Message    string `json:"message"`
}

type SessionDetailResponse struct {
	Session   Session    `json:"session"`
	Questions []Question `json:"questions"`
}

type RoomResponse struct {
	Session  Session   `json:"session"`
	Question *Question `json:"question,omitempty"`
}

// ResultsResponse carries the derived view for one question. Only the
// fields relevant to the question type are populated.
type ResultsResponse struct {
	Question      Question         `json:"question"`
	ResponseCount int              `json:"response_count"`
	Choices       []CategoryTotal  `json:"choices,omitempty"`
	Allocations   []CategoryTotal  `json:"allocations,omitempty"`
	Numeric       *NumericView     `json:"numeric,omitempty"`
	Words         []TermWeight     `json:"words,omitempty"`
	Synthesis     *SynthesisRecord `json:"synthesis,omitempty"`
	Stale         bool             `json:"stale"`
	Synthesizing  bool             `json:"synthesizing"`
	SynthesisErr  string           `json:"synthesis_error,omitempty"`
	EligibleCount int              `json:"eligible_count"`
}

// NumericView adds display strings to a NumericSummary.
type NumericView struct {
	NumericSummary
	MeanDisplay   string `json:"mean_display"`
	MedianDisplay string `json:"median_display"`
}

type CardsResponse struct {
	QuestionID string              `json:"question_id"`
	State      string              `json:"state"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Cards      map[string]TextCard `json:"cards"`
}

type SynthesizeResponse struct {
	Synthesis SynthesisRecord `json:"synthesis"`
}

// Domain types

type Session struct {
	ID               string    `json:"id"`
	RoomCode         string    `json:"room_code"`
	Title            string    `json:"title"`
	IsOpen           bool      `json:"is_open"`
	ActiveQuestionID *string   `json:"active_question_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type Question struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Type      string    `json:"type"`
	Prompt    string    `json:"prompt"`
	Options   []string  `json:"options"`
	CreatedAt time.Time `json:"created_at"`
}

// Answer is the latest submission of one respondent to one question.
// ID is the respondent id.
type Answer struct {
	ID          string    `json:"id"`
	Value       any       `json:"value"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Aggregation types

// Lo and Hi are the bin edges; Label is their rounded rendering.
type HistogramBin struct {
	Label string  `json:"name"`
	Count int     `json:"count"`
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
}

// N is the count used for statistics (post-trim); Parsed is every value
// that parsed as a number.
type NumericSummary struct {
	Bins   []HistogramBin `json:"bins"`
	Mean   *float64       `json:"mean"`
	Median *float64       `json:"median"`
	N      int            `json:"n"`
	Parsed int            `json:"parsed"`
	Min    float64        `json:"min"`
	Max    float64        `json:"max"`
}

type CategoryTotal struct {
	Category string  `json:"name"`
	Total    float64 `json:"value"`
}

type TermWeight struct {
	Term   string `json:"text"`
	Weight int    `json:"value"`
}

type TextCard struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Synthesis types

type SynthesisGroup struct {
	Theme         string   `json:"theme"`
	Summary       string   `json:"summary"`
	Contributions []string `json:"contributions"`
}

type SynthesisRecord struct {
	OverallSummary string           `json:"overall_summary,omitempty"`
	Groups         []SynthesisGroup `json:"groups"`
	SourceCount    int              `json:"source_count"`
}

type SynthesisRequest struct {
	Question string   `json:"question,omitempty"`
	Items    []string `json:"items"`
	Mode     string   `json:"mode"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
