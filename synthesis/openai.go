// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/pkoukk/tiktoken-go"

	"github.com/danielhkuo/quickly-pulse/models"
)

const (
	DefaultModel    = openai.ChatModelGPT4oMini
	DefaultEncoding = "o200k_base"
	temperature     = 0.3
)

const groupedPrompt = "Group the responses into thematic clusters and write a concise synthesis for each group. " +
	"Use every response exactly once. Do not invent content. " +
	"Set overall_summary to a short overview, or an empty string if none is useful. " +
	"Each group has a theme, a summary, and the contributions (the response strings) it covers."

const summaryPrompt = "Write a concise synthesis that integrates and summarizes all responses. " +
	"Use every response. Do not invent content. " +
	"Put the synthesis in overall_summary and return groups as an empty array."

// Config configures the OpenAI-backed synthesizer.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	TokenBudget int // 0 disables token trimming
	Logger      *slog.Logger
}

type responseGroup struct {
	Theme         string   `json:"theme" jsonschema_description:"Short name for the theme"`
	Summary       string   `json:"summary" jsonschema_description:"Concise synthesis of the group"`
	Contributions []string `json:"contributions" jsonschema_description:"Responses belonging to this group, verbatim"`
}

type responseBody struct {
	OverallSummary string          `json:"overall_summary" jsonschema_description:"Synthesis across all responses"`
	Groups         []responseGroup `json:"groups" jsonschema_description:"Thematic groups of responses"`
}

var responseSchema = generateSchema[responseBody]()

func generateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// OpenAISynthesizer calls the chat completions API with a strict JSON schema.
type OpenAISynthesizer struct {
	client   openai.Client
	model    string
	budget   int
	encoding *tiktoken.Tiktoken
	logger   *slog.Logger
}

func NewOpenAISynthesizer(cfg Config) (*OpenAISynthesizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key cannot be empty")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(2),
	}
	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	s := &OpenAISynthesizer{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		budget: cfg.TokenBudget,
		logger: cfg.Logger.With("component", "synthesis"),
	}

	if cfg.TokenBudget > 0 {
		encoding, err := tiktoken.GetEncoding(DefaultEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
		}
		s.encoding = encoding
	}
	return s, nil
}

func (s *OpenAISynthesizer) countTokens(text string) int {
	return len(s.encoding.Encode(text, nil, nil))
}

// Synthesize sends the cleaned items and parses the model's JSON reply.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, req models.SynthesisRequest) (models.SynthesisRecord, error) {
	items := CleanItems(req.Items)
	if len(items) == 0 {
		return models.SynthesisRecord{}, ErrNoItems
	}

	system := groupedPrompt
	if req.Mode == models.ModeSummary {
		system = summaryPrompt
	}

	if s.encoding != nil {
		overhead := s.countTokens(system) + s.countTokens(req.Question)
		fitted := FitBudget(items, s.budget-overhead, s.countTokens)
		if len(fitted) < len(items) {
			s.logger.Warn("trimmed synthesis batch to token budget",
				"items", len(items), "sent", len(fitted), "budget", s.budget)
		}
		items = fitted
	}

	payload := struct {
		Question  *string  `json:"question"`
		Responses []string `json:"responses"`
	}{Responses: items}
	if q := strings.TrimSpace(req.Question); q != "" {
		payload.Question = &q
	}
	user, err := json.Marshal(payload)
	if err != nil {
		return models.SynthesisRecord{}, fmt.Errorf("encode synthesis prompt: %w", err)
	}

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(string(user)),
		},
		Model:       s.model,
		Temperature: openai.Float(temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "response_synthesis",
					Description: openai.String("Thematic synthesis of free-text responses"),
					Schema:      responseSchema,
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return models.SynthesisRecord{}, fmt.Errorf("openai request failed: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return models.SynthesisRecord{}, errors.New("openai response missing content")
	}

	record, err := ParseResponse(completion.Choices[0].Message.Content)
	if err != nil {
		return models.SynthesisRecord{}, err
	}
	record.SourceCount = len(items)

	s.logger.Info("synthesis complete", "mode", req.Mode, "items", len(items), "groups", len(record.Groups))
	return record, nil
}

// ParseResponse decodes the model reply leniently: a group with a missing or
// non-string theme gets DefaultTheme, non-string contributions are skipped.
func ParseResponse(content string) (models.SynthesisRecord, error) {
	var raw struct {
		OverallSummary any `json:"overall_summary"`
		Groups         any `json:"groups"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return models.SynthesisRecord{}, fmt.Errorf("failed to parse synthesis JSON: %w", err)
	}

	record := models.SynthesisRecord{Groups: []models.SynthesisGroup{}}
	if summary, ok := raw.OverallSummary.(string); ok {
		record.OverallSummary = summary
	}

	groups, _ := raw.Groups.([]any)
	for _, g := range groups {
		obj, _ := g.(map[string]any)

		group := models.SynthesisGroup{Theme: DefaultTheme, Contributions: []string{}}
		if theme, ok := obj["theme"].(string); ok {
			group.Theme = theme
		}
		if summary, ok := obj["summary"].(string); ok {
			group.Summary = summary
		}
		contributions, _ := obj["contributions"].([]any)
		for _, c := range contributions {
			if text, ok := c.(string); ok {
				group.Contributions = append(group.Contributions, text)
			}
		}
		record.Groups = append(record.Groups, group)
	}
	return record, nil
}

// FitBudget keeps the longest prefix of items whose token counts fit the
// budget. The first item is always kept so a request is never empty.
func FitBudget(items []string, budget int, count func(string) int) []string {
	if len(items) == 0 {
		return items
	}
	used := 0
	for i, item := range items {
		used += count(item)
		if used > budget {
			return items[:max(1, i)]
		}
	}
	return items
}
