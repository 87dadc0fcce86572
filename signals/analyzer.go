package signals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/clearsignals/clearsignals/signals/provider"
)

// Analyzer scores one thread. Implementations must treat every failure as
// thread-local: the pipeline records a missing assessment and moves on.
type Analyzer interface {
	AnalyzeThread(ctx context.Context, t Thread) (*Assessment, error)
}

// OracleConfig configures the OpenAI-compatible scoring oracle.
type OracleConfig struct {
	APIKey string

	// BaseURL selects the gateway; any OpenAI-compatible chat completions
	// endpoint works (default is OpenRouter).
	BaseURL string

	Model string

	// Timeout bounds one oracle request. Defaults to 60s.
	Timeout time.Duration

	// MaxOutputTokens defaults to 2000.
	MaxOutputTokens int64
}

// DefaultBaseURL is the OpenRouter OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// OracleAnalyzer sends one chat completion per thread, requesting the
// assessment as a strict structured output.
type OracleAnalyzer struct {
	client    *openai.Client
	model     string
	timeout   time.Duration
	maxTokens int64
}

var assessmentSchema = provider.GenerateSchema[Assessment]()

// NewOracleAnalyzer validates cfg and builds the oracle client.
func NewOracleAnalyzer(cfg OracleConfig) (*OracleAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("NewOracleAnalyzer: APIKey is empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("NewOracleAnalyzer: Model is empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 2000
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	)
	return &OracleAnalyzer{
		client:    &client,
		model:     cfg.Model,
		timeout:   cfg.Timeout,
		maxTokens: cfg.MaxOutputTokens,
	}, nil
}

// AnalyzeThread makes exactly one oracle request. Retry pacing belongs to
// the caller, which must apply its rate-limit delay after every invocation
// whether or not this returns an error.
func (a *OracleAnalyzer) AnalyzeThread(ctx context.Context, t Thread) (*Assessment, error) {
	if a.client == nil {
		return nil, errors.New("OracleAnalyzer: client is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:     a.model,
		MaxTokens: openai.Int(a.maxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(analystInstructions),
			openai.UserMessage(buildPrompt(t)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "ThreadAssessment",
					Description: openai.String("Thread assessment JSON"),
					Schema:      assessmentSchema,
					Strict:      openai.Bool(true),
				},
			},
		},
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("oracle request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("oracle response has no choices")
	}
	return ParseAssessment(resp.Choices[0].Message.Content)
}
