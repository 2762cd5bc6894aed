// Package llm implements the optional LLM-backed sentiment analyzer. It
// speaks to any OpenAI-compatible endpoint and is selected over the lexicon
// backend via configuration.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/msaleem/trendwatch/pkg/config"
)

// SentimentAnalyzer scores text sentiment through an LLM
type SentimentAnalyzer struct {
	client    *openai.Client
	config    config.LLMConfig
	systemMsg string
}

// NewSentimentAnalyzer creates an LLM sentiment analyzer
func NewSentimentAnalyzer(cfg config.LLMConfig) *SentimentAnalyzer {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	// use custom system prompt if provided, otherwise use default
	systemMsg := cfg.SystemPrompt
	if systemMsg == "" {
		systemMsg = defaultSystemPrompt
	}

	return &SentimentAnalyzer{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		systemMsg: systemMsg,
	}
}

// default system prompt for sentiment scoring
const defaultSystemPrompt = `You are a sentiment analysis engine. For the given text, respond with a single JSON object:
- polarity: number from -1 (strongly negative) to 1 (strongly positive)
- subjectivity: number from 0 (objective) to 1 (subjective)

Respond with the JSON object only, no prose.`

// sentimentResponse is the JSON shape expected from the model
type sentimentResponse struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

// Analyze returns polarity and subjectivity for one text
func (a *SentimentAnalyzer) Analyze(ctx context.Context, text string) (polarity, subjectivity float64, err error) {
	if strings.TrimSpace(text) == "" {
		return 0, 0, fmt.Errorf("empty text")
	}
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       a.config.Model,
		Temperature: float32(a.config.Temperature),
		MaxTokens:   a.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: a.systemMsg,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return 0, 0, fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, 0, fmt.Errorf("no response from llm")
	}

	result, err := parseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return 0, 0, fmt.Errorf("parse llm response: %w", err)
	}
	return clamp(result.Polarity, -1, 1), clamp(result.Subjectivity, 0, 1), nil
}

// parseResponse extracts the JSON object from the model output, tolerating
// surrounding prose or markdown fences
func parseResponse(content string) (*sentimentResponse, error) {
	var result sentimentResponse
	if err := json.Unmarshal([]byte(content), &result); err == nil {
		return &result, nil
	}

	// some models wrap the object in text despite instructions
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	return &result, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
