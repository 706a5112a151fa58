// Package oracle implements the validation/scoring oracle on top of
// OpenAI-compatible chat completion APIs.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"catlens/internal/port"
)

type OpenAIOracle struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

var _ port.Oracle = (*OpenAIOracle)(nil)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func NewOpenAIOracle(apiKeyEnv, model string) (*OpenAIOracle, error) {
	return NewOpenAICompatibleOracle(apiKeyEnv, model, "https://api.openai.com/v1")
}

func NewOllamaOracle(model, baseURL string) (*OpenAIOracle, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	return &OpenAIOracle{
		apiKey:  "ollama",
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

func NewOpenAICompatibleOracle(apiKeyEnv, model, baseURL string) (*OpenAIOracle, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	return &OpenAIOracle{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// ValidateBool asks a yes/no question and parses the answer.
func (o *OpenAIOracle) ValidateBool(ctx context.Context, prompt string) (bool, error) {
	text, err := o.generate(ctx, "Answer with a single word: true or false.", prompt)
	if err != nil {
		return false, err
	}
	return ParseBool(text)
}

// ScoreScalar asks for a numeric rating and parses the first number in
// the answer.
func (o *OpenAIOracle) ScoreScalar(ctx context.Context, prompt string) (float64, error) {
	text, err := o.generate(ctx, "Respond with a single number and nothing else.", prompt)
	if err != nil {
		return 0, err
	}
	return ParseScalar(text)
}

// Explain asks for a short free-text rationale.
func (o *OpenAIOracle) Explain(ctx context.Context, prompt string) (string, error) {
	return o.generate(ctx, "Answer in one short sentence.", prompt)
}

func (o *OpenAIOracle) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("API returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}
