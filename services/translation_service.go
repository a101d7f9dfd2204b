package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultLLMBaseURL = "https://api.openai.com/v1"
	defaultLLMModel   = "gpt-4o-mini"
)

// TranslationService translates short user text through an OpenAI compatible chat API.
type TranslationService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewTranslationService(apiKey, baseURL, model string) *TranslationService {
	if baseURL == "" {
		baseURL = defaultLLMBaseURL
	}
	if model == "" {
		model = defaultLLMModel
	}
	return &TranslationService{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *TranslationService) Enabled() bool {
	return s.apiKey != ""
}

func (s *TranslationService) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if !s.Enabled() {
		return "", ErrTranslationDisabled
	}

	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: "Translate the user's message into " + targetLanguage + ". Reply with the translation only."},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr chatError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("%w: llm api error (%d): %s", ErrUpstream, resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("%w: llm api error (%d)", ErrUpstream, resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrUpstream)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
