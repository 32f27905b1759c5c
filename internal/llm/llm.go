// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm calls a generative-AI chat API and returns the reply text.
// The expansion and explanation stages share one Client; tests supply a
// mock implementation per the Strategy pattern.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/discovery-engine/internal/httputil"
	"github.com/pdiddy/discovery-engine/pkg/types"
)

// Request holds one completion request. When JSONObject is set the API is
// asked for a machine-parseable JSON object reply; callers must still
// parse defensively since the service does not guarantee clean JSON.
type Request struct {
	System     string
	Prompt     string
	JSONObject bool
}

// Client abstracts the generative-AI API so tests can supply a mock.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	BaseURL string
	Model   string
	APIKey  string
	Client  *http.Client

	userAgent string
}

// NewOpenAIClient builds a client from the LLM stage configuration.
// It returns an error when the API key is missing, so misconfiguration
// surfaces before any pipeline run starts.
func NewOpenAIClient(cfg types.LLMConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not configured")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		Client:    httputil.NewClient(cfg.Timeout),
		userAgent: cfg.UserAgent,
	}, nil
}

// chatRequest is the request body for the chat completions API.
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

// chatMessage is a single message in the conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatFormat is the structured-output hint.
type chatFormat struct {
	Type string `json:"type"`
}

// chatResponse is the response body from the chat completions API.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// Complete sends one chat completion request and returns the trimmed
// reply text.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	var messages []chatMessage
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:    c.Model,
		Messages: messages,
	}
	if req.JSONObject {
		body.ResponseFormat = &chatFormat{Type: "json_object"}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling language model API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", httputil.ErrorFromResponse("language model API", resp)
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding language model response: %w", err)
	}

	if len(cResp.Choices) == 0 {
		return "", fmt.Errorf("language model returned no choices")
	}

	return strings.TrimSpace(cResp.Choices[0].Message.Content), nil
}
