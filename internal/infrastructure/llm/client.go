package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tourassist/backend/internal/domain/chat"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/embedding"
	"github.com/tourassist/backend/internal/infrastructure/log"
	"golang.org/x/time/rate"
)

// Canned replies
const (
	OfflinePrefix = "Based on the provided documents, here is what I found:\n"
	FailureReply  = "I'm sorry, I'm having trouble right now. Please try again shortly."
)

// Client calls an OpenAI-compatible chat completions endpoint. Without an API
// key it answers locally by echoing the prompt; provider failures are absorbed
// into FailureReply.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ChatRequest Chat API request
type ChatRequest struct {
	Messages []Message `json:"messages"`
	Model    string    `json:"model,omitempty"`
}

// Message Chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse Chat API response
type ChatResponse struct {
	ID      string `json:"id,omitempty"`
	Object  string `json:"object,omitempty"`
	Created int64  `json:"created,omitempty"`
	Model   string `json:"model,omitempty"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// NewClient creates an LLM client
func NewClient(cfg *config.ProviderConfig) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.ChatModel,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: embedding.NewLimiter(cfg.RPS),
		logger:  log.NewModuleLogger("llm", "client"),
	}
}

// Complete answers turns. It never fails; errors become FailureReply.
func (c *Client) Complete(ctx context.Context, turns []chat.Turn) chat.Completion {
	if c.apiKey == "" {
		return c.offline(turns)
	}

	content, tokens, err := c.request(ctx, turns)
	if err != nil {
		log.FromContext(ctx, c.logger).Error("Chat completion failed", "model", c.model, "error", err)
		return newCompletion(FailureReply, EstimateTokens(FailureReply))
	}
	return newCompletion(content, tokens)
}

// offline echoes the non-system turns
func (c *Client) offline(turns []chat.Turn) chat.Completion {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		if t.Role == chat.RoleSystem {
			continue
		}
		parts = append(parts, t.Content)
	}
	content := strings.Join(parts, "\n")
	return newCompletion(OfflinePrefix+content, EstimateTokens(content))
}

func (c *Client) request(ctx context.Context, turns []chat.Turn) (string, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", 0, fmt.Errorf("rate limiter: %w", err)
	}

	messages := make([]Message, len(turns))
	for i, t := range turns {
		messages[i] = Message{Role: t.Role, Content: t.Content}
	}
	jsonData, err := json.Marshal(ChatRequest{Messages: messages, Model: c.model})
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	c.logger.Debug("Sending chat completion request",
		"url", url,
		"model", c.model,
		"messages", len(messages),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("LLM API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", 0, fmt.Errorf("LLM API returned status %d: %s", resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", 0, fmt.Errorf("failed to decode LLM response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", 0, fmt.Errorf("LLM API returned no choices")
	}

	content := chatResp.Choices[0].Message.Content
	tokens := c.countTokens(chatResp, content)

	c.logger.Debug("Chat completion successful", "model", c.model, "tokens", tokens)
	return content, tokens, nil
}

// countTokens prefers provider usage, then tiktoken, then the word estimate
func (c *Client) countTokens(resp ChatResponse, content string) int {
	if resp.Usage != nil {
		return resp.Usage.TotalTokens
	}
	if counter, err := GetTokenCounter(); err == nil {
		if n := counter.CountTokens(content); n > 0 {
			return n
		}
	} else {
		c.logger.Warn("Token counter unavailable, estimating from words", "error", err)
	}
	return EstimateTokens(content)
}

func newCompletion(content string, tokens int) chat.Completion {
	return chat.Completion{
		Content:       content,
		TokensUsed:    tokens,
		EstimatedCost: EstimateCost(tokens),
	}
}
