package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourassist/backend/internal/domain/chat"
	"github.com/tourassist/backend/internal/infrastructure/config"
)

func testTurns() []chat.Turn {
	return []chat.Turn{
		{Role: chat.RoleSystem, Content: "be helpful"},
		{Role: chat.RoleUser, Content: "hello there"},
		{Role: chat.RoleAssistant, Content: "hi"},
		{Role: chat.RoleUser, Content: "Context:\nspa\n\nQuestion: when"},
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"one", 1},
		{"one two", 2},
		{"one two three four five six seven eight nine ten", 13},
		{"  spaced\tout\nwords ", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateTokens(tt.text), tt.text)
	}
}

func TestEstimateCost(t *testing.T) {
	assert.Equal(t, 0.0, EstimateCost(0))
	assert.Equal(t, 0.000001, EstimateCost(2))
	assert.Equal(t, 0.0005, EstimateCost(1000))
	// 3 * 5e-7 = 1.5e-6 rounds to 6 places
	assert.InDelta(t, 0.000002, EstimateCost(3), 1e-12)
}

func TestComplete_Offline(t *testing.T) {
	client := NewClient(&config.ProviderConfig{BaseURL: "http://unused", Timeout: time.Second})

	got := client.Complete(context.Background(), testTurns())

	body := "hello there\nhi\nContext:\nspa\n\nQuestion: when"
	assert.Equal(t, OfflinePrefix+body, got.Content)
	assert.Equal(t, EstimateTokens(body), got.TokensUsed)
	assert.Equal(t, EstimateCost(got.TokensUsed), got.EstimatedCost)
}

func TestComplete_Provider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-chat", r.Header.Get("Authorization"))

		var req ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Len(t, req.Messages, 4)
		assert.Equal(t, chat.RoleSystem, req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"The spa opens at 9."}}],"usage":{"total_tokens":42}}`))
	}))
	defer server.Close()

	client := NewClient(&config.ProviderConfig{
		BaseURL:   server.URL + "/v1/",
		APIKey:    "sk-chat",
		ChatModel: "gpt-4o-mini",
		Timeout:   5 * time.Second,
	})

	got := client.Complete(context.Background(), testTurns())
	assert.Equal(t, "The spa opens at 9.", got.Content)
	assert.Equal(t, 42, got.TokensUsed)
	assert.Equal(t, EstimateCost(42), got.EstimatedCost)
}

func TestComplete_MissingUsageCountsTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Open daily."}}]}`))
	}))
	defer server.Close()

	client := NewClient(&config.ProviderConfig{BaseURL: server.URL, APIKey: "k", Timeout: 5 * time.Second})
	got := client.Complete(context.Background(), testTurns())

	assert.Equal(t, "Open daily.", got.Content)
	assert.Positive(t, got.TokensUsed)
}

func TestComplete_ProviderFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"bad json", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(&config.ProviderConfig{BaseURL: server.URL, APIKey: "k", Timeout: 5 * time.Second})
			got := client.Complete(context.Background(), testTurns())

			assert.Equal(t, FailureReply, got.Content)
			assert.Equal(t, EstimateTokens(FailureReply), got.TokensUsed)
		})
	}
}

func TestTokenCounter(t *testing.T) {
	counter, err := GetTokenCounter()
	require.NoError(t, err)

	assert.Equal(t, 0, counter.CountTokens(""))
	assert.Positive(t, counter.CountTokens("The museum opens at 10am daily"))

	again, err := GetTokenCounter()
	require.NoError(t, err)
	assert.Same(t, counter, again)
}
