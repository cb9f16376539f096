package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"chefmind/internal/infrastructure/config"
	"chefmind/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func clientFor(baseURL, apiKey string) *Client {
	return NewClient(&config.Config{Groq: config.GroqConfig{
		APIKey:    apiKey,
		BaseURL:   baseURL,
		Model:     "llama-3.3-70b-versatile",
		PlanModel: "llama-3.1-8b-instant",
		Timeout:   2 * time.Second,
	}})
}

func completionBody(content string) string {
	resp := Response{
		ID:      "cmpl-1",
		Choices: []Choice{{Message: Message{Role: "assistant", Content: content}}},
		Usage:   UsageInfo{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestComplete(t *testing.T) {
	var got Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("a perfectly sensible answer")))
	}))
	defer server.Close()

	client := clientFor(server.URL, "test-key")

	content, err := client.Complete(context.Background(),
		"llama-3.1-8b-instant", "You are a chef.", "Plan a week.", 1500, 0.8)

	require.NoError(t, err)
	assert.Equal(t, "a perfectly sensible answer", content)
	assert.Equal(t, "llama-3.1-8b-instant", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, Message{Role: "system", Content: "You are a chef."}, got.Messages[0])
	assert.Equal(t, Message{Role: "user", Content: "Plan a week."}, got.Messages[1])
	assert.Equal(t, 1500, got.MaxTokens)
	assert.InDelta(t, 0.8, got.Temperature, 1e-9)
}

func TestComplete_DefaultsModelAndSkipsEmptySystem(t *testing.T) {
	var got Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(completionBody("ok")))
	}))
	defer server.Close()

	client := clientFor(server.URL, "test-key")

	_, err := client.Complete(context.Background(), "", "", "hello", 100, 0.3)

	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestComplete_DisabledWithoutKey(t *testing.T) {
	client := clientFor("http://unused.invalid", "")

	assert.False(t, client.Enabled())

	_, err := client.Complete(context.Background(), "", "", "hello", 100, 0.3)
	assert.Equal(t, common.ErrSourceDisabled, err)
}

func TestComplete_UpstreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := clientFor(server.URL, "test-key")

	_, err := client.Complete(context.Background(), "", "", "hello", 100, 0.3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestComplete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"cmpl-2","choices":[]}`))
	}))
	defer server.Close()

	client := clientFor(server.URL, "test-key")

	_, err := client.Complete(context.Background(), "", "", "hello", 100, 0.3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty content")
}

func TestModelAccessors(t *testing.T) {
	client := clientFor("http://unused.invalid", "k")

	assert.Equal(t, "llama-3.3-70b-versatile", client.Model())
	assert.Equal(t, "llama-3.1-8b-instant", client.PlanModel())
}
