package synth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestCompleteSendsMessagesAndAuth(t *testing.T) {
	var got chatRequest
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"Answer [Page 2]."}}]}`))
	})

	c := NewOpenAIClient(ClientConfig{BaseURL: srv.URL, APIKey: "secret", Model: "m", RequestsPerSecond: 100})
	text, err := c.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)

	assert.Equal(t, "Answer [Page 2].", text)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestCompleteRateLimitStatusIsError(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	c := NewOpenAIClient(ClientConfig{BaseURL: srv.URL, RequestsPerSecond: 100})
	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "429")
}

func TestCompleteAPIErrorPayload(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	})

	c := NewOpenAIClient(ClientConfig{BaseURL: srv.URL, RequestsPerSecond: 100})
	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "model overloaded")
}

func TestCompleteEmptyChoicesIsError(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	c := NewOpenAIClient(ClientConfig{BaseURL: srv.URL, RequestsPerSecond: 100})
	_, err := c.Complete(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestCompleteHonorsContextCancellation(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	})

	c := NewOpenAIClient(ClientConfig{BaseURL: srv.URL, RequestsPerSecond: 100})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, "s", "u")
	assert.Error(t, err)
}
