package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteMissingAPIKey(t *testing.T) {
	client := NewClient("", "https://example.com", "gemini-2.0-flash", time.Second)

	_, err := client.Complete(context.Background(), "hello")
	require.ErrorIs(t, err, ErrMissingAPIKey)

	var confErr interface{ ConfigurationError() bool }
	require.ErrorAs(t, err, &confErr)
	assert.True(t, confErr.ConfigurationError())
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-goog-api-key"))

		request := &generateContentRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(request))
		require.Len(t, request.Contents, 1)
		require.Len(t, request.Contents[0].Parts, 1)
		assert.Equal(t, "hello", request.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hi there"}]}}]}`))
	}))
	defer server.Close()

	client := NewClient("secret", server.URL, "gemini-2.0-flash", time.Second)
	reply, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)
}

func TestCompleteEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewClient("secret", server.URL, "gemini-2.0-flash", time.Second)
	reply, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestCompleteNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("secret", server.URL, "gemini-2.0-flash", time.Second)
	_, err := client.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	var confErr interface{ ConfigurationError() bool }
	assert.False(t, errors.As(err, &confErr), "transport errors are not configuration errors")
}
