// Package gemini is a minimal client for the generateContent REST endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// ErrMissingAPIKey indicates the client has no credential. It is a
// configuration error: callers recover with a fallback reply, never a crash.
var ErrMissingAPIKey = missingKeyError{}

type missingKeyError struct{}

func (missingKeyError) Error() string { return "gemini api key not configured" }

// ConfigurationError marks this as a setup problem rather than a transport
// failure.
func (missingKeyError) ConfigurationError() bool { return true }

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey     string
	apiHost    string
	model      string
	httpClient *http.Client
}

// NewClient builds a client. An empty apiKey is allowed; Complete then
// returns ErrMissingAPIKey so the pipeline can degrade gracefully.
func NewClient(apiKey, apiHost, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		apiHost:    apiHost,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Wire format of generateContent.
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Complete sends the prompt and returns the generated reply text. A response
// carrying no candidates returns "" with a nil error; distinguishing the
// empty payload is the caller's concern.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(&generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", errors.Wrap(err, "marshaling request")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.apiHost, c.model)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building request")
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-goog-api-key", c.apiKey)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", errors.Wrap(err, "posting request")
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return "", errors.Errorf("generateContent returned %s: %s", response.Status, payload)
	}

	decoded := &generateContentResponse{}
	if err := json.NewDecoder(response.Body).Decode(decoded); err != nil {
		return "", errors.Wrap(err, "decoding response")
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
