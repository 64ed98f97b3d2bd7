package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Attachment is a file the user pinned to their message, passed through to
// the assistant untouched.
type Attachment struct {
	Name          string `json:"name"`
	Mime          string `json:"mime"`
	ContentString string `json:"contentString"`
}

// StreamRequest addresses one chat turn at the assistant backend.
type StreamRequest struct {
	WorkspaceSlug string
	ThreadSlug    string
	Message       string
	Attachments   []Attachment
}

// TransportError is a non-2xx reply from the assistant backend. Status and
// body are preserved for the failure surface.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("assistant error: status %d, body: %s", e.StatusCode, e.Body)
}

// Streamer opens an event stream for one chat turn.
type Streamer interface {
	StreamChat(ctx context.Context, req StreamRequest) (io.ReadCloser, error)
}

// HTTPClient talks to the assistant's workspace/thread streaming API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		// No overall timeout: streams stay open as long as the model talks.
		// Cancellation comes from the request context.
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 60 * time.Second,
			},
		},
	}
}

type streamChatBody struct {
	Message     string       `json:"message"`
	Mode        string       `json:"mode"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// StreamChat opens the event stream for a turn. The caller owns the returned
// body and must close it; cancelling ctx tears the stream down mid-flight.
func (c *HTTPClient) StreamChat(ctx context.Context, req StreamRequest) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/api/v1/workspace/%s/thread/%s/stream-chat",
		c.baseURL, req.WorkspaceSlug, req.ThreadSlug)

	payload, err := json.Marshal(streamChatBody{
		Message:     req.Message,
		Mode:        "chat",
		Attachments: req.Attachments,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach assistant: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return resp.Body, nil
}
