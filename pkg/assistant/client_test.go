package assistant

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStreamChatSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if want := "/api/v1/workspace/ws-1/thread/th-1/stream-chat"; r.URL.Path != want {
			t.Errorf("path = %s, want %s", r.URL.Path, want)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("auth header = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"type\":\"textResponseChunk\",\"textResponse\":\"hi\"}\n")
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret")
	body, err := c.StreamChat(context.Background(), StreamRequest{
		WorkspaceSlug: "ws-1",
		ThreadSlug:    "th-1",
		Message:       "draft a sow",
	})
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}
	defer body.Close()

	data, _ := io.ReadAll(body)
	if !strings.Contains(string(data), "textResponseChunk") {
		t.Errorf("body = %q", data)
	}
}

func TestStreamChatTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream model unavailable")
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	_, err := c.StreamChat(context.Background(), StreamRequest{WorkspaceSlug: "w", ThreadSlug: "t"})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want TransportError", err)
	}
	if te.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d", te.StatusCode)
	}
	if !strings.Contains(te.Body, "upstream model unavailable") {
		t.Errorf("Body = %q", te.Body)
	}
}

func TestStreamChatContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewHTTPClient("http://127.0.0.1:0", "")
	if _, err := c.StreamChat(ctx, StreamRequest{WorkspaceSlug: "w", ThreadSlug: "t"}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
