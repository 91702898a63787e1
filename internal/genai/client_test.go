package genai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mohammad-safakhou/deepdive/config"
)

func sseBody(events ...string) string {
	var b strings.Builder
	for _, e := range events {
		b.WriteString("data: " + e + "\n\n")
	}
	return b.String()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := New(config.LLMConfig{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5 * time.Second})
	return client, srv
}

func TestSendStreamParsesChunks(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/test-model:streamGenerateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseBody(
			`{"candidates":[{"content":{"role":"model","parts":[{"text":"thinking","thought":true}]}}]}`,
			`{"candidates":[{"content":{"role":"model","parts":[{"text":"hello"}]},"finishReason":"STOP"}]}`,
		))
	})

	chat := client.StartChat("test-model", "be brief", nil)
	stream, err := chat.SendStream(context.Background(), "hi", StreamOptions{})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	first, err := stream.Recv()
	if err != nil {
		t.Fatalf("first recv failed: %v", err)
	}
	if parts := first.Parts(); len(parts) != 1 || !parts[0].Thought || parts[0].Text != "thinking" {
		t.Fatalf("unexpected first chunk: %+v", parts)
	}

	second, err := stream.Recv()
	if err != nil {
		t.Fatalf("second recv failed: %v", err)
	}
	if second.FinishReason() != "STOP" {
		t.Fatalf("expected finish reason, got %q", second.FinishReason())
	}

	if _, err := stream.Recv(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestSendStreamFoldsReplyIntoHistory(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sseBody(
			`{"candidates":[{"content":{"role":"model","parts":[{"text":"scratch","thought":true},{"text":"answer"}]}}]}`,
		))
	})

	chat := client.StartChat("test-model", "", nil)
	stream, err := chat.SendStream(context.Background(), "question", StreamOptions{})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	for {
		if _, err := stream.Recv(); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("recv failed: %v", err)
		}
	}

	history := chat.History()
	if len(history) != 2 {
		t.Fatalf("expected user+model turns, got %d", len(history))
	}
	if history[0].Role != "user" || history[0].Parts[0].Text != "question" {
		t.Fatalf("unexpected user turn: %+v", history[0])
	}
	// Thought parts stay out of history.
	if len(history[1].Parts) != 1 || history[1].Parts[0].Text != "answer" {
		t.Fatalf("unexpected model turn: %+v", history[1])
	}
}

func TestSendStreamParsesFunctionCalls(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sseBody(
			`{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"next_step","args":{"action":"final"}}}]}}]}`,
		))
	})

	chat := client.StartChat("test-model", "", nil)
	stream, err := chat.SendStream(context.Background(), "decide", StreamOptions{})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	chunk, err := stream.Recv()
	if err != nil {
		t.Fatalf("recv failed: %v", err)
	}
	parts := chunk.Parts()
	if len(parts) != 1 || parts[0].FunctionCall == nil || parts[0].FunctionCall.Name != "next_step" {
		t.Fatalf("unexpected parts: %+v", parts)
	}
}

func TestSendStreamErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	})

	chat := client.StartChat("test-model", "", nil)
	if _, err := chat.SendStream(context.Background(), "hi", StreamOptions{}); err == nil {
		t.Fatalf("expected error for non-200 status")
	} else if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestStartChatCopiesHistory(t *testing.T) {
	client := New(config.LLMConfig{APIKey: "k", BaseURL: "http://localhost"})
	seed := []Content{{Role: "user", Parts: []Part{{Text: "earlier"}}}}
	chat := client.StartChat("m", "", seed)
	seed[0] = Content{Role: "model", Parts: []Part{{Text: "overwritten"}}}
	if got := chat.History(); got[0].Role != "user" || got[0].Parts[0].Text != "earlier" {
		t.Fatalf("seed mutation leaked into chat history: %+v", got[0])
	}
}
