package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/deepdive/config"
)

// Client talks to the hosted generation service over its streaming REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a generation client from configuration.
func New(cfg config.LLMConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Chat is a conversation bound to one model and system instruction. History
// grows as turns are exchanged; it is not safe for concurrent use.
type Chat struct {
	client  *Client
	model   string
	system  string
	history []Content
}

// StartChat creates a conversation seeded with prior history. Passing the
// history of another chat continues it under a different model or system
// instruction.
func (c *Client) StartChat(model, system string, history []Content) *Chat {
	h := make([]Content, len(history))
	copy(h, history)
	return &Chat{client: c, model: model, system: system, history: h}
}

// History returns a copy of the accumulated conversation turns.
func (ch *Chat) History() []Content {
	h := make([]Content, len(ch.history))
	copy(h, ch.history)
	return h
}

// StreamOptions configures one streamed generation call.
type StreamOptions struct {
	Tools    []Tool
	Thinking *ThinkingConfig
}

type generationConfig struct {
	ThinkingConfig *ThinkingConfig `json:"thinkingConfig,omitempty"`
}

type generateRequest struct {
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	Contents          []Content         `json:"contents"`
	Tools             []Tool            `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

// SendStream appends the user message to the conversation and opens a
// streamed generation call. The reply is folded back into the chat history
// once the stream is drained.
func (ch *Chat) SendStream(ctx context.Context, text string, opts StreamOptions) (*Stream, error) {
	ch.history = append(ch.history, Content{Role: "user", Parts: []Part{{Text: text}}})

	req := generateRequest{Contents: ch.history, Tools: opts.Tools}
	if ch.system != "" {
		req.SystemInstruction = &Content{Parts: []Part{{Text: ch.system}}}
	}
	if opts.Thinking != nil {
		req.GenerationConfig = &generationConfig{ThinkingConfig: opts.Thinking}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", ch.client.baseURL, ch.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", ch.client.apiKey)

	resp, err := ch.client.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Stream{chat: ch, body: resp.Body, scanner: scanner}, nil
}

// Stream consumes server-sent events from one generation call.
type Stream struct {
	chat    *Chat
	body    io.ReadCloser
	scanner *bufio.Scanner
	reply   []Part
	done    bool
}

// Recv returns the next chunk, or io.EOF when the stream is exhausted.
// On EOF the aggregated reply is appended to the chat history.
func (s *Stream) Recv() (*Chunk, error) {
	if s.done {
		return nil, io.EOF
	}
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		var chunk Chunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to decode stream chunk: %w", err)
		}
		s.collect(&chunk)
		return &chunk, nil
	}
	err := s.scanner.Err()
	s.Close()
	if err != nil {
		return nil, fmt.Errorf("stream read failed: %w", err)
	}
	return nil, io.EOF
}

// collect retains the reply parts that belong in the conversation history:
// answer text and function calls, not intermediate thoughts.
func (s *Stream) collect(chunk *Chunk) {
	for _, p := range chunk.Parts() {
		if p.Thought {
			continue
		}
		if p.Text != "" || p.FunctionCall != nil {
			s.reply = append(s.reply, p)
		}
	}
}

// Close releases the underlying response body and seals the chat history.
func (s *Stream) Close() {
	if s.done {
		return
	}
	s.done = true
	s.body.Close()
	if len(s.reply) > 0 {
		s.chat.history = append(s.chat.history, Content{Role: "model", Parts: s.reply})
	}
}
