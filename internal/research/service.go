package research

import (
	"context"

	"github.com/mohammad-safakhou/deepdive/internal/genai"
)

// ChunkStream yields stream chunks in arrival order and io.EOF at the end.
type ChunkStream interface {
	Recv() (*genai.Chunk, error)
}

// Conversation is one model conversation with accumulated history.
type Conversation interface {
	SendStream(ctx context.Context, text string, opts genai.StreamOptions) (ChunkStream, error)
	History() []genai.Content
}

// Service creates conversations against the upstream generation service.
type Service interface {
	StartChat(model, system string, history []genai.Content) Conversation
}

// NewService adapts a genai client to the Service interface.
func NewService(c *genai.Client) Service {
	return clientService{c}
}

type clientService struct {
	client *genai.Client
}

func (s clientService) StartChat(model, system string, history []genai.Content) Conversation {
	return clientConversation{s.client.StartChat(model, system, history)}
}

type clientConversation struct {
	chat *genai.Chat
}

func (c clientConversation) SendStream(ctx context.Context, text string, opts genai.StreamOptions) (ChunkStream, error) {
	return c.chat.SendStream(ctx, text, opts)
}

func (c clientConversation) History() []genai.Content {
	return c.chat.History()
}
