package genai

import "encoding/json"

// Content is one turn of a conversation.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a single fragment of a turn: text (optionally flagged as model
// thought) or a function call.
type Part struct {
	Text         string        `json:"text,omitempty"`
	Thought      bool          `json:"thought,omitempty"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty"`
}

// FunctionCall is a tool invocation emitted by the model. Args is kept raw
// because some models return an object and some a JSON-encoded string.
type FunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Chunk is one increment of a streamed generation.
type Chunk struct {
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Candidate carries the content and metadata of one generation candidate.
type Candidate struct {
	Content           Content            `json:"content"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
	FinishReason      string             `json:"finishReason,omitempty"`
}

// GroundingMetadata holds search queries and cited sources attached to a chunk.
type GroundingMetadata struct {
	WebSearchQueries []string         `json:"webSearchQueries,omitempty"`
	GroundingChunks  []GroundingChunk `json:"groundingChunks,omitempty"`
}

// GroundingChunk is one cited source.
type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

// WebSource identifies a cited web page.
type WebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Parts returns the content parts of the first candidate, if any.
func (c *Chunk) Parts() []Part {
	if c == nil || len(c.Candidates) == 0 {
		return nil
	}
	return c.Candidates[0].Content.Parts
}

// Grounding returns the grounding metadata of the first candidate, if any.
func (c *Chunk) Grounding() *GroundingMetadata {
	if c == nil || len(c.Candidates) == 0 {
		return nil
	}
	return c.Candidates[0].GroundingMetadata
}

// FinishReason returns the finish reason of the first candidate, if any.
func (c *Chunk) FinishReason() string {
	if c == nil || len(c.Candidates) == 0 {
		return ""
	}
	return c.Candidates[0].FinishReason
}
