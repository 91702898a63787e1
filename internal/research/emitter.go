package research

// Transport event names.
const (
	EventChunk         = "chunk"
	EventEndGeneration = "end_generation"
)

// Emitter is the publish-only transport sink incremental output is pushed
// through. Implementations must preserve emit order within a session.
type Emitter interface {
	Emit(event string, payload interface{})
}

// ChunkEvent is one incremental batch of shaped parts, or, at session end,
// a batch carrying only the citation payload.
type ChunkEvent struct {
	ChatID    string            `json:"chatId"`
	RequestID string            `json:"requestId"`
	Step      string            `json:"step"`
	Parts     []ShapedPart      `json:"parts,omitempty"`
	Provider  string            `json:"provider"`
	Grounding *GroundingPayload `json:"grounding,omitempty"`
}

// EndEvent is the terminal signal of a session.
type EndEvent struct {
	OK        bool   `json:"ok"`
	ChatID    string `json:"chatId"`
	RequestID string `json:"requestId"`
}
