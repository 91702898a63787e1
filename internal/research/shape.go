package research

import (
	"github.com/mohammad-safakhou/deepdive/internal/genai"
)

// ShapedPart is a text fragment ready for the transport layer, tagged as
// model thought or user-visible answer.
type ShapedPart struct {
	Text    string `json:"text"`
	Thought bool   `json:"thought"`
}

// shaper normalizes the parts of one stream chunk: it drops empty parts,
// applies thought overrides, and inserts separators at phase transitions and
// thought-to-answer boundaries. One shaper belongs to one session; the
// last-emitted-phase marker is session state, never shared across sessions.
type shaper struct {
	lastPhase   Phase
	lastThought bool
}

// shape converts the parts of one chunk into shaped parts and reports
// whether any answer (non-thought) text was produced.
func (s *shaper) shape(parts []genai.Part, phase Phase, forceThoughts, forceAnswer bool) ([]ShapedPart, bool) {
	var shaped []ShapedPart
	hasAnswer := false
	for _, p := range parts {
		if p.Text == "" {
			continue
		}
		thought := p.Thought
		if forceThoughts {
			thought = true
		}
		if forceAnswer {
			thought = false
		}
		text := p.Text
		if len(shaped) == 0 {
			// The phase-transition separator wins over the thought
			// boundary; the latter also spans chunks within a phase.
			if s.lastPhase != "" && s.lastPhase != phase {
				text = "\n\n" + text
			} else if s.lastThought && !thought {
				text = "\n" + text
			}
		} else if shaped[len(shaped)-1].Thought && !thought {
			text = "\n" + text
		}
		shaped = append(shaped, ShapedPart{Text: text, Thought: thought})
		if !thought {
			hasAnswer = true
		}
	}
	if len(shaped) > 0 {
		s.lastPhase = phase
		s.lastThought = shaped[len(shaped)-1].Thought
	}
	return shaped, hasAnswer
}
