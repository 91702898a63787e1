package research

import (
	"context"
	"io"
	"time"

	"github.com/mohammad-safakhou/deepdive/internal/genai"
)

// Phase is one discrete step of the research workflow.
type Phase string

const (
	PhaseClarify  Phase = "clarify"
	PhasePlan     Phase = "plan"
	PhaseResearch Phase = "research"
	PhaseControl  Phase = "control"
	PhaseFinal    Phase = "final"
)

// Note tags, doubling as the structured block names phases emit.
const (
	tagClarification = "CLARIFICATION"
	tagPlan          = "RESEARCH_PLAN"
	tagResearchNotes = "RESEARCH_NOTES"
	tagControlNotes  = "CONTROL_NOTES"
)

// phaseSpec fixes the behaviour of one phase: which tools it may use, how
// its stream parts are flagged, and which structured blocks it emits. The
// table is static; tool selection is never a runtime decision.
type phaseSpec struct {
	noteTag       string
	blocks        []string
	tools         []genai.Tool
	forceThoughts bool
	forceAnswer   bool
	thoughts      bool
}

var phaseTable = map[Phase]phaseSpec{
	PhaseClarify: {
		noteTag:       tagClarification,
		blocks:        []string{tagClarification},
		forceThoughts: true,
		thoughts:      true,
	},
	PhasePlan: {
		noteTag:       tagPlan,
		blocks:        []string{tagPlan},
		forceThoughts: true,
		thoughts:      true,
	},
	PhaseResearch: {
		noteTag:       tagResearchNotes,
		blocks:        []string{tagResearchNotes},
		tools:         []genai.Tool{genai.GoogleSearchTool(), genai.URLContextTool()},
		forceThoughts: true,
		thoughts:      true,
	},
	PhaseControl: {
		noteTag:       tagControlNotes,
		tools:         []genai.Tool{DecisionTool()},
		forceThoughts: true,
		thoughts:      true,
	},
	PhaseFinal: {
		forceAnswer: true,
		thoughts:    true,
	},
}

// phaseResult is everything one completed phase produced.
type phaseResult struct {
	calls     []genai.FunctionCall
	hasAnswer bool
	text      string
	blocks    map[string]string
}

// runPhase executes exactly one phase: it opens a streamed generation call
// and, per chunk, shapes and forwards output parts, feeds citation metadata
// and tool calls to the grounding accumulator, and collects full text and
// function calls. Upstream errors propagate unretried.
func (s *Session) runPhase(ctx context.Context, conv Conversation, phase Phase, prompt string) (*phaseResult, error) {
	spec := phaseTable[phase]
	start := time.Now()
	if s.opts.Debug {
		s.logger.Printf("phase %s: starting (request %s)", phase, s.opts.RequestID)
	}

	var thinking *genai.ThinkingConfig
	if spec.thoughts {
		thinking = &genai.ThinkingConfig{IncludeThoughts: true}
		if s.opts.ThinkingBudget != 0 {
			budget := s.opts.ThinkingBudget
			thinking.ThinkingBudget = &budget
		}
	}

	stream, err := conv.SendStream(ctx, prompt, genai.StreamOptions{Tools: spec.tools, Thinking: thinking})
	if err != nil {
		return nil, err
	}

	res := &phaseResult{blocks: make(map[string]string)}
	var text []byte
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		parts := chunk.Parts()
		shaped, answer := s.shaper.shape(parts, phase, spec.forceThoughts, spec.forceAnswer)
		if answer {
			res.hasAnswer = true
		}
		if len(shaped) > 0 && s.emitter != nil {
			s.emitter.Emit(EventChunk, ChunkEvent{
				ChatID:    s.opts.ChatID,
				RequestID: s.opts.RequestID,
				Step:      string(phase),
				Parts:     shaped,
				Provider:  s.opts.Provider,
			})
		}
		s.grounding.AddMetadata(chunk.Grounding())
		for _, p := range parts {
			if p.Text != "" {
				text = append(text, p.Text...)
			}
			if p.FunctionCall != nil {
				res.calls = append(res.calls, *p.FunctionCall)
				s.grounding.AddCall(*p.FunctionCall)
			}
		}
	}

	res.text = string(text)
	for _, name := range spec.blocks {
		if body, ok := ExtractBlock(res.text, name); ok {
			res.blocks[name] = body
		}
	}

	s.tele.PhaseExecuted(string(phase), time.Since(start))
	if s.opts.Debug {
		s.logger.Printf("phase %s: done in %s (%d chars, %d calls)", phase, time.Since(start).Round(time.Millisecond), len(res.text), len(res.calls))
	}
	return res, nil
}
