package research

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/deepdive/internal/genai"
	"github.com/mohammad-safakhou/deepdive/internal/telemetry"
)

// PhaseNote is one append-only log entry produced by a completed phase.
// Notes are concatenated in order to build the context for later phases.
type PhaseNote struct {
	Tag  string
	Body string
}

// Options configures one session. Every knob is explicit; nothing is read
// from the environment at run time.
type Options struct {
	ChatID             string
	RequestID          string
	Provider           string
	BaseModel          string
	FinalizeModel      string
	DefaultInstruction string
	UserInstruction    string

	MaxCycles              int
	MaxConsecutiveResearch int
	CitationSummaries      bool
	SummarySources         int
	SummaryQueries         int
	ResolveTitles          bool
	ThinkingBudget         int
	Debug                  bool
}

func (o Options) normalized() Options {
	if o.RequestID == "" {
		o.RequestID = uuid.New().String()
	}
	if o.Provider == "" {
		o.Provider = "gemini"
	}
	if o.FinalizeModel == "" {
		o.FinalizeModel = o.BaseModel
	}
	if o.MaxCycles <= 0 {
		o.MaxCycles = 5
	}
	if o.MaxConsecutiveResearch <= 0 {
		o.MaxConsecutiveResearch = 3
	}
	if o.SummarySources <= 0 {
		o.SummarySources = 10
	}
	if o.SummaryQueries <= 0 {
		o.SummaryQueries = 10
	}
	return o
}

// Session drives one research workflow: a fixed prelude (clarify, plan), a
// bounded research/control loop, and a single finalize step. A session is
// single-use and not safe for concurrent use.
type Session struct {
	opts      Options
	svc       Service
	emitter   Emitter
	logger    *log.Logger
	tele      *telemetry.Telemetry
	grounding *Grounding
	shaper    shaper
	notes     []PhaseNote
}

// NewSession builds a session. emitter and tele may be nil.
func NewSession(svc Service, emitter Emitter, logger *log.Logger, tele *telemetry.Telemetry, opts Options) *Session {
	if logger == nil {
		logger = log.New(log.Writer(), "[SESSION] ", log.LstdFlags)
	}
	return &Session{
		opts:      opts.normalized(),
		svc:       svc,
		emitter:   emitter,
		logger:    logger,
		tele:      tele,
		grounding: NewGrounding(),
	}
}

// Grounding exposes the session's accumulated grounding state.
func (s *Session) Grounding() *Grounding { return s.grounding }

// Run executes the whole workflow for one user message. Structured output
// failures degrade gracefully; upstream errors propagate unretried and the
// caller owns the user-visible error signal. The context is checked between
// phases, so cancellation takes effect at phase boundaries and aborts any
// in-flight streamed call.
func (s *Session) Run(ctx context.Context, message string, history []genai.Content) (err error) {
	s.tele.SessionStarted()
	defer func() {
		if err != nil {
			s.tele.SessionFailed()
			s.logger.Printf("session %s failed: %v", s.opts.RequestID, err)
		}
	}()

	conv := s.svc.StartChat(s.opts.BaseModel, s.systemInstruction(), history)

	res, err := s.runPhase(ctx, conv, PhaseClarify, clarifyPrompt(message))
	if err != nil {
		return err
	}
	s.appendNote(PhaseClarify, res)
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err = s.runPhase(ctx, conv, PhasePlan, planPrompt(message, s.contextFor()))
	if err != nil {
		return err
	}
	s.appendNote(PhasePlan, res)

	cycles := 0
	consecutive := 0
	for cycle := 1; ; cycle++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		cycles = cycle
		res, err = s.runPhase(ctx, conv, PhaseResearch, researchPrompt(cycle, s.contextFor(), s.groundingBrief()))
		if err != nil {
			return err
		}
		s.appendNote(PhaseResearch, res)
		if err := ctx.Err(); err != nil {
			return err
		}

		ctrl, err := s.runPhase(ctx, conv, PhaseControl, controlPrompt(cycle, s.opts.MaxCycles))
		if err != nil {
			return err
		}
		dec := ParseDecision(ctrl.calls)
		if dec.Notes != "" {
			s.notes = append(s.notes, PhaseNote{Tag: tagControlNotes, Body: dec.Notes})
		}
		if dec.Action == ActionResearch && consecutive >= s.opts.MaxConsecutiveResearch {
			s.logger.Printf("session %s: %d consecutive research decisions, forcing final", s.opts.RequestID, consecutive)
			dec.Action = ActionFinal
		}
		if dec.Action == ActionResearch {
			consecutive++
		} else {
			consecutive = 0
		}
		if dec.Action == ActionFinal {
			break
		}
		if cycle >= s.opts.MaxCycles {
			s.logger.Printf("session %s: cycle cap %d reached, forcing final", s.opts.RequestID, s.opts.MaxCycles)
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Finalize runs on a fresh conversation seeded with the accumulated
	// history, with no tools and without the control decision notes.
	finalConv := s.svc.StartChat(s.opts.FinalizeModel, s.finalSystemInstruction(), conv.History())
	finalRes, err := s.runPhase(ctx, finalConv, PhaseFinal, finalPrompt(message, s.contextFor(tagControlNotes)))
	if err != nil {
		return err
	}
	if !finalRes.hasAnswer {
		s.logger.Printf("session %s: finalize produced no answer text", s.opts.RequestID)
	}

	if snapshot := s.grounding.Snapshot(); snapshot != nil && s.emitter != nil {
		if s.opts.ResolveTitles {
			resolveTitles(ctx, snapshot, nil)
		}
		s.emitter.Emit(EventChunk, ChunkEvent{
			ChatID:    s.opts.ChatID,
			RequestID: s.opts.RequestID,
			Step:      string(PhaseFinal),
			Provider:  s.opts.Provider,
			Grounding: snapshot,
		})
	}
	if s.emitter != nil {
		s.emitter.Emit(EventEndGeneration, EndEvent{OK: true, ChatID: s.opts.ChatID, RequestID: s.opts.RequestID})
	}
	s.tele.SessionCompleted(cycles)
	return nil
}

// appendNote records the phase's structured block, or, when the block was
// not found, the raw phase output behind a diagnostic marker. Loss of
// structure degrades, it never aborts the session.
func (s *Session) appendNote(phase Phase, res *phaseResult) {
	tag := phaseTable[phase].noteTag
	if tag == "" {
		return
	}
	body, ok := res.blocks[tag]
	if !ok {
		body = "[unstructured phase output]\n" + strings.TrimSpace(res.text)
	}
	s.notes = append(s.notes, PhaseNote{Tag: tag, Body: body})
}

// contextFor concatenates the note log as tagged blocks, skipping excluded
// tags. Notes are never deleted, only filtered here.
func (s *Session) contextFor(exclude ...string) string {
	skip := make(map[string]struct{}, len(exclude))
	for _, tag := range exclude {
		skip[tag] = struct{}{}
	}
	var blocks []string
	for _, n := range s.notes {
		if _, ok := skip[n.Tag]; ok {
			continue
		}
		blocks = append(blocks, WrapBlock(n.Tag, n.Body))
	}
	return strings.Join(blocks, "\n\n")
}

func (s *Session) groundingBrief() string {
	if !s.opts.CitationSummaries {
		return ""
	}
	return s.grounding.Summary(s.opts.SummarySources, s.opts.SummaryQueries)
}

func (s *Session) systemInstruction() string {
	base := s.opts.DefaultInstruction
	if base == "" {
		base = defaultSystemInstruction
	}
	return joinInstructions(base, s.opts.UserInstruction)
}

func (s *Session) finalSystemInstruction() string {
	return joinInstructions(finalSystemInstruction, s.opts.UserInstruction)
}

func joinInstructions(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, "\n\n")
}
