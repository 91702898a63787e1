package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/deepdive/config"
	"github.com/mohammad-safakhou/deepdive/internal/genai"
	"github.com/mohammad-safakhou/deepdive/internal/research"
	"github.com/mohammad-safakhou/deepdive/internal/telemetry"
)

// ResearchHandler runs research sessions and streams their output over SSE.
type ResearchHandler struct {
	cfg    *config.Config
	svc    research.Service
	tele   *telemetry.Telemetry
	logger *log.Logger
}

func NewResearchHandler(cfg *config.Config, svc research.Service, tele *telemetry.Telemetry) *ResearchHandler {
	return &ResearchHandler{
		cfg:    cfg,
		svc:    svc,
		tele:   tele,
		logger: log.New(log.Writer(), "[RESEARCH] ", log.LstdFlags),
	}
}

type historyTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type researchRequest struct {
	ChatID      string        `json:"chat_id"`
	Message     string        `json:"message"`
	Instruction string        `json:"instruction,omitempty"`
	History     []historyTurn `json:"history,omitempty"`
	MaxCycles   int           `json:"max_cycles,omitempty"`
}

// run executes one research session, streaming chunk events and a terminal
// end_generation event to the client.
func (h *ResearchHandler) run(c echo.Context) error {
	var req researchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	if req.ChatID == "" {
		req.ChatID = uuid.New().String()
	}
	maxCycles := h.cfg.Research.MaxCycles
	if req.MaxCycles > 0 && req.MaxCycles < maxCycles {
		maxCycles = req.MaxCycles
	}

	emitter, err := newSSEEmitter(c)
	if err != nil {
		return err
	}

	requestID := uuid.New().String()
	sess := research.NewSession(h.svc, emitter, h.logger, h.tele, research.Options{
		ChatID:                 req.ChatID,
		RequestID:              requestID,
		BaseModel:              h.cfg.LLM.Model,
		FinalizeModel:          h.cfg.FinalizeModelOrDefault(),
		UserInstruction:        req.Instruction,
		MaxCycles:              maxCycles,
		MaxConsecutiveResearch: h.cfg.Research.MaxConsecutiveResearch,
		CitationSummaries:      h.cfg.Research.CitationSummaries,
		SummarySources:         h.cfg.Research.SummarySources,
		SummaryQueries:         h.cfg.Research.SummaryQueries,
		ResolveTitles:          h.cfg.Research.ResolveTitles,
		ThinkingBudget:         h.cfg.LLM.ThinkingBudget,
		Debug:                  h.cfg.General.Debug,
	})

	history := make([]genai.Content, 0, len(req.History))
	for _, turn := range req.History {
		role := turn.Role
		if role != "model" {
			role = "user"
		}
		history = append(history, genai.Content{Role: role, Parts: []genai.Part{{Text: turn.Text}}})
	}

	if err := sess.Run(c.Request().Context(), req.Message, history); err != nil {
		h.logger.Printf("session %s aborted: %v", requestID, err)
		emitter.Emit("error", map[string]interface{}{
			"chatId":    req.ChatID,
			"requestId": requestID,
			"message":   err.Error(),
		})
		emitter.Emit(research.EventEndGeneration, research.EndEvent{OK: false, ChatID: req.ChatID, RequestID: requestID})
	}
	return nil
}
