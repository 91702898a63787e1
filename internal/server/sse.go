package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

// sseEmitter pushes session events to the client as server-sent events.
// Emit order is preserved; writes after a client disconnect are dropped.
type sseEmitter struct {
	mu      sync.Mutex
	resp    *echo.Response
	flusher http.Flusher
	logger  *log.Logger
	dead    bool
}

func newSSEEmitter(c echo.Context) (*sseEmitter, error) {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	flusher, ok := resp.Writer.(http.Flusher)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "streaming unsupported")
	}
	return &sseEmitter{
		resp:    resp,
		flusher: flusher,
		logger:  log.New(log.Writer(), "[SSE] ", log.LstdFlags),
	}, nil
}

func (e *sseEmitter) Emit(event string, payload interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.Printf("drop %s event: %v", event, err)
		return
	}
	if _, err := e.resp.Write([]byte("event: " + event + "\n")); err != nil {
		e.dead = true
		return
	}
	if _, err := e.resp.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
		e.dead = true
		return
	}
	e.flusher.Flush()
}
