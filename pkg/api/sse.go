package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/yourusername/gomoku/pkg/engine"
)

// SSEEvent represents a Server-Sent Event.
type SSEEvent struct {
	Event string      `json:"event"` // Event type: "iteration", "result", "error", "done"
	Data  interface{} `json:"data"`  // Event data
}

// SearchSSE streams the iterations of a search as Server-Sent Events.
// GET /api/search/stream?position=...|moves=...&size=...&side=...&depth=...&time_ms=...
func (h *Handlers) SearchSSE(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Flush function for streaming
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	b, side, err := h.resolvePosition(PositionRequest{
		Position: query.Get("position"),
		Moves:    query.Get("moves"),
		Size:     parseIntParam(query.Get("size"), 0),
		Side:     query.Get("side"),
	})
	if err != nil {
		writeSSEError(w, "invalid position: "+err.Error())
		return
	}
	opts := h.searchOptions(parseIntParam(query.Get("depth"), 0), parseIntParam(query.Get("time_ms"), 0))

	if !h.acquireSSE(w, r) {
		return
	}
	defer h.release(ClassSearch)

	// Progress callback sends one event per completed iteration
	opts.Progress = func(info engine.IterationInfo) {
		writeSSEEvent(w, "iteration", info)
		flusher.Flush()
	}

	res, err := h.engine.Search(r.Context(), b, side, opts)
	if err != nil {
		writeSSEError(w, "search failed: "+err.Error())
		return
	}

	// Send final result
	writeSSEEvent(w, "result", SearchToResponse(res, side))
	flusher.Flush()

	// Send done event to signal completion
	writeSSEEvent(w, "done", nil)
	flusher.Flush()
}

// acquireSSE takes a search slot, reporting failure as an error event.
func (h *Handlers) acquireSSE(w http.ResponseWriter, r *http.Request) bool {
	if h.pool == nil {
		return true
	}
	if err := h.pool.Acquire(r.Context(), ClassSearch); err != nil {
		writeSSEError(w, "server busy")
		return false
	}
	return true
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// writeSSEError writes an error event and closes the stream.
func writeSSEError(w http.ResponseWriter, message string) {
	writeSSEEvent(w, "error", map[string]string{"error": message})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}
