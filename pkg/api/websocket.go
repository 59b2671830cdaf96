package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/gomoku/pkg/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // "evaluate", "bestmove", "hints", "play", "ai-move", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string      `json:"type"`              // "result", "progress", "error", "pong"
	ID      string      `json:"id,omitempty"`      // Request ID
	Payload interface{} `json:"payload,omitempty"` // Response data
	Error   string      `json:"error,omitempty"`   // Error message if any
}

// WSGameMove is the payload of "play" and "ai-move" messages.
type WSGameMove struct {
	GameID string `json:"game_id"`
	Move   string `json:"move,omitempty"` // "play" only
	Depth  int    `json:"depth,omitempty"`
	TimeMS int    `json:"time_ms,omitempty"`
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	ctx      context.Context
	sendChan chan WSResponse
}

// WebSocket handles WebSocket connections for real-time play and analysis.
//
// The read loop only reads: requests are handled in order on a separate
// goroutine, so a disconnect cancels the connection context, and with it
// any running search, while that search is still in progress.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())

	client := &WSClient{conn: conn, handlers: h, ctx: ctx, sendChan: make(chan WSResponse, 256)}
	requests := make(chan WSMessage, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range requests {
			client.handleMessage(msg)
		}
	}()
	go client.writePump()

	client.readPump(requests)
	cancel()
	close(requests)
	wg.Wait()
	close(client.sendChan)
}

func (c *WSClient) writePump() {
	defer c.conn.Close()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// readPump reads messages until the connection fails. Pings are answered
// directly so they are not queued behind a search.
func (c *WSClient) readPump(requests chan<- WSMessage) {
	defer c.conn.Close()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "ping" {
			c.send(WSResponse{Type: "pong", ID: msg.ID})
			continue
		}
		select {
		case requests <- msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// send queues a response, dropping it once the connection is gone.
func (c *WSClient) send(resp WSResponse) {
	select {
	case c.sendChan <- resp:
	case <-c.ctx.Done():
	}
}

func (c *WSClient) sendError(id, msg string) {
	c.send(WSResponse{Type: "error", ID: id, Error: msg})
}

func (c *WSClient) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "evaluate":
		c.handleEvaluate(msg)
	case "bestmove":
		c.handleBestMove(msg)
	case "hints":
		c.handleHints(msg)
	case "play":
		c.handlePlay(msg)
	case "ai-move":
		c.handleAIMove(msg)
	default:
		c.sendError(msg.ID, "unknown message type")
	}
}

func (c *WSClient) handleEvaluate(msg WSMessage) {
	var req EvaluateRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendError(msg.ID, "invalid payload")
		return
	}
	b, side, err := c.handlers.resolvePosition(req.PositionRequest)
	if err != nil {
		c.sendError(msg.ID, "invalid position: "+err.Error())
		return
	}
	ev, err := c.handlers.engine.Evaluate(b, side)
	if err != nil {
		c.sendError(msg.ID, err.Error())
		return
	}
	c.send(WSResponse{Type: "result", ID: msg.ID, Payload: EvalToResponse(ev, b.PositionID())})
}

func (c *WSClient) handleBestMove(msg WSMessage) {
	var req SearchRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendError(msg.ID, "invalid payload")
		return
	}
	b, side, err := c.handlers.resolvePosition(req.PositionRequest)
	if err != nil {
		c.sendError(msg.ID, "invalid position: "+err.Error())
		return
	}

	opts := c.handlers.searchOptions(req.Depth, req.TimeMS)
	opts.Progress = func(info engine.IterationInfo) {
		c.send(WSResponse{Type: "progress", ID: msg.ID, Payload: info})
	}
	if !c.acquire(msg.ID) {
		return
	}
	defer c.handlers.release(ClassSearch)

	res, err := c.handlers.engine.Search(c.ctx, b, side, opts)
	if err != nil {
		c.sendError(msg.ID, "search failed: "+err.Error())
		return
	}
	c.send(WSResponse{Type: "result", ID: msg.ID, Payload: SearchToResponse(res, side)})
}

func (c *WSClient) handleHints(msg WSMessage) {
	var req HintsRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendError(msg.ID, "invalid payload")
		return
	}
	b, side, err := c.handlers.resolvePosition(req.PositionRequest)
	if err != nil {
		c.sendError(msg.ID, "invalid position: "+err.Error())
		return
	}
	n := req.N
	if n <= 0 {
		n = 5
	}
	resp, err := c.handlers.hints(c.ctx, b, side, n, req.Depth)
	if err != nil {
		c.sendError(msg.ID, err.Error())
		return
	}
	c.send(WSResponse{Type: "result", ID: msg.ID, Payload: resp})
}

func (c *WSClient) handlePlay(msg WSMessage) {
	var req WSGameMove
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendError(msg.ID, "invalid payload")
		return
	}
	g, err := c.handlers.games.Get(req.GameID)
	if err != nil {
		c.sendError(msg.ID, err.Error())
		return
	}
	m, err := engine.ParseMove(req.Move)
	if err != nil {
		c.sendError(msg.ID, "invalid move: "+err.Error())
		return
	}
	if _, err := g.Play(m); err != nil {
		c.sendError(msg.ID, err.Error())
		return
	}
	c.send(WSResponse{Type: "result", ID: msg.ID, Payload: g.Snapshot()})
}

func (c *WSClient) handleAIMove(msg WSMessage) {
	var req WSGameMove
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendError(msg.ID, "invalid payload")
		return
	}
	g, err := c.handlers.games.Get(req.GameID)
	if err != nil {
		c.sendError(msg.ID, err.Error())
		return
	}
	if !c.acquire(msg.ID) {
		return
	}
	defer c.handlers.release(ClassSearch)

	side := g.ToMove()
	res, err := g.AIMove(c.ctx, c.handlers.engine, c.handlers.searchOptions(req.Depth, req.TimeMS))
	if err != nil {
		c.sendError(msg.ID, err.Error())
		return
	}
	c.send(WSResponse{Type: "result", ID: msg.ID, Payload: AIMoveResponse{Search: SearchToResponse(res, side), Game: g.Snapshot()}})
}

// acquire takes a search slot for the connection.
func (c *WSClient) acquire(id string) bool {
	if c.handlers.pool == nil {
		return true
	}
	if err := c.handlers.pool.Acquire(c.ctx, ClassSearch); err != nil {
		c.sendError(id, "server busy")
		return false
	}
	return true
}
