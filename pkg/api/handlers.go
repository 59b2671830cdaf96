package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/yourusername/gomoku/pkg/engine"
	"github.com/yourusername/gomoku/pkg/game"
	"github.com/yourusername/gomoku/pkg/record"
)

// Handlers holds the HTTP handlers and engine reference.
type Handlers struct {
	engine    *engine.Engine
	games     *game.Manager
	positions *engine.PositionDB
	version   string
	pool      *WorkerPool

	searchTimeLimit time.Duration // Default budget for searches (0 = engine default)
	maxDepth        int           // Upper bound on requested depths (0 = none)
}

// NewHandlers creates a new Handlers instance without a worker pool.
func NewHandlers(e *engine.Engine, version string) *Handlers {
	return NewHandlersWithPool(e, version, nil)
}

// NewHandlersWithPool creates a new Handlers instance with a worker pool.
func NewHandlersWithPool(e *engine.Engine, version string, pool *WorkerPool) *Handlers {
	return &Handlers{
		engine:    e,
		games:     game.NewManager(),
		positions: engine.DefaultPositionDB(),
		version:   version,
		pool:      pool,
	}
}

// Games returns the game manager.
func (h *Handlers) Games() *game.Manager {
	return h.games
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// errorStatus maps an error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch errors.Cause(err) {
	case game.ErrNotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case game.ErrGameOver, engine.ErrGameOver:
		return http.StatusConflict, "GAME_OVER"
	case game.ErrNotYourTurn:
		return http.StatusConflict, "NOT_YOUR_TURN"
	case game.ErrNothingToUndo:
		return http.StatusConflict, "NOTHING_TO_UNDO"
	case engine.ErrBoardFull:
		return http.StatusConflict, "BOARD_FULL"
	case engine.ErrOccupied:
		return http.StatusConflict, "OCCUPIED"
	case engine.ErrOutOfRange:
		return http.StatusBadRequest, "OUT_OF_RANGE"
	case engine.ErrInvalidSide:
		return http.StatusBadRequest, "INVALID_SIDE"
	case engine.ErrBoardSize:
		return http.StatusBadRequest, "INVALID_SIZE"
	case game.ErrInvalidMode:
		return http.StatusBadRequest, "INVALID_MODE"
	case record.ErrIllegalMove, record.ErrNotGomoku, record.ErrUnsupported:
		return http.StatusBadRequest, "INVALID_RECORD"
	case context.Canceled, context.DeadlineExceeded:
		return http.StatusServiceUnavailable, "CANCELLED"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// writeEngineError writes err with the status errorStatus assigns to it.
func writeEngineError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	writeError(w, status, err.Error(), code)
}

// writeRecordError writes a record parsing error. Errors without a
// specific status are malformed input.
func writeRecordError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		status, code = http.StatusBadRequest, "INVALID_RECORD"
	}
	writeError(w, status, err.Error(), code)
}

// decodeBody decodes a JSON request body. An empty body leaves v unchanged.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// acquire takes a worker slot of class c. It writes a 503 and returns
// false when none became available before the request ended.
func (h *Handlers) acquire(w http.ResponseWriter, r *http.Request, c WorkClass) bool {
	if h.pool == nil {
		return true
	}
	if err := h.pool.Acquire(r.Context(), c); err != nil {
		writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
		return false
	}
	return true
}

func (h *Handlers) release(c WorkClass) {
	if h.pool != nil {
		h.pool.Release(c)
	}
}

// resolvePosition builds the board and side to move of a request.
func (h *Handlers) resolvePosition(req PositionRequest) (*engine.Board, engine.Stone, error) {
	var b *engine.Board
	switch {
	case req.Moves != "":
		size := req.Size
		if size == 0 {
			size = h.engine.BoardSize()
		}
		rec, err := record.ParseMoveList(size, req.Moves)
		if err != nil {
			return nil, engine.Empty, err
		}
		if b, err = rec.Board(); err != nil {
			return nil, engine.Empty, err
		}
	case req.Position != "":
		var err error
		if b, err = engine.BoardFromPositionID(req.Position); err != nil {
			return nil, engine.Empty, errors.Wrap(err, "invalid position ID")
		}
	default:
		b = h.engine.NewBoard()
	}

	side := b.SideToMove()
	if req.Side != "" {
		var err error
		if side, err = engine.ParseSide(req.Side); err != nil {
			return nil, engine.Empty, err
		}
	}
	return b, side, nil
}

// searchOptions builds search options from request parameters.
func (h *Handlers) searchOptions(depth, timeMS int) engine.SearchOptions {
	if h.maxDepth > 0 && depth > h.maxDepth {
		depth = h.maxDepth
	}
	opts := engine.SearchOptions{MaxDepth: depth, TimeLimit: h.searchTimeLimit}
	if timeMS > 0 {
		opts.TimeLimit = time.Duration(timeMS) * time.Millisecond
	}
	return opts
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Ready:   h.engine != nil,
		Games:   h.games.Count(),
	}
	if h.engine != nil {
		resp.BoardSize = h.engine.BoardSize()
		resp.MaxDepth = h.engine.MaxDepth()
	}

	// Include pool stats if available
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// Evaluate handles POST /api/evaluate
func (h *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	if !h.acquire(w, r, ClassQuick) {
		return
	}
	defer h.release(ClassQuick)

	var req EvaluateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	b, side, err := h.resolvePosition(req.PositionRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_POSITION")
		return
	}

	ev, err := h.engine.Evaluate(b, side)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EvalToResponse(ev, b.PositionID()))
}

// BestMove handles POST /api/bestmove
func (h *Handlers) BestMove(w http.ResponseWriter, r *http.Request) {
	if !h.acquire(w, r, ClassSearch) {
		return
	}
	defer h.release(ClassSearch)

	var req SearchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	b, side, err := h.resolvePosition(req.PositionRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_POSITION")
		return
	}

	res, err := h.engine.Search(r.Context(), b, side, h.searchOptions(req.Depth, req.TimeMS))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchToResponse(res, side))
}

// Hints handles POST /api/hints
func (h *Handlers) Hints(w http.ResponseWriter, r *http.Request) {
	var req HintsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	class := ClassQuick
	if req.Depth > 0 {
		class = ClassSearch
	}
	if !h.acquire(w, r, class) {
		return
	}
	defer h.release(class)

	b, side, err := h.resolvePosition(req.PositionRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_POSITION")
		return
	}

	n := req.N
	if n <= 0 {
		n = 5
	}
	resp, err := h.hints(r.Context(), b, side, n, req.Depth)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// hints ranks up to n moves, searching them when depth > 0.
func (h *Handlers) hints(ctx context.Context, b *engine.Board, side engine.Stone, n, depth int) (*HintsResponse, error) {
	resp := &HintsResponse{Side: side.Name(), Hints: []HintResponse{}}

	if depth <= 0 {
		cands, err := h.engine.Hints(b, side, n)
		if err != nil {
			return nil, err
		}
		for _, c := range cands {
			resp.Hints = append(resp.Hints, HintResponse{Move: c.Move.String(), X: c.X, Y: c.Y, PointScore: c.Score})
		}
		return resp, nil
	}

	if h.maxDepth > 0 && depth > h.maxDepth {
		depth = h.maxDepth
	}
	analysis, err := h.engine.AnalyzePosition(ctx, b, side, n, depth)
	if err != nil {
		return nil, err
	}
	resp.Depth = analysis.Depth
	resp.Hints = movesToHints(analysis.Moves)
	return resp, nil
}

func movesToHints(moves []engine.MoveWithEval) []HintResponse {
	hints := make([]HintResponse, len(moves))
	for i, m := range moves {
		score := m.Score
		hints[i] = HintResponse{Move: m.Move.String(), X: m.Move.X, Y: m.Move.Y, PointScore: m.PointScore, Score: &score}
	}
	return hints
}

// HandleTutorMove grades a played move.
func (h *Handlers) HandleTutorMove(w http.ResponseWriter, r *http.Request) {
	var req TutorMoveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", "INVALID_JSON")
		return
	}

	if req.Move == "" {
		writeError(w, http.StatusBadRequest, "move is required", "MISSING_MOVE")
		return
	}

	b, side, err := h.resolvePosition(req.PositionRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_POSITION")
		return
	}

	played, err := engine.ParseMove(req.Move)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid move notation: %v", err), "INVALID_MOVE")
		return
	}

	if !h.acquire(w, r, ClassSearch) {
		return
	}
	defer h.release(ClassSearch)

	analysis, err := h.engine.AnalyzeMoveSkill(r.Context(), b, side, played, req.Depth)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TutorMoveResponse{
		Skill:      skillToString(analysis.Skill),
		SkillAbbr:  analysis.Skill.Abbr(),
		Loss:       analysis.Loss,
		Move:       analysis.Move.String(),
		BestMove:   analysis.BestMove.String(),
		Score:      analysis.Score,
		BestScore:  analysis.BestScore,
		IsForced:   analysis.IsForced,
		Depth:      analysis.Depth,
		TopMoves:   movesToHints(analysis.TopMoves),
		Suggestion: generateMoveSuggestion(analysis),
	})
}

// HandleAnalyzeGame grades every move of a complete game.
func (h *Handlers) HandleAnalyzeGame(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", "INVALID_JSON")
		return
	}

	rec, err := h.parseRecord(req.SGF, req.Moves, req.Size)
	if err != nil {
		writeRecordError(w, err)
		return
	}
	if len(rec.Moves) == 0 {
		writeError(w, http.StatusBadRequest, "the game has no moves", "MISSING_MOVES")
		return
	}

	if !h.acquire(w, r, ClassSearch) {
		return
	}
	defer h.release(ClassSearch)

	opts := engine.DefaultMatchAnalysisOptions()
	if req.Depth > 0 {
		opts.Depth = req.Depth
	}
	if h.maxDepth > 0 && opts.Depth > h.maxDepth {
		opts.Depth = h.maxDepth
	}
	opts.BlackName = firstNonEmpty(req.BlackName, rec.Black, opts.BlackName)
	opts.WhiteName = firstNonEmpty(req.WhiteName, rec.White, opts.WhiteName)

	ma, err := h.engine.AnalyzeGame(r.Context(), rec.Size, rec.Moves, opts)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := GameAnalysisResponse{
		TotalMoves: ma.TotalMoves,
		MoveErrors: []MoveError{},
	}
	if len(ma.GameStats) > 0 {
		resp.Winner = ma.GameStats[0].Winner
	}
	for i, ps := range ma.PlayerStats {
		resp.Players[i] = PlayerStats{
			Name:        ps.Name,
			TotalMoves:  ps.TotalMoves,
			TotalLoss:   ps.TotalLoss,
			LossPerMove: ps.LossPerMove,
			Rating:      ps.RatingStr,
			Blunders:    ps.Blunders,
			Errors:      ps.Errors,
			Doubtful:    ps.Doubtful,
		}
	}
	for _, me := range ma.MoveErrors {
		resp.MoveErrors = append(resp.MoveErrors, MoveError{
			MoveNumber: me.MoveNumber,
			Side:       me.Side,
			Position:   me.Position,
			Played:     me.Played,
			Best:       me.Best,
			Loss:       me.Loss,
			Skill:      skillToString(me.Skill),
		})
	}
	resp.Suggestions = generateGameSuggestions(&resp)

	writeJSON(w, http.StatusOK, resp)
}

// parseRecord reads a game from SGF text or a move list.
func (h *Handlers) parseRecord(sgf, moves string, size int) (*record.Record, error) {
	if sgf != "" {
		recs, err := record.ParseSGF(sgf)
		if err != nil {
			return nil, err
		}
		return recs[0], nil
	}
	if size == 0 {
		size = h.engine.BoardSize()
	}
	return record.ParseMoveList(size, moves)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Positions handles GET /api/positions?category=...&tag=...&q=...
func (h *Handlers) Positions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category := strings.ToLower(query.Get("category"))
	tag := query.Get("tag")

	entries := h.positions.All()
	if q := query.Get("q"); q != "" {
		entries = h.positions.Search(q)
	}

	resp := []PositionResponse{}
	for _, p := range entries {
		if category != "" && strings.ToLower(p.Category.String()) != category {
			continue
		}
		if tag != "" && !containsString(p.Tags, tag) {
			continue
		}
		b, err := p.Board()
		if err != nil {
			continue
		}
		pr := PositionResponse{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category.String(),
			Description: p.Description,
			ToMove:      p.ToMove.Name(),
			Tags:        p.Tags,
			Difficulty:  p.Difficulty,
			Board:       b.String(),
		}
		for _, m := range p.Best {
			pr.Best = append(pr.Best, m.String())
		}
		resp = append(resp, pr)
	}

	writeJSON(w, http.StatusOK, resp)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ============================================================================
// Game sessions
// ============================================================================

// gameFromRequest looks up the game named in the URL.
func (h *Handlers) gameFromRequest(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	g, err := h.games.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return nil, false
	}
	return g, true
}

// CreateGame handles POST /api/games
func (h *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	size := req.Size
	if size == 0 {
		size = h.engine.BoardSize()
	}

	g, err := h.games.Create(game.Options{Size: size, Mode: mode, AIFirst: req.AIFirst})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g.Snapshot())
}

// ImportGame handles POST /api/games/import
func (h *Handlers) ImportGame(w http.ResponseWriter, r *http.Request) {
	var req ImportGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	mode, err := game.ParseMode(req.Mode)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	rec, err := h.parseRecord(req.SGF, req.Moves, req.Size)
	if err != nil {
		writeRecordError(w, err)
		return
	}

	g, err := h.games.Import(rec, mode)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g.Snapshot())
}

// ListGames handles GET /api/games
func (h *Handlers) ListGames(w http.ResponseWriter, r *http.Request) {
	states := []game.State{}
	for _, g := range h.games.List() {
		states = append(states, g.Snapshot())
	}
	writeJSON(w, http.StatusOK, states)
}

// GetGame handles GET /api/games/{id}
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

// DeleteGame handles DELETE /api/games/{id}
func (h *Handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.games.Delete(chi.URLParam(r, "id")); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportGame handles GET /api/games/{id}/record?format=sgf|moves
func (h *Handlers) ExportGame(w http.ResponseWriter, r *http.Request) {
	g, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}
	rec := g.Record()

	switch r.URL.Query().Get("format") {
	case "", "sgf":
		w.Header().Set("Content-Type", "application/x-go-sgf")
		record.ExportSGF(w, rec)
	case "moves":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		record.WriteMoveList(w, rec)
	default:
		writeError(w, http.StatusBadRequest, "format must be sgf or moves", "INVALID_FORMAT")
	}
}

// Play handles POST /api/games/{id}/play
func (h *Handlers) Play(w http.ResponseWriter, r *http.Request) {
	g, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}

	var req PlayRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	m, err := engine.ParseMove(req.Move)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid move notation: %v", err), "INVALID_MOVE")
		return
	}

	if _, err := g.Play(m); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

// AIMoveResponse is the game state after an engine move.
type AIMoveResponse struct {
	Search *SearchResponse `json:"search"`
	Game   game.State      `json:"game"`
}

// AIMove handles POST /api/games/{id}/ai-move
func (h *Handlers) AIMove(w http.ResponseWriter, r *http.Request) {
	g, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}

	var req AIMoveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	if !h.acquire(w, r, ClassSearch) {
		return
	}
	defer h.release(ClassSearch)

	side := g.ToMove()
	res, err := g.AIMove(r.Context(), h.engine, h.searchOptions(req.Depth, req.TimeMS))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AIMoveResponse{Search: SearchToResponse(res, side), Game: g.Snapshot()})
}

// Resign handles POST /api/games/{id}/resign
func (h *Handlers) Resign(w http.ResponseWriter, r *http.Request) {
	g, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}

	var req ResignRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	side := g.ToMove()
	if req.Side != "" {
		var err error
		if side, err = engine.ParseSide(req.Side); err != nil {
			writeEngineError(w, err)
			return
		}
	}

	if err := g.Resign(side); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

// Undo handles POST /api/games/{id}/undo
func (h *Handlers) Undo(w http.ResponseWriter, r *http.Request) {
	g, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}
	if _, err := g.Undo(); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

// ============================================================================
// Helpers
// ============================================================================

// skillToString converts a skill type to a string.
func skillToString(skill engine.SkillType) string {
	switch skill {
	case engine.SkillVeryBad:
		return "very_bad"
	case engine.SkillBad:
		return "bad"
	case engine.SkillDoubtful:
		return "doubtful"
	default:
		return "none"
	}
}

// generateMoveSuggestion generates an improvement suggestion for a move error.
func generateMoveSuggestion(analysis *engine.MoveSkillAnalysis) string {
	if analysis.Skill == engine.SkillNone || analysis.IsForced {
		return ""
	}

	switch analysis.Skill {
	case engine.SkillVeryBad:
		return fmt.Sprintf("This was a blunder losing %d points. The best move was %s.",
			analysis.Loss, analysis.BestMove)
	case engine.SkillBad:
		return fmt.Sprintf("This was an error losing %d points. Consider %s instead.",
			analysis.Loss, analysis.BestMove)
	case engine.SkillDoubtful:
		return fmt.Sprintf("This move is questionable (%d points lost). %s was slightly better.",
			analysis.Loss, analysis.BestMove)
	default:
		return ""
	}
}

// generateGameSuggestions generates overall improvement suggestions for a game.
func generateGameSuggestions(resp *GameAnalysisResponse) []string {
	suggestions := []string{}

	for _, player := range resp.Players {
		if player.Blunders > 0 {
			suggestions = append(suggestions,
				fmt.Sprintf("%s had %d blunder(s). Look for open fours and double threats before every move.", player.Name, player.Blunders))
		}
		if player.TotalMoves > 0 && player.LossPerMove >= float64(engine.SkillThresholds[1]) {
			suggestions = append(suggestions,
				fmt.Sprintf("%s's loss per move (%.0f) is high. Block open threes earlier.", player.Name, player.LossPerMove))
		}
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Good game! Both players played well.")
	}

	return suggestions
}
