// Package api provides HTTP/JSON REST API for the gomoku engine.
package api

import "github.com/yourusername/gomoku/pkg/engine"

// ============================================================================
// Request Types
// ============================================================================

// PositionRequest identifies a position. Moves takes precedence over
// Position; with neither the board is empty.
type PositionRequest struct {
	Position string `json:"position,omitempty"` // Position ID
	Moves    string `json:"moves,omitempty"`    // Move list ("h8 i9 ...")
	Size     int    `json:"size,omitempty"`     // Board size for Moves (default engine size)
	Side     string `json:"side,omitempty"`     // Side to move (default from stone counts)
}

// EvaluateRequest is the request body for static evaluation.
type EvaluateRequest struct {
	PositionRequest
}

// SearchRequest is the request body for a best-move search.
type SearchRequest struct {
	PositionRequest
	Depth  int `json:"depth,omitempty"`   // Search depth (0 = engine default)
	TimeMS int `json:"time_ms,omitempty"` // Time budget in milliseconds (0 = server default)
}

// HintsRequest is the request body for ranked move hints.
type HintsRequest struct {
	PositionRequest
	N     int `json:"n,omitempty"`     // Max moves to return (default 5)
	Depth int `json:"depth,omitempty"` // Search each hint to this depth (0 = point scores only)
}

// TutorMoveRequest is the request for grading a played move.
type TutorMoveRequest struct {
	PositionRequest
	Move  string `json:"move"`            // Move played (e.g., "h8")
	Depth int    `json:"depth,omitempty"` // Grading depth (0 = default)
}

// AnalyzeGameRequest is the request for grading a complete game. SGF
// takes precedence over Moves.
type AnalyzeGameRequest struct {
	SGF       string `json:"sgf,omitempty"`
	Moves     string `json:"moves,omitempty"`
	Size      int    `json:"size,omitempty"`
	Depth     int    `json:"depth,omitempty"`
	BlackName string `json:"black_name,omitempty"`
	WhiteName string `json:"white_name,omitempty"`
}

// NewGameRequest is the request body for starting a game.
type NewGameRequest struct {
	Size    int    `json:"size,omitempty"`
	Mode    string `json:"mode,omitempty"` // "human-vs-human", "human-vs-ai" (default), "ai-vs-ai"
	AIFirst bool   `json:"ai_first,omitempty"`
}

// ImportGameRequest starts a game from a record. SGF takes precedence over
// Moves.
type ImportGameRequest struct {
	SGF   string `json:"sgf,omitempty"`
	Moves string `json:"moves,omitempty"`
	Size  int    `json:"size,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

// PlayRequest is the request body for a human move.
type PlayRequest struct {
	Move string `json:"move"` // "h8" or "7,7"
}

// AIMoveRequest is the request body for an engine move in a game.
type AIMoveRequest struct {
	Depth  int `json:"depth,omitempty"`
	TimeMS int `json:"time_ms,omitempty"`
}

// ResignRequest is the request body for resigning.
type ResignRequest struct {
	Side string `json:"side,omitempty"` // Default: side to move
}

// ============================================================================
// Response Types
// ============================================================================

// EvaluateResponse is the response for static evaluation.
type EvaluateResponse struct {
	Side       string         `json:"side"`
	Score      int            `json:"score"`    // Mine - Opponent
	Mine       int            `json:"mine"`     // Side's partial score
	Opponent   int            `json:"opponent"` // Opponent's partial score
	MyThreats  map[string]int `json:"my_threats"`
	OpThreats  map[string]int `json:"opponent_threats"`
	Win        bool           `json:"win"`
	Loss       bool           `json:"loss"`
	PositionID string         `json:"position_id"`
}

// SearchResponse is the response for a best-move search.
type SearchResponse struct {
	Move       string                 `json:"move"`
	X          int                    `json:"x"`
	Y          int                    `json:"y"`
	Side       string                 `json:"side"`
	Score      int                    `json:"score"`
	Depth      int                    `json:"depth"`
	Nodes      int64                  `json:"nodes"`
	CacheHits  uint64                 `json:"cache_hits"`
	ElapsedMS  float64                `json:"elapsed_ms"`
	Aborted    bool                   `json:"aborted"`
	FromBook   bool                   `json:"from_book"`
	Win        bool                   `json:"win"`  // Forced win found
	Loss       bool                   `json:"loss"` // Forced loss found
	Iterations []engine.IterationInfo `json:"iterations,omitempty"`
}

// HintResponse is a single ranked move.
type HintResponse struct {
	Move       string `json:"move"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	PointScore int    `json:"point_score"`     // Local tactical value
	Score      *int   `json:"score,omitempty"` // Search score when a depth was given
}

// HintsResponse is the response for ranked move hints.
type HintsResponse struct {
	Side  string         `json:"side"`
	Depth int            `json:"depth"`
	Hints []HintResponse `json:"hints"`
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error   string `json:"error"`             // Error message
	Code    string `json:"code,omitempty"`    // Error code
	Details string `json:"details,omitempty"` // Additional details
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status    string     `json:"status"`         // "ok" or "error"
	Version   string     `json:"version"`        // Engine version
	Ready     bool       `json:"ready"`          // Whether the engine is configured
	BoardSize int        `json:"board_size"`     // Default board size
	MaxDepth  int        `json:"max_depth"`      // Default search depth
	Games     int        `json:"games"`          // Live game sessions
	Pool      *PoolStats `json:"pool,omitempty"` // Worker pool statistics
}

// TutorMoveResponse is the response for move skill analysis.
type TutorMoveResponse struct {
	Skill      string         `json:"skill"`      // "none", "doubtful", "bad", "very_bad"
	SkillAbbr  string         `json:"skill_abbr"` // "", "?!", "?", "??"
	Loss       int            `json:"loss"`       // Score lost by this move
	Move       string         `json:"move"`
	BestMove   string         `json:"best_move"`
	Score      int            `json:"score"`      // Score of the played move
	BestScore  int            `json:"best_score"` // Score of the best move
	IsForced   bool           `json:"is_forced"`
	Depth      int            `json:"depth"`
	TopMoves   []HintResponse `json:"top_moves"`
	Suggestion string         `json:"suggestion"`
}

// GameAnalysisResponse is the response for complete game analysis.
type GameAnalysisResponse struct {
	Players     [2]PlayerStats `json:"players"` // Black, White
	TotalMoves  int            `json:"total_moves"`
	Winner      string         `json:"winner,omitempty"`
	MoveErrors  []MoveError    `json:"move_errors"`
	Suggestions []string       `json:"suggestions"`
}

// PlayerStats contains analysis stats for one side.
type PlayerStats struct {
	Name        string  `json:"name"`
	TotalMoves  int     `json:"total_moves"`
	TotalLoss   int     `json:"total_loss"`
	LossPerMove float64 `json:"loss_per_move"`
	Rating      string  `json:"rating"`
	Blunders    int     `json:"blunders"`
	Errors      int     `json:"errors"`
	Doubtful    int     `json:"doubtful"`
}

// MoveError represents a single move error in a game.
type MoveError struct {
	MoveNumber int    `json:"move_number"` // 1-indexed
	Side       string `json:"side"`
	Position   string `json:"position"` // Position ID before the move
	Played     string `json:"played"`
	Best       string `json:"best"`
	Loss       int    `json:"loss"`
	Skill      string `json:"skill"`
}

// PositionResponse is one entry of the position database.
type PositionResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	ToMove      string   `json:"to_move"`
	Best        []string `json:"best,omitempty"`
	Tags        []string `json:"tags"`
	Difficulty  int      `json:"difficulty"`
	Board       string   `json:"board"`
}

// ============================================================================
// Helper Functions
// ============================================================================

// threatMap converts threat counts to a name-keyed map, omitting zeros.
func threatMap(c engine.ThreatCounts) map[string]int {
	m := make(map[string]int)
	for t := engine.BlockedTwo; t <= engine.Five; t++ {
		if c[t] > 0 {
			m[t.String()] = c[t]
		}
	}
	return m
}

// EvalToResponse converts an engine Evaluation to an API response.
func EvalToResponse(ev *engine.Evaluation, positionID string) *EvaluateResponse {
	return &EvaluateResponse{
		Side:       ev.Side.Name(),
		Score:      ev.Score,
		Mine:       ev.Mine,
		Opponent:   ev.Opponent,
		MyThreats:  threatMap(ev.MyThreat),
		OpThreats:  threatMap(ev.OpThreat),
		Win:        ev.Win,
		Loss:       ev.Loss,
		PositionID: positionID,
	}
}

// SearchToResponse converts a search result to an API response.
func SearchToResponse(res *engine.SearchResult, side engine.Stone) *SearchResponse {
	return &SearchResponse{
		Move:       res.Move.String(),
		X:          res.Move.X,
		Y:          res.Move.Y,
		Side:       side.Name(),
		Score:      res.Score,
		Depth:      res.Depth,
		Nodes:      res.Nodes,
		CacheHits:  res.CacheHits,
		ElapsedMS:  float64(res.Elapsed.Microseconds()) / 1000,
		Aborted:    res.Aborted,
		FromBook:   res.FromBook,
		Win:        res.IsWin(),
		Loss:       res.IsLoss(),
		Iterations: res.Iterations,
	}
}
