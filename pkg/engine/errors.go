package engine

import "github.com/pkg/errors"

// Errors returned by the engine's error-returning entry points.
var (
	ErrOutOfRange  = errors.New("cell out of range")
	ErrOccupied    = errors.New("cell occupied")
	ErrInvalidSide = errors.New("invalid side")
	ErrBoardSize   = errors.New("invalid board size")
	ErrBoardFull   = errors.New("board is full")
	ErrGameOver    = errors.New("game is already decided")
)
