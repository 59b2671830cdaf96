// Package positionid implements compact position IDs for square stone boards.
//
// A position ID is a base64 string. The first byte holds the board size and
// every following byte packs four cells at 2 bits per cell (0 empty, 1 black,
// 2 white), row-major from the top-left corner. A 15x15 board encodes to 78
// characters.
package positionid

import (
	"encoding/base64"

	"github.com/pkg/errors"
)

const (
	// MinSize is the smallest board size that can be encoded
	MinSize = 5
	// MaxSize is the largest board size that can be encoded
	MaxSize = 26
)

// Errors returned by Decode
var (
	ErrEmpty       = errors.New("positionid: empty position ID")
	ErrBadSize     = errors.New("positionid: board size out of range")
	ErrTruncated   = errors.New("positionid: position ID too short for board size")
	ErrInvalidCell = errors.New("positionid: invalid cell value")
)

var encoding = base64.RawURLEncoding

// Grid is a decoded position: a board size and its cells in row-major order.
type Grid struct {
	Size  int
	Cells []uint8
}

// EncodedLength returns the number of characters of a position ID for size.
func EncodedLength(size int) int {
	return encoding.EncodedLen(packedLen(size))
}

func packedLen(size int) int {
	return 1 + (size*size+3)/4
}

// Encode returns the position ID for a board of the given size.
// cells must hold size*size values in 0..2.
func Encode(size int, cells []uint8) string {
	buf := make([]byte, packedLen(size))
	buf[0] = byte(size)
	for i, c := range cells {
		buf[1+i/4] |= (c & 0x3) << (uint(i%4) * 2)
	}
	return encoding.EncodeToString(buf)
}

// Decode parses a position ID.
func Decode(id string) (Grid, error) {
	if id == "" {
		return Grid{}, ErrEmpty
	}
	raw, err := encoding.DecodeString(id)
	if err != nil {
		return Grid{}, errors.Wrapf(err, "positionid: decoding %q", id)
	}
	if len(raw) == 0 {
		return Grid{}, ErrEmpty
	}
	size := int(raw[0])
	if size < MinSize || size > MaxSize {
		return Grid{}, errors.Wrapf(ErrBadSize, "size %d", size)
	}
	if len(raw) < packedLen(size) {
		return Grid{}, errors.Wrapf(ErrTruncated, "have %d bytes, need %d", len(raw), packedLen(size))
	}

	g := Grid{Size: size, Cells: make([]uint8, size*size)}
	for i := range g.Cells {
		c := (raw[1+i/4] >> (uint(i%4) * 2)) & 0x3
		if c > 2 {
			return Grid{}, errors.Wrapf(ErrInvalidCell, "cell %d", i)
		}
		g.Cells[i] = c
	}
	return g, nil
}

// Valid reports whether id decodes to a well-formed position.
func Valid(id string) bool {
	_, err := Decode(id)
	return err == nil
}
