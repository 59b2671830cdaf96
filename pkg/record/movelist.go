package record

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/yourusername/gomoku/pkg/engine"
)

// The move-list format is a plain text transcript. Moves alternate from
// Black; move numbers and tag comments are optional.
// Example format:
//
//  ; [Black "Alice"]
//  ; [White "Bob"]
//  ; [Size "15"]
//  ; [Result "B+"]
//
//  1) h8 i9
//  2) i8 j9

var (
	moveNumberRE = regexp.MustCompile(`^\s*(\d+)[).]`)
	tagRE        = regexp.MustCompile(`\[(\w+)\s+"([^"]*)"\]`)
)

// ReadMoveList reads a record in move-list format.
func ReadMoveList(r io.Reader) (*Record, error) {
	scanner := bufio.NewScanner(r)
	rec := NewRecord(engine.DefaultBoardSize)
	var tokens []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines
		if line == "" {
			continue
		}

		// Parse tag comments
		if strings.HasPrefix(line, ";") {
			if m := tagRE.FindStringSubmatch(line); m != nil {
				if err := rec.setTag(m[1], m[2]); err != nil {
					return nil, err
				}
			}
			continue
		}

		if m := moveNumberRE.FindStringIndex(line); m != nil {
			line = line[m[1]:]
		}
		tokens = append(tokens, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading move list")
	}

	for _, tok := range tokens {
		m, err := engine.ParseMove(tok)
		if err != nil {
			return nil, errors.Wrapf(ErrIllegalMove, "move %d: %v", len(rec.Moves)+1, err)
		}
		rec.AddMove(m)
	}

	if _, err := rec.Board(); err != nil {
		return nil, err
	}
	return rec, nil
}

// ParseMoveList parses a move list such as "h8 i9 i8" on a board of the
// given size.
func ParseMoveList(size int, s string) (*Record, error) {
	return ReadMoveList(strings.NewReader(fmt.Sprintf("; [Size \"%d\"]\n%s", size, s)))
}

func (r *Record) setTag(key, value string) error {
	switch strings.ToLower(key) {
	case "black":
		r.Black = value
	case "white":
		r.White = value
	case "size":
		size, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "size tag %q", value)
		}
		r.Size = size
	case "date":
		r.Date = value
	case "event":
		r.Event = value
	case "site", "place":
		r.Place = value
	case "annotator":
		r.Annotator = value
	case "comment":
		r.Comment = value
	case "result":
		r.Result = ParseResult(value)
	}
	return nil
}

// WriteMoveList writes a record in move-list format, one move pair per
// numbered line.
func WriteMoveList(w io.Writer, rec *Record) error {
	var sb strings.Builder

	for _, tag := range []struct{ key, value string }{
		{"Black", rec.Black},
		{"White", rec.White},
		{"Size", strconv.Itoa(rec.Size)},
		{"Date", rec.Date},
		{"Event", rec.Event},
		{"Place", rec.Place},
		{"Annotator", rec.Annotator},
		{"Comment", rec.Comment},
		{"Result", rec.Result.String()},
	} {
		if tag.value != "" {
			fmt.Fprintf(&sb, "; [%s \"%s\"]\n", tag.key, strings.ReplaceAll(tag.value, `"`, `'`))
		}
	}
	sb.WriteByte('\n')

	for i := 0; i < len(rec.Moves); i += 2 {
		fmt.Fprintf(&sb, "%d) %s", i/2+1, rec.Moves[i].Move)
		if i+1 < len(rec.Moves) {
			fmt.Fprintf(&sb, " %s", rec.Moves[i+1].Move)
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return errors.Wrap(err, "writing move list")
}

// FormatMoveList returns the moves as a single space-separated line.
func FormatMoveList(moves []engine.Placement) string {
	parts := make([]string, len(moves))
	for i, p := range moves {
		parts[i] = p.Move.String()
	}
	return strings.Join(parts, " ")
}
