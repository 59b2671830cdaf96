package record

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/yourusername/gomoku/pkg/engine"
)

// SGF (Smart Game Format) is a standard format for recording games.
// See: https://www.red-bean.com/sgf/
//
// Example SGF:
// (;FF[4]GM[4]SZ[15]AP[gomoku:1.0]
//  PB[Alice]PW[Bob]RE[B+]
//  ;B[hh];W[ii]
//  ;B[ih]
//  ...)
//
// Points are two letters, column then row, 'a' being the first.

// sgfNode holds the properties of one node, values unescaped.
type sgfNode map[string][]string

func (n sgfNode) first(ident string) (string, bool) {
	if v, ok := n[ident]; ok && len(v) > 0 {
		return v[0], true
	}
	return "", false
}

// ImportSGF reads every game in an SGF collection.
func ImportSGF(r io.Reader) ([]*Record, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading SGF file")
	}
	return ParseSGF(string(content))
}

// ParseSGF parses SGF content into records. Only the main line of each
// game tree is kept.
func ParseSGF(content string) ([]*Record, error) {
	p := &sgfParser{s: content}
	var records []*Record

	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		if p.s[p.pos] != '(' {
			return nil, errors.Errorf("sgf: unexpected %q at offset %d", p.s[p.pos], p.pos)
		}
		p.pos++
		nodes, err := p.sequence()
		if err != nil {
			return nil, errors.Wrapf(err, "parsing game %d", len(records)+1)
		}
		rec, err := recordFromNodes(nodes)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing game %d", len(records)+1)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, errors.New("sgf: no game tree found")
	}
	return records, nil
}

// recordFromNodes builds a record from the main-line nodes of a game.
func recordFromNodes(nodes []sgfNode) (*Record, error) {
	if len(nodes) == 0 {
		return nil, errors.New("sgf: empty game tree")
	}
	root := nodes[0]

	if gm, ok := root.first("GM"); ok && gm != "4" {
		return nil, errors.Wrapf(ErrNotGomoku, "GM[%s]", gm)
	}
	rec := NewRecord(engine.DefaultBoardSize)
	if sz, ok := root.first("SZ"); ok {
		size, err := strconv.Atoi(strings.TrimSpace(sz))
		if err != nil {
			return nil, errors.Wrapf(err, "SZ[%s]", sz)
		}
		rec.Size = size
	}

	for ident, field := range map[string]*string{
		"PB": &rec.Black,
		"PW": &rec.White,
		"DT": &rec.Date,
		"EV": &rec.Event,
		"PC": &rec.Place,
		"AN": &rec.Annotator,
		"GC": &rec.Comment,
	} {
		if v, ok := root.first(ident); ok {
			*field = v
		}
	}
	if re, ok := root.first("RE"); ok {
		rec.Result = ParseResult(re)
	}

	for i, n := range nodes {
		if _, ok := n["AB"]; ok {
			return nil, errors.Wrapf(ErrUnsupported, "setup stones in node %d", i)
		}
		if _, ok := n["AW"]; ok {
			return nil, errors.Wrapf(ErrUnsupported, "setup stones in node %d", i)
		}
		for _, prop := range []struct {
			ident string
			side  engine.Stone
		}{{"B", engine.Black}, {"W", engine.White}} {
			v, ok := n.first(prop.ident)
			if !ok {
				continue
			}
			m, err := parseSGFPoint(v, rec.Size)
			if err != nil {
				return nil, errors.Wrapf(err, "node %d", i)
			}
			rec.Moves = append(rec.Moves, engine.Placement{Move: m, Side: prop.side})
		}
	}

	if _, err := rec.Board(); err != nil {
		return nil, err
	}
	return rec, nil
}

// parseSGFPoint converts a two-letter SGF point to a move.
func parseSGFPoint(v string, size int) (engine.Move, error) {
	if len(v) != 2 {
		return engine.Move{}, errors.Wrapf(ErrIllegalMove, "point %q", v)
	}
	x, y := int(v[0]-'a'), int(v[1]-'a')
	if v[0] < 'a' || v[1] < 'a' || x >= size || y >= size {
		return engine.Move{}, errors.Wrapf(ErrIllegalMove, "point %q on %dx%d board", v, size, size)
	}
	return engine.Move{X: x, Y: y}, nil
}

// sgfPoint converts a move to SGF notation.
func sgfPoint(m engine.Move) string {
	return string([]byte{byte('a' + m.X), byte('a' + m.Y)})
}

// sgfParser is a cursor over SGF text.
type sgfParser struct {
	s   string
	pos int
}

func (p *sgfParser) eof() bool { return p.pos >= len(p.s) }

func (p *sgfParser) skipSpace() {
	for !p.eof() && strings.IndexByte(" \t\r\n", p.s[p.pos]) >= 0 {
		p.pos++
	}
}

// sequence reads nodes up to the ')' closing the current tree. The first
// variation continues the main line; later ones are skipped.
func (p *sgfParser) sequence() ([]sgfNode, error) {
	var nodes []sgfNode
	for {
		p.skipSpace()
		if p.eof() {
			return nil, errors.New("sgf: unterminated game tree")
		}
		switch p.s[p.pos] {
		case ';':
			p.pos++
			n, err := p.node()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case '(':
			p.pos++
			sub, err := p.sequence()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, sub...)
			for p.skipSpace(); !p.eof() && p.s[p.pos] == '('; p.skipSpace() {
				if err := p.skipTree(); err != nil {
					return nil, err
				}
			}
		case ')':
			p.pos++
			return nodes, nil
		default:
			return nil, errors.Errorf("sgf: unexpected %q at offset %d", p.s[p.pos], p.pos)
		}
	}
}

// node reads the properties following a ';'.
func (p *sgfParser) node() (sgfNode, error) {
	n := sgfNode{}
	for {
		p.skipSpace()
		start := p.pos
		for !p.eof() && p.s[p.pos] >= 'A' && p.s[p.pos] <= 'Z' {
			p.pos++
		}
		if start == p.pos {
			return n, nil
		}
		ident := p.s[start:p.pos]

		p.skipSpace()
		if p.eof() || p.s[p.pos] != '[' {
			return nil, errors.Errorf("sgf: property %s has no value", ident)
		}
		for !p.eof() && p.s[p.pos] == '[' {
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			n[ident] = append(n[ident], v)
			p.skipSpace()
		}
	}
}

// value reads a bracketed property value, resolving '\' escapes.
func (p *sgfParser) value() (string, error) {
	p.pos++
	var sb strings.Builder
	for !p.eof() {
		c := p.s[p.pos]
		p.pos++
		switch c {
		case '\\':
			if !p.eof() {
				sb.WriteByte(p.s[p.pos])
				p.pos++
			}
		case ']':
			return sb.String(), nil
		default:
			sb.WriteByte(c)
		}
	}
	return "", errors.New("sgf: unterminated property value")
}

// skipTree skips a balanced variation starting at '('.
func (p *sgfParser) skipTree() error {
	depth := 0
	for !p.eof() {
		switch p.s[p.pos] {
		case '[':
			if _, err := p.value(); err != nil {
				return err
			}
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		}
		p.pos++
	}
	return errors.New("sgf: unterminated variation")
}

// ExportSGF writes records as an SGF collection.
func ExportSGF(w io.Writer, records ...*Record) error {
	for _, rec := range records {
		if err := exportGameSGF(w, rec); err != nil {
			return err
		}
	}
	return nil
}

// exportGameSGF writes a single game in SGF format.
func exportGameSGF(w io.Writer, rec *Record) error {
	var sb strings.Builder

	// Write game tree header
	fmt.Fprintf(&sb, "(;FF[4]GM[4]CA[UTF-8]AP[gomoku:1.0]SZ[%d]\n", rec.Size)

	// Write player names and game info
	fmt.Fprintf(&sb, "PB[%s]PW[%s]\n", sgfEscape(rec.Black), sgfEscape(rec.White))
	for _, prop := range []struct{ ident, value string }{
		{"DT", rec.Date},
		{"EV", rec.Event},
		{"PC", rec.Place},
		{"AN", rec.Annotator},
		{"GC", rec.Comment},
		{"RE", rec.Result.String()},
	} {
		if prop.value != "" {
			fmt.Fprintf(&sb, "%s[%s]", prop.ident, sgfEscape(prop.value))
		}
	}
	sb.WriteByte('\n')

	// Write moves, ten per line
	for i, p := range rec.Moves {
		ident := "B"
		if p.Side == engine.White {
			ident = "W"
		}
		fmt.Fprintf(&sb, ";%s[%s]", ident, sgfPoint(p.Move))
		if i%10 == 9 {
			sb.WriteByte('\n')
		}
	}

	// Close game tree
	sb.WriteString(")\n")

	_, err := io.WriteString(w, sb.String())
	return errors.Wrap(err, "writing SGF")
}

// sgfEscape escapes ']' and '\' in a text value.
func sgfEscape(s string) string {
	if !strings.ContainsAny(s, `]\`) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `]`, `\]`)
	return r.Replace(s)
}
