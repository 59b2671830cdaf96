// Package engine provides a database of reference tactical positions.
package engine

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// PositionCategory represents the type of position.
type PositionCategory int

const (
	CategoryUnknown    PositionCategory = iota
	CategoryOpening                     // First few stones
	CategoryWin                         // Side to move completes five
	CategoryDefense                     // Side to move must stop a five
	CategoryAttack                      // Side to move can make a four
	CategoryMiddlegame                  // Quiet positions
)

// String returns the human-readable name of the category.
func (c PositionCategory) String() string {
	return [...]string{"Unknown", "Opening", "Win", "Defense", "Attack", "Middlegame"}[c]
}

// PositionEntry represents a position in the database.
type PositionEntry struct {
	ID          string           `json:"id"` // Position ID
	Name        string           `json:"name"`
	Category    PositionCategory `json:"category"`
	Description string           `json:"description"`
	ToMove      Stone            `json:"to_move"`
	Best        []Move           `json:"best"` // Accepted answers, empty if any move will do
	Tags        []string         `json:"tags"`

	// Pre-computed evaluation (optional)
	Evaluation *Evaluation `json:"evaluation,omitempty"`

	// Difficulty level (1-5)
	Difficulty int `json:"difficulty"`
}

// Board decodes the entry's position.
func (p *PositionEntry) Board() (*Board, error) {
	return BoardFromPositionID(p.ID)
}

// Accepts reports whether m is one of the entry's best moves.
func (p *PositionEntry) Accepts(m Move) bool {
	if len(p.Best) == 0 {
		return true
	}
	for _, b := range p.Best {
		if b == m {
			return true
		}
	}
	return false
}

// PositionDB is an in-memory position database.
type PositionDB struct {
	positions  map[string]*PositionEntry
	byCategory map[PositionCategory][]*PositionEntry
	byTag      map[string][]*PositionEntry
	mu         sync.RWMutex
}

// NewPositionDB creates a new empty position database.
func NewPositionDB() *PositionDB {
	return &PositionDB{
		positions:  make(map[string]*PositionEntry),
		byCategory: make(map[PositionCategory][]*PositionEntry),
		byTag:      make(map[string][]*PositionEntry),
	}
}

// Add adds a position to the database.
func (db *PositionDB) Add(entry *PositionEntry) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.positions[entry.ID] = entry
	db.byCategory[entry.Category] = append(db.byCategory[entry.Category], entry)
	for _, tag := range entry.Tags {
		db.byTag[tag] = append(db.byTag[tag], entry)
	}
}

// Get retrieves a position by ID.
func (db *PositionDB) Get(id string) *PositionEntry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.positions[id]
}

// GetByCategory returns all positions in a category.
func (db *PositionDB) GetByCategory(cat PositionCategory) []*PositionEntry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.byCategory[cat]
}

// GetByTag returns all positions with a given tag.
func (db *PositionDB) GetByTag(tag string) []*PositionEntry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.byTag[tag]
}

// Search finds positions whose name, description or tags contain query
// (case-insensitive).
func (db *PositionDB) Search(query string) []*PositionEntry {
	db.mu.RLock()
	defer db.mu.RUnlock()

	q := strings.ToLower(query)
	var results []*PositionEntry
	for _, p := range db.positions {
		if matchesQuery(p, q) {
			results = append(results, p)
		}
	}
	sortEntries(results)
	return results
}

// Count returns the total number of positions.
func (db *PositionDB) Count() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.positions)
}

// All returns all positions ordered by name.
func (db *PositionDB) All() []*PositionEntry {
	db.mu.RLock()
	defer db.mu.RUnlock()

	results := make([]*PositionEntry, 0, len(db.positions))
	for _, p := range db.positions {
		results = append(results, p)
	}
	sortEntries(results)
	return results
}

func sortEntries(entries []*PositionEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}

func matchesQuery(p *PositionEntry, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// ClassifyPosition returns the category of a position for the side to move.
func ClassifyPosition(b *Board, side Stone) PositionCategory {
	if b.stones <= DefaultEarlyGameStones {
		return CategoryOpening
	}
	board := b.Clone()
	cands := generateCandidates(board, side, genOptions{radius: DefaultNeighborRadius, rank: true})
	category := CategoryMiddlegame
	for _, c := range cands {
		switch {
		case c.Mine >= ScoreFive:
			return CategoryWin
		case c.Opponent >= ScoreFive:
			category = CategoryDefense
		case c.Mine >= ScoreSimpleFour && category == CategoryMiddlegame:
			category = CategoryAttack
		}
	}
	return category
}

// CreatePositionEntry builds an entry from coordinate lists of black and
// white stones on a board of the given size.
func CreatePositionEntry(size int, black, white []string, name string, cat PositionCategory, desc string, tags []string) (*PositionEntry, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, errors.Wrapf(ErrBoardSize, "%d", size)
	}
	b := NewBoard(size)
	for _, group := range []struct {
		side  Stone
		cells []string
	}{{Black, black}, {White, white}} {
		for _, s := range group.cells {
			m, err := ParseMove(s)
			if err != nil {
				return nil, err
			}
			if err := b.CanPlace(m.X, m.Y); err != nil {
				return nil, errors.Wrapf(err, "position %q", name)
			}
			b.put(m.Y*size+m.X, group.side)
		}
	}
	return &PositionEntry{
		ID:          b.PositionID(),
		Name:        name,
		Category:    cat,
		Description: desc,
		ToMove:      b.SideToMove(),
		Tags:        tags,
	}, nil
}

// DefaultPositionDB creates a database with reference tactical positions
// on a 15x15 board.
func DefaultPositionDB() *PositionDB {
	db := NewPositionDB()

	refs := []struct {
		name  string
		cat   PositionCategory
		desc  string
		black []string
		white []string
		best  []string
		tags  []string
		diff  int
	}{
		{"Empty Board", CategoryOpening, "First stone goes to the center",
			nil, nil, []string{"h8"}, []string{"opening"}, 1},
		{"Open Four", CategoryWin, "Black completes an open four at either end",
			[]string{"f8", "g8", "h8", "i8"}, []string{"f9", "g9", "h9", "c3"},
			[]string{"e8", "j8"}, []string{"win", "four"}, 1},
		{"Simple Four", CategoryWin, "Black completes a blocked four at its open end",
			[]string{"f8", "g8", "h8", "i8"}, []string{"e8", "g10", "h10", "i10"},
			[]string{"j8"}, []string{"win", "four", "blocked"}, 1},
		{"Edge Four", CategoryWin, "The board edge blocks one end of the four",
			[]string{"a1", "a2", "a3", "a4"}, []string{"b1", "b2", "b3", "f6"},
			[]string{"a5"}, []string{"win", "four", "edge"}, 2},
		{"Stop The Four", CategoryDefense, "White must block the only completing cell",
			[]string{"f8", "g8", "h8", "i8"}, []string{"e8", "g10", "k4"},
			[]string{"j8"}, []string{"defense", "four"}, 1},
		{"Gapped Four", CategoryWin, "Black fills the gap of a split four",
			[]string{"f8", "g8", "i8", "j8"}, []string{"f9", "g9", "i9", "j9"},
			[]string{"h8"}, []string{"win", "four", "gap"}, 2},
	}

	for _, r := range refs {
		entry, err := CreatePositionEntry(DefaultBoardSize, r.black, r.white, r.name, r.cat, r.desc, r.tags)
		if err != nil {
			continue
		}
		for _, s := range r.best {
			if m, err := ParseMove(s); err == nil {
				entry.Best = append(entry.Best, m)
			}
		}
		entry.Difficulty = r.diff
		db.Add(entry)
	}

	return db
}

// PrecomputeEvaluations adds static evaluations to all positions.
func (db *PositionDB) PrecomputeEvaluations(e *Engine) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, p := range db.positions {
		if p.Evaluation != nil {
			continue
		}
		b, err := p.Board()
		if err != nil {
			return errors.Wrapf(err, "position %q", p.Name)
		}
		if p.Evaluation, err = e.Evaluate(b, p.ToMove); err != nil {
			return errors.Wrapf(err, "position %q", p.Name)
		}
	}
	return nil
}
