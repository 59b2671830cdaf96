package game

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/yourusername/gomoku/pkg/record"
)

// Manager keeps the live games by ID.
type Manager struct {
	mu    sync.RWMutex
	games map[string]*Game
}

// NewManager creates an empty game manager.
func NewManager() *Manager {
	return &Manager{games: make(map[string]*Game)}
}

// Create starts a new game with a fresh ID.
func (m *Manager) Create(opts Options) (*Game, error) {
	g, err := New(uuid.NewString(), opts)
	if err != nil {
		return nil, err
	}
	m.add(g)
	return g, nil
}

// Import starts a game from a record.
func (m *Manager) Import(rec *record.Record, mode Mode) (*Game, error) {
	g, err := FromRecord(uuid.NewString(), rec, mode)
	if err != nil {
		return nil, err
	}
	m.add(g)
	return g, nil
}

func (m *Manager) add(g *Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
}

// Get returns the game with the given ID.
func (m *Manager) Get(id string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%q", id)
	}
	return g, nil
}

// Delete removes a game.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return errors.Wrapf(ErrNotFound, "%q", id)
	}
	delete(m.games, id)
	return nil
}

// List returns all games, oldest first.
func (m *Manager) List() []*Game {
	m.mu.RLock()
	games := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, g)
	}
	m.mu.RUnlock()

	sort.Slice(games, func(i, j int) bool {
		if games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].ID < games[j].ID
		}
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})
	return games
}

// Count returns the number of live games.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
