package hero

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/kbukum/heroes/errors"
)

// firstID is assigned when the store is empty.
const firstID = 11

// Store is an in-memory hero collection. All methods are safe for
// concurrent use and return copies.
type Store struct {
	mu     sync.RWMutex
	heroes []Hero
}

// NewStore returns a store holding heroes. A nil slice yields an empty store.
func NewStore(heroes []Hero) *Store {
	return &Store{heroes: Clone(heroes)}
}

// NewSeededStore returns a store holding the canonical roster.
func NewSeededStore() *Store {
	return NewStore(Seed())
}

// List returns all heroes in insertion order.
func (s *Store) List() []Hero {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Clone(s.heroes)
}

// Get returns the hero with id.
func (s *Store) Get(id int) (Hero, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.heroes[i], nil
	}
	return Hero{}, notFound(id)
}

// Add stores a new hero named name and returns it with its generated id.
func (s *Store) Add(name string) Hero {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := Hero{ID: s.genID(), Name: name}
	s.heroes = append(s.heroes, h)
	return h
}

// Update replaces the name of an existing hero.
func (s *Store) Update(h Hero) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(h.ID)
	if i < 0 {
		return notFound(h.ID)
	}
	s.heroes[i] = h
	return nil
}

// Delete removes the hero with id.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return notFound(id)
	}
	s.heroes = slices.Delete(s.heroes, i, i+1)
	return nil
}

// Search returns the heroes whose name contains term, ignoring case.
// A term that is empty after trimming matches nothing.
func (s *Store) Search(term string) []Hero {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []Hero{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Hero{}
	for _, h := range s.heroes {
		if strings.Contains(strings.ToLower(h.Name), term) {
			out = append(out, h)
		}
	}
	return out
}

// Top returns the dashboard selection: up to four heroes starting at the
// second one.
func (s *Store) Top() []Hero {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.heroes) <= 1 {
		return []Hero{}
	}
	end := min(len(s.heroes), 5)
	return Clone(s.heroes[1:end])
}

// genID must be called with s.mu held.
func (s *Store) genID() int {
	if len(s.heroes) == 0 {
		return firstID
	}
	maxID := s.heroes[0].ID
	for _, h := range s.heroes[1:] {
		maxID = max(maxID, h.ID)
	}
	return maxID + 1
}

func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.heroes, func(h Hero) bool { return h.ID == id })
}

func notFound(id int) *errors.AppError {
	return errors.NotFound("hero", strconv.Itoa(id))
}
