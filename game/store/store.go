// Package store owns a player's game state. Every change goes through
// Apply, which runs the root reducer. Domain actions bump the state
// version; UI actions (loading flags, dismissals) leave it alone so an
// optimistic writer is not invalidated by a spinner.
package store

import (
	"errors"
	"sync"

	"github.com/kasuganosora/lifeos/model"
)

// ErrStale is returned by ApplyIf when the state moved past the expected
// version.
var ErrStale = errors.New("store: state changed since it was read")

// ChangeFunc observes every applied action. It runs outside the store lock.
type ChangeFunc func(version uint64, action string)

// Store holds one GameState. Reads hand out deep copies.
type Store struct {
	mu       sync.RWMutex
	state    *model.GameState
	onChange ChangeFunc
}

// New takes ownership of initial.
func New(initial *model.GameState) *Store {
	if initial.LoadingStates == nil {
		initial.LoadingStates = map[string]bool{}
	}
	return &Store{state: initial}
}

// OnChange installs the change observer. Call it before the store is shared.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *model.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Read runs fn against the live state under the read lock. fn must not
// retain or modify anything it sees.
func (s *Store) Read(fn func(*model.GameState)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Version
}

// Apply runs a through the root reducer and returns the new version.
func (s *Store) Apply(a Action) (uint64, error) {
	return s.apply(nil, a)
}

// ApplyIf applies a only if the state is still at version.
func (s *Store) ApplyIf(version uint64, a Action) (uint64, error) {
	return s.apply(&version, a)
}

func (s *Store) apply(expect *uint64, a Action) (uint64, error) {
	s.mu.Lock()
	if expect != nil && *expect != s.state.Version {
		v := s.state.Version
		s.mu.Unlock()
		return v, ErrStale
	}
	next, err := reduce(s.state, a)
	if err != nil {
		v := s.state.Version
		s.mu.Unlock()
		return v, err
	}
	if next == s.state {
		v := s.state.Version
		s.mu.Unlock()
		return v, nil
	}
	next.Version = s.state.Version
	if isDomain(a) {
		next.Version++
	}
	s.state = next
	v, fn := next.Version, s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn(v, a.Name())
	}
	return v, nil
}
