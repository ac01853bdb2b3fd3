// Package memory is an in-process implementation of the repositories. It is
// used by tests and by the API when MongoDB is disabled.
package memory

import (
	"context"
	"sync"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
)

type state struct {
	ledger       *models.Ledger
	participants map[string]*models.Participant
	draws        map[string]*models.Draw
	events       []*models.Event
}

func newState() *state {
	return &state{
		participants: make(map[string]*models.Participant),
		draws:        make(map[string]*models.Draw),
	}
}

// clone copies the indexes. Stored records are never mutated in place, so the
// pointers can be shared between the committed and the working state.
func (st *state) clone() *state {
	out := &state{
		ledger:       st.ledger,
		participants: make(map[string]*models.Participant, len(st.participants)),
		draws:        make(map[string]*models.Draw, len(st.draws)),
		events:       make([]*models.Event, len(st.events)),
	}
	for k, v := range st.participants {
		out.participants[k] = v
	}
	for k, v := range st.draws {
		out.draws[k] = v
	}
	copy(out.events, st.events)
	return out
}

type txKey struct{}

// Store holds all records. Transactions work on a private copy of the state
// that replaces the committed state only when fn succeeds.
type Store struct {
	txMu      sync.Mutex
	mu        sync.RWMutex
	committed *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{committed: newState()}
}

// WithinTransaction implements repositories.Transactor. A nested call joins
// the enclosing transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, work)); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

func (s *Store) read(ctx context.Context, fn func(st *state)) {
	if st, ok := ctx.Value(txKey{}).(*state); ok {
		fn(st)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.committed)
}

// write runs fn against the transaction in ctx, or in a transaction of its own.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	return s.WithinTransaction(ctx, func(ctx context.Context) error {
		return fn(ctx.Value(txKey{}).(*state))
	})
}
