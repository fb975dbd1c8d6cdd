package store

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var ErrAlreadyResolved = errors.New("deletion already resolved")

// PendingDelete is a deletion waiting on the user's answer. It resolves
// exactly once, through Confirm or Cancel.
type PendingDelete struct {
	ID string

	store    *Store
	mu       sync.Mutex
	resolved bool
}

func (s *Store) RequestDelete(id string) *PendingDelete {
	return &PendingDelete{ID: id, store: s}
}

func (p *PendingDelete) resolve() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolved {
		return ErrAlreadyResolved
	}
	p.resolved = true
	return nil
}

// Confirm deletes the note. It reports whether a note was removed.
func (p *PendingDelete) Confirm(ctx context.Context) (bool, error) {
	if err := p.resolve(); err != nil {
		return false, err
	}
	return p.store.Delete(ctx, p.ID)
}

// Cancel drops the request without touching the collection.
func (p *PendingDelete) Cancel() error {
	return p.resolve()
}
