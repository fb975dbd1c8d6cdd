// Package storage holds the single named slot the note collection is written
// to. A slot stores an opaque blob; it knows nothing about notes.
package storage

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Load when the slot has never been written.
var ErrNotFound = errors.New("storage slot is empty")

// Slot is a whole-value key/value cell. Save replaces the previous value.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Memory is a process-local Slot.
type Memory struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.set = true
	return nil
}
