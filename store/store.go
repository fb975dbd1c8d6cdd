// Package store owns the note collection. Every mutation rewrites the whole
// collection to the storage slot before it returns.
package store

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/oliverisaac/stickies/storage"
	"github.com/oliverisaac/stickies/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
)

var ErrInvalidColor = errors.New("invalid note color")

type Store struct {
	mu    sync.Mutex
	slot  storage.Slot
	notes []types.Note
	saved []byte
	now   func() time.Time
	newID func(time.Time) string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithIDGenerator(newID func(time.Time) string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

func New(slot storage.Slot, opts ...Option) *Store {
	s := &Store{
		slot:  slot,
		notes: []types.Note{},
		now:   time.Now,
		newID: ulidGenerator(rand.Reader),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ulidGenerator returns time-ordered ids. Ids minted within the same
// millisecond stay unique through monotonic entropy.
func ulidGenerator(r io.Reader) func(time.Time) string {
	entropy := ulid.Monotonic(r, 0)
	return func(t time.Time) string {
		return ulid.MustNew(ulid.Timestamp(t), entropy).String()
	}
}

// Load replaces the collection with the slot contents. A missing, unreadable
// or malformed slot leaves an empty collection.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = []types.Note{}
	s.saved = nil

	data, err := s.slot.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		logrus.Debug("No stored notes, starting empty")
		return
	}
	if err != nil {
		logrus.Warn(errors.Wrap(err, "Loading notes, starting empty"))
		return
	}

	notes, err := decode(data)
	if err != nil {
		logrus.Warn(errors.Wrap(err, "starting empty"))
		return
	}

	s.notes = notes
	s.saved = data
	logrus.Infof("Loaded %d notes", len(s.notes))
}

// Reload picks up a collection written to the slot by someone else. Unlike
// Load it never discards what is in memory: when the slot cannot be read or
// decoded, for instance mid-way through a foreign write, the current
// collection is kept and the error returned. Slot contents identical to the
// store's own last write are ignored.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.slot.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "reloading notes, keeping current collection")
	}
	if s.saved != nil && bytes.Equal(data, s.saved) {
		return nil
	}

	notes, err := decode(data)
	if err != nil {
		return errors.Wrap(err, "reloading notes, keeping current collection")
	}

	s.notes = notes
	s.saved = data
	logrus.Infof("Reloaded %d notes", len(s.notes))
	return nil
}

func decode(data []byte) ([]types.Note, error) {
	var stored []types.Note
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, errors.Wrap(err, "decoding stored notes")
	}
	return sanitize(stored), nil
}

func sanitize(stored []types.Note) []types.Note {
	seen := make(map[string]bool, len(stored))
	ret := make([]types.Note, 0, len(stored))
	for _, n := range stored {
		if n.ID == "" || seen[n.ID] {
			logrus.Warnf("Dropping stored note with empty or duplicate id %q", n.ID)
			continue
		}
		seen[n.ID] = true
		if _, ok := types.ParseColor(string(n.Color)); !ok {
			n.Color = types.DefaultColor
		}
		ret = append(ret, n)
	}
	return ret
}

// persist writes the collection. On failure the collection is restored to
// prev so memory never runs ahead of storage.
func (s *Store) persist(ctx context.Context, prev []types.Note) error {
	data, err := json.Marshal(s.notes)
	if err == nil {
		err = s.slot.Save(ctx, data)
	}
	if err != nil {
		s.notes = prev
		return errors.Wrap(err, "saving notes")
	}
	s.saved = data
	return nil
}

// Notes returns a snapshot of the collection, newest first.
func (s *Store) Notes() []types.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notes)
}

func (s *Store) Get(id string) (types.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.notes[i], true
	}
	return types.Note{}, false
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.notes, func(n types.Note) bool { return n.ID == id })
}

func (s *Store) Create(ctx context.Context) (types.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	note := types.NewNote(s.newID(now), now)
	if s.indexOf(note.ID) >= 0 {
		return types.Note{}, errors.Errorf("note id %q already in use", note.ID)
	}

	prev := s.notes
	s.notes = append([]types.Note{note}, prev...)
	if err := s.persist(ctx, prev); err != nil {
		return types.Note{}, err
	}

	logrus.Debugf("Created note %s", note.ID)
	return note, nil
}

// update applies fn to the note with id. It reports false, and writes
// nothing, when no such note exists.
func (s *Store) update(ctx context.Context, id string, fn func(*types.Note)) (types.Note, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		logrus.Debugf("Ignoring update of unknown note %q", id)
		return types.Note{}, false, nil
	}

	prev := s.notes
	s.notes = slices.Clone(prev)
	fn(&s.notes[i])
	if err := s.persist(ctx, prev); err != nil {
		return types.Note{}, true, errors.Wrapf(err, "updating note %s", id)
	}
	return s.notes[i], true, nil
}

func (s *Store) UpdateContent(ctx context.Context, id string, text string) (types.Note, bool, error) {
	return s.update(ctx, id, func(n *types.Note) {
		n.Content = text
	})
}

func (s *Store) UpdateColor(ctx context.Context, id string, color types.Color) (types.Note, bool, error) {
	if _, ok := types.ParseColor(string(color)); !ok {
		return types.Note{}, false, errors.Wrapf(ErrInvalidColor, "%q", color)
	}
	return s.update(ctx, id, func(n *types.Note) {
		n.Color = color
	})
}

// Delete removes the note with id. Callers obtain confirmation first,
// usually through RequestDelete.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		logrus.Debugf("Ignoring delete of unknown note %q", id)
		return false, nil
	}

	prev := s.notes
	s.notes = slices.Delete(slices.Clone(prev), i, i+1)
	if err := s.persist(ctx, prev); err != nil {
		return true, errors.Wrapf(err, "deleting note %s", id)
	}

	logrus.Debugf("Deleted note %s", id)
	return true, nil
}

// Query returns the notes whose content contains substring, ignoring case,
// in collection order. An empty substring matches every note.
func (s *Store) Query(substring string) []types.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	if substring == "" {
		return slices.Clone(s.notes)
	}

	fold := cases.Fold()
	needle := fold.String(substring)
	ret := []types.Note{}
	for _, n := range s.notes {
		if strings.Contains(fold.String(n.Content), needle) {
			ret = append(ret, n)
		}
	}
	return ret
}
