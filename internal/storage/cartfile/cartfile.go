// Package cartfile persists a cart to a single file on disk. It backs the
// single-tenant deployment mode, where no Redis is available and one cart
// per named session is enough.
package cartfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"

	"github.com/emiliogarza/distrimax/internal/domain/cart"
)

// Stores mints per-session file stores under one directory, one file per
// session.
type Stores struct {
	dir string
}

func NewStores(dir string) *Stores {
	return &Stores{dir: dir}
}

// ForSession returns the store for the given session ID. The ID is reduced
// to a safe file name first; a hostile value must not resolve to a path
// outside the cart directory.
func (s *Stores) ForSession(session string) cart.Store {
	return New(filepath.Join(s.dir, fileName(session)+".json"))
}

// fileName keeps letters, digits, dashes and underscores from the session ID
// and drops everything else, so path separators and dot segments never reach
// the filesystem.
func fileName(session string) string {
	var b strings.Builder
	for _, r := range session {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "invalid"
	}
	return b.String()
}

var _ cart.Store = (*Store)(nil)

// Store writes the full encoded item list to a file on every save. Writes
// go through a temp file and rename so a crash never leaves a half-written
// cart behind.
type Store struct {
	path string
}

// New returns a store writing to the given path.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads and decodes the persisted items. A missing file is an empty
// cart, not an error.
func (s *Store) Load(_ context.Context) ([]cart.LineItem, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading cart file")
	}
	return cart.DecodeItems(data)
}

// Save rewrites the cart file in full.
func (s *Store) Save(_ context.Context, items []cart.LineItem) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "creating cart dir")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, cart.EncodeItems(items), 0o644); err != nil {
		return errors.Wrap(err, "writing cart file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "replacing cart file")
	}
	return nil
}
