package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// FileStore writes one JSON file per session under Dir.
type FileStore struct {
	Dir string
	TTL time.Duration
	Now func() time.Time

	mu sync.Mutex
}

func NewFileStore(dir string, ttl time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{Dir: dir, TTL: ttl}, nil
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.Dir, id+".json")
}

func (f *FileStore) Get(ctx context.Context, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	if checkID(id) != nil {
		return Session{}, ErrNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.path(id)
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	s, err := decode(b)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", p, err)
	}
	if s.Expired(f.TTL, clock(f.Now)) {
		_ = os.Remove(p)
		return Session{}, ErrNotFound
	}
	return s, nil
}

// Save replaces the session file atomically (temp file + rename).
func (f *FileStore) Save(ctx context.Context, s Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(s.ID); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", " ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.Dir, s.ID+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path(s.ID)); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (f *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if checkID(id) != nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
