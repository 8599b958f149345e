package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// DefaultTTL matches the lifetime of a browser session in the web client.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned for unknown, malformed and expired session ids.
var ErrNotFound = errors.New("session not found")

// Store persists sessions by id.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory. Values are copied on the way
// in and out, so callers never share maps with the store.
type MemoryStore struct {
	TTL time.Duration
	Now func() time.Time

	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{TTL: ttl, data: map[string][]byte{}}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	s, err := decode(b)
	if err != nil {
		return Session{}, err
	}
	if s.Expired(m.TTL, clock(m.Now)) {
		delete(m.data, id)
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkID(s.ID); err != nil {
		return err
	}
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[s.ID] = b
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func decode(b []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if s.SchemaState.UISchema == nil {
		s.SchemaState.UISchema = map[string]any{}
	}
	if s.Messages == nil {
		s.Messages = []Message{}
	}
	return s, nil
}

// checkID only admits uuids, which also keeps ids safe to use as file names.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid session id %q: %w", id, err)
	}
	return nil
}

func clock(f func() time.Time) time.Time {
	if f != nil {
		return f()
	}
	return time.Now()
}
