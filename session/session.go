package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/petasbytes/form-agent/schema"
)

// Languages understood by the prompt builder.
const (
	LanguageEN = "en"
	LanguageDE = "de"
)

// Message is a minimal persisted view of a chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Clarification is a question the model put to the user. The turn stops until
// the user answers.
type Clarification struct {
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
	Context  string   `json:"context,omitempty"`
}

// Session is a value. Methods that change it return a new Session; the
// receiver is left as it was.
type Session struct {
	ID                   string          `json:"id"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
	Messages             []Message       `json:"messages"`
	SchemaState          schema.Document `json:"schemaState"`
	Language             string          `json:"language"`
	PendingClarification *Clarification  `json:"pendingClarification,omitempty"`
}

// now is swapped in tests.
var now = time.Now

// New starts a session with the empty document. Unknown languages fall back to
// English.
func New(language string) Session {
	t := now().UTC()
	return Session{
		ID:          uuid.NewString(),
		CreatedAt:   t,
		UpdatedAt:   t,
		Messages:    []Message{},
		SchemaState: schema.Empty(),
		Language:    NormalizeLanguage(language),
	}
}

// NormalizeLanguage maps anything other than "de" to "en".
func NormalizeLanguage(lang string) string {
	if lang == LanguageDE {
		return LanguageDE
	}
	return LanguageEN
}

// Touch refreshes UpdatedAt.
func (s Session) Touch() Session {
	s.UpdatedAt = now().UTC()
	return s
}

// WithDocument swaps the schema state.
func (s Session) WithDocument(doc schema.Document) Session {
	s.SchemaState = doc
	return s.Touch()
}

func (s Session) WithClarification(c Clarification) Session {
	c.Options = append([]string(nil), c.Options...)
	s.PendingClarification = &c
	return s.Touch()
}

func (s Session) ClearClarification() Session {
	if s.PendingClarification == nil {
		return s
	}
	s.PendingClarification = nil
	return s.Touch()
}

// AppendMessages returns s with msgs added. The backing array is never shared
// with the receiver.
func (s Session) AppendMessages(msgs ...Message) Session {
	if len(msgs) == 0 {
		return s
	}
	next := make([]Message, 0, len(s.Messages)+len(msgs))
	next = append(next, s.Messages...)
	s.Messages = append(next, msgs...)
	return s.Touch()
}

// Expired reports whether s has not been updated within ttl. A non-positive
// ttl never expires.
func (s Session) Expired(ttl time.Duration, at time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return at.Sub(s.UpdatedAt) > ttl
}
