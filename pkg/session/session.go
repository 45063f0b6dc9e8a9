// Package session tracks operators working through blueprints.
//
// A [Session] binds an operator to a blueprint position and records the
// last acknowledgment received for it (a gesture or voice command from an
// input client). Sessions expire after a TTL; every update extends it.
//
// Store implementations:
//   - [MemoryStore]: single server process, tests
//   - [FileStore]: one JSON file per session, also used by the CLI guide
//   - [RedisStore]: several server instances sharing sessions
//
// Get returns (nil, nil) for missing and expired sessions alike.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/assys/brickguide/pkg/guide"
)

// DefaultTTL is the default session lifetime.
const DefaultTTL = 8 * time.Hour

// Ack is an acknowledgment sent by an input client.
type Ack struct {
	Type      string          `json:"type"` // gesture or voice
	Direction guide.Direction `json:"direction"`
	At        time.Time       `json:"at"`
}

// Session is one operator's progress.
type Session struct {
	ID        string         `json:"id"`
	Operator  string         `json:"operator,omitempty"`
	Position  guide.Position `json:"position"`
	LastAck   *Ack           `json:"last_ack,omitempty"`
	ExpiresAt time.Time      `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// New starts a session at pos.
func New(operator string, pos guide.Position, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Operator:  operator,
		Position:  pos,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch marks the session as updated and extends its expiry.
func (s *Session) Touch(ttl time.Duration) {
	s.UpdatedAt = time.Now()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// ValidID reports whether id has the form of a session ID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Store persists sessions.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// Latest returns the most recently updated live session, or nil.
	Latest(ctx context.Context) (*Session, error)
	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}
