package mesa

import "context"

// SessionStore persists sessions between turns. Get returns
// ErrSessionNotFound when no session exists for the identifier.
// Put must apply the whole session atomically so a crash mid-turn never
// leaves a partially updated record.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
}
