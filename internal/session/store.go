package session

import "context"

// Store persists sessions between requests. Values are ephemeral and
// TTL-bounded; a missing session id simply yields (nil, nil).
type Store interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, sessionID string) error

	Close() error
}
