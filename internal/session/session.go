package session

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// FlashKind distinguishes error and success notices.
type FlashKind string

const (
	FlashError   FlashKind = "error"
	FlashSuccess FlashKind = "success"
)

// Flash is a one-shot notice held in the session and consumed on next render.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// Session is the server-side per-visitor state, stored as JSON in Redis and
// keyed by an opaque session id. A session exists from the first request;
// login binds UserID/Username, logout destroys the whole record.
type Session struct {
	ID            string     `json:"id"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	Username      string     `json:"username,omitempty"`
	CSRFToken     string     `json:"csrf_token"`
	LoginAttempts int        `json:"login_attempts"`
	LastAttempt   int64      `json:"last_attempt"` // unix seconds of last failed login
	Flashes       []Flash    `json:"flashes,omitempty"`
}

// New creates an anonymous session with a fresh id and CSRF token.
func New() (*Session, error) {
	token, err := generateCSRFToken()
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:        uuid.New().String(),
		CSRFToken: token,
	}, nil
}

// IsAuthenticated reports whether a user is bound to this session.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil
}

// AddError queues a one-shot error notice.
func (s *Session) AddError(message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: FlashError, Message: message})
}

// AddSuccess queues a one-shot success notice.
func (s *Session) AddSuccess(message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: FlashSuccess, Message: message})
}

// ConsumeFlashes returns queued notices and clears them.
func (s *Session) ConsumeFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// RecordFailedLogin increments the attempt counter and stamps the failure time.
func (s *Session) RecordFailedLogin(now time.Time) {
	s.LoginAttempts++
	s.LastAttempt = now.Unix()
}

// ResetLoginAttempts clears the throttle counter after a successful login.
func (s *Session) ResetLoginAttempts() {
	s.LoginAttempts = 0
}

// generateCSRFToken returns 32 random bytes hex-encoded. One token is
// generated per session on first touch and echoed into state-changing forms.
func generateCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
