package dashboard

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
)

var (
	ErrAuthNotConfigured = errors.New("dashboard password is not configured")
	ErrBadCredentials    = errors.New("incorrect password or code")
)

// Authenticator checks the shared dashboard password and, when a secret is
// set, a TOTP code.
type Authenticator struct {
	password   string
	totpSecret string
	now        func() time.Time
}

func NewAuthenticator(password, totpSecret string, now func() time.Time) *Authenticator {
	if now == nil {
		now = time.Now
	}
	return &Authenticator{password: password, totpSecret: totpSecret, now: now}
}

// Configured reports whether a password is set.
func (a *Authenticator) Configured() bool { return a.password != "" }

// Check validates a login attempt.
func (a *Authenticator) Check(password, code string) error {
	if !a.Configured() {
		return ErrAuthNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return ErrBadCredentials
	}
	if a.totpSecret != "" {
		ok, err := totp.ValidateCustom(code, a.totpSecret, a.now().UTC(), totp.ValidateOpts{
			Period: 30,
			Skew:   1,
			Digits: 6,
		})
		if err != nil || !ok {
			return ErrBadCredentials
		}
	}
	return nil
}

// SessionStore keeps logged-in session ids in memory until they expire.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]time.Time // id -> expiry
}

func NewSessionStore(ttl time.Duration, now func() time.Time) *SessionStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &SessionStore{ttl: ttl, now: now, sessions: make(map[string]time.Time)}
}

// Create starts a session and returns its id.
func (s *SessionStore) Create() string {
	id := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.sessions[id] = s.now().Add(s.ttl)
	return id
}

// Valid reports whether id names a live session.
func (s *SessionStore) Valid(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.sessions[id]
	if !ok {
		return false
	}
	if !s.now().Before(exp) {
		delete(s.sessions, id)
		return false
	}
	return true
}

// Delete ends a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// TTL returns the session lifetime.
func (s *SessionStore) TTL() time.Duration { return s.ttl }

// sweep drops expired sessions. Caller holds mu.
func (s *SessionStore) sweep() {
	now := s.now()
	for id, exp := range s.sessions {
		if !now.Before(exp) {
			delete(s.sessions, id)
		}
	}
}
