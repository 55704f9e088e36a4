// Package identity is the authentication service: email+password accounts,
// classified sign-in failures, and a synchronous auth-change subscription.
// Session persistence across reloads is handled by the cookie session store;
// this package owns credentials and auth events only.
// File: identity/service.go
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"athproof/apperrors"
	"athproof/logger"
)

// Repeated failed sign-ins lock the account for the remainder of the window.
const (
	maxFailedAttempts = 5
	lockoutWindow     = 15 * time.Minute
)

// Principal is an authenticated account, before any profile merge.
type Principal struct {
	UID   string
	Email string
}

// EventType distinguishes auth-change events.
type EventType int

const (
	EventSignedIn EventType = iota
	EventSignedOut
)

// Event is one auth-state change. Principal is nil on sign-out.
type Event struct {
	Type      EventType
	UID       string
	Principal *Principal
}

// ServiceInterface is what consumers of the identity service depend on.
type ServiceInterface interface {
	SignIn(ctx context.Context, email, password string) (Principal, error)
	CreateUser(ctx context.Context, email, password string) (Principal, error)
	SignOut(uid string)
	Subscribe(handler func(Event)) (unsubscribe func())
}

type attemptRecord struct {
	count   int
	firstAt time.Time
}

// Service is the sqlite-backed identity service.
type Service struct {
	db *sql.DB

	mu       sync.Mutex
	attempts map[string]*attemptRecord
	handlers map[int]func(Event)
	nextID   int
}

// Open initializes the account database, creating directories as needed.
func Open(path string) (*Service, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	stmt := `CREATE TABLE IF NOT EXISTS accounts (
		uid TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	);`
	if _, err := db.ExecContext(context.Background(), stmt); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Service{
		db:       db,
		attempts: make(map[string]*attemptRecord),
		handlers: make(map[int]func(Event)),
	}, nil
}

// Close releases the underlying database handle.
func (s *Service) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ------------------- subscriptions -------------------

// Subscribe registers an auth-change handler. Handlers run synchronously on
// the goroutine performing the sign-in or sign-out, so a subscriber observes
// the event before the triggering call returns.
func (s *Service) Subscribe(handler func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.handlers, id)
		})
	}
}

func (s *Service) dispatch(ev Event) {
	s.mu.Lock()
	handlers := make([]func(Event), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// ------------------- account operations -------------------

// CreateUser provisions a new account and dispatches a signed-in event for
// the fresh principal, mirroring the identity provider's behaviour of
// starting a session on account creation.
func (s *Service) CreateUser(ctx context.Context, email, password string) (Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Principal{}, apperrors.Validation("Please provide a valid email address.")
	}
	if len(password) < 6 {
		return Principal{}, apperrors.Validation("Password must be at least 6 characters.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Principal{}, apperrors.Wrap("could not hash password", err)
	}

	uid := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO accounts (uid, email, password_hash) VALUES (?, ?, ?)`,
		uid, email, string(hash))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return Principal{}, apperrors.Validation("An account with that email already exists.")
		}
		return Principal{}, apperrors.Unavailable("account creation failed", err)
	}

	p := Principal{UID: uid, Email: email}
	logger.Info.Printf("[CreateUser] Account created for %s (uid=%s)", email, uid)
	s.dispatch(Event{Type: EventSignedIn, UID: uid, Principal: &p})
	return p, nil
}

// SignIn authenticates an email+password pair. Failures are classified:
// invalid credential, rate-limited after repeated failures, or unavailable
// when the account database cannot be read.
func (s *Service) SignIn(ctx context.Context, email, password string) (Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.isLocked(email) {
		logger.Warn.Printf("[SignIn] Account %s is rate-limited", email)
		return Principal{}, apperrors.RateLimited("Account locked due to many failed attempts. Try later.")
	}

	var uid, hash string
	row := s.db.QueryRowContext(ctx,
		`SELECT uid, password_hash FROM accounts WHERE email = ?`, email)
	if err := row.Scan(&uid, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.recordFailure(email)
			return Principal{}, apperrors.InvalidCredential("Invalid email or password.")
		}
		return Principal{}, apperrors.Unavailable("sign-in failed", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		s.recordFailure(email)
		return Principal{}, apperrors.InvalidCredential("Invalid email or password.")
	}

	s.clearFailures(email)
	p := Principal{UID: uid, Email: email}
	logger.Info.Printf("[SignIn] %s authenticated (uid=%s)", email, uid)
	s.dispatch(Event{Type: EventSignedIn, UID: uid, Principal: &p})
	return p, nil
}

// SignOut ends the principal's session and notifies subscribers.
func (s *Service) SignOut(uid string) {
	logger.Info.Printf("[SignOut] uid=%s signed out", uid)
	s.dispatch(Event{Type: EventSignedOut, UID: uid})
}

// ------------------- lockout bookkeeping -------------------

func (s *Service) isLocked(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.attempts[email]
	if !ok {
		return false
	}
	if time.Since(rec.firstAt) > lockoutWindow {
		delete(s.attempts, email)
		return false
	}
	return rec.count >= maxFailedAttempts
}

func (s *Service) recordFailure(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.attempts[email]
	if !ok || time.Since(rec.firstAt) > lockoutWindow {
		s.attempts[email] = &attemptRecord{count: 1, firstAt: time.Now()}
		return
	}
	rec.count++
}

func (s *Service) clearFailures(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, email)
}
