// Package store is the single source of truth for per-user state.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/planwise/planner-bot/internal/domain"
)

// ErrUserNotFound indicates that no record exists for the requested user id.
var ErrUserNotFound = errors.New("user not found")

// UserStore defines the operations the rest of the application uses to read and
// mutate user records.
type UserStore interface {
	GetOrCreate(ctx context.Context, userID string, chatID int64, displayName string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Mutate(ctx context.Context, userID string, fn func(u *domain.User) error) (*domain.User, error)
	All(ctx context.Context) ([]*domain.User, error)
}

// Snapshot persists and restores the whole user map in one document.
type Snapshot interface {
	Load(ctx context.Context) (map[string]*domain.User, error)
	Save(ctx context.Context, users map[string]*domain.User) error
}

// Store is an in-memory user map flushed to a Snapshot on every mutation.
// Mutations are serialized behind one mutex; reads return deep copies so
// callers never hold references into the map across slow operations.
type Store struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	snapshot Snapshot
	log      *slog.Logger
	now      func() time.Time
}

var _ UserStore = (*Store)(nil)

// New loads the snapshot and returns a ready store. An unreadable snapshot
// degrades to an empty store: the process must come up even with corrupt or
// missing durable state.
func New(ctx context.Context, snapshot Snapshot, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	users, err := snapshot.Load(ctx)
	if err != nil {
		log.Error("failed to load user snapshot, starting empty", slog.Any("error", err))
		users = nil
	}
	if users == nil {
		users = make(map[string]*domain.User)
	}

	log.Info("user store ready", slog.Int("users", len(users)))

	return &Store{
		users:    users,
		snapshot: snapshot,
		log:      log,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// GetOrCreate returns the existing record or creates one with defaults.
// Creation persists synchronously before returning.
func (s *Store) GetOrCreate(ctx context.Context, userID string, chatID int64, displayName string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		return u.Clone(), nil
	}

	u := domain.NewUser(userID, chatID, displayName, s.now().UTC())
	s.users[userID] = u

	if err := s.snapshot.Save(ctx, s.users); err != nil {
		delete(s.users, userID)
		return nil, fmt.Errorf("persist new user %s: %w", userID, err)
	}

	s.log.Info("user created", slog.String("user_id", userID), slog.Int64("chat_id", chatID))
	return u.Clone(), nil
}

// Get returns a copy of the record for userID.
func (s *Store) Get(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u.Clone(), nil
}

// Mutate applies fn to the user's record and persists the whole store. A
// snapshot write failure rolls the in-memory record back and is returned to the
// caller: memory and durable state must not silently diverge.
func (s *Store) Mutate(ctx context.Context, userID string, fn func(u *domain.User) error) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	backup := u.Clone()
	if err := fn(u); err != nil {
		s.users[userID] = backup
		return nil, err
	}

	if err := s.snapshot.Save(ctx, s.users); err != nil {
		s.users[userID] = backup
		return nil, fmt.Errorf("persist store after mutating user %s: %w", userID, err)
	}

	return u.Clone(), nil
}

// All returns copies of every record, ordered by user id for deterministic
// fan-out in tests and logs.
func (s *Store) All(ctx context.Context) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Len returns the number of known users.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
