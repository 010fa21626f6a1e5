package storage

import (
	"context"
	"sync"
	"time"

	"github.com/platinummonkey/authgate/pkg/auth"
)

// MemoryStore is an in-process UserStore for development and tests
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*auth.User
	byEmail map[string]string
	now     func() time.Time
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*auth.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// FindByEmail returns the user registered with email
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(s.byID[id]), nil
}

// FindByID returns the user with the given id
func (s *MemoryStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(user), nil
}

// Create stores a new user
func (s *MemoryStore) Create(ctx context.Context, user *auth.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[NormalizeEmail(user.Email)]; taken {
		return ErrEmailTaken
	}

	PrepareNewUser(user, s.now())
	s.byID[user.ID] = copyUser(user)
	s.byEmail[user.Email] = user.ID
	return nil
}

// Len returns the number of stored users
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func copyUser(u *auth.User) *auth.User {
	c := *u
	return &c
}
