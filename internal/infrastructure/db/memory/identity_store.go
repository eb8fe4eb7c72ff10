// Package memory provides in-process implementations of the persistence ports.
// They back STORAGE=memory runs and the test suites; every method is safe for
// concurrent use and no lock is held while calling back into the caller.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

type IdentityStore struct {
	mu         sync.RWMutex
	byUsername map[string]*domain.Identity
	emails     map[string]struct{}
	sequence   uint64
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		byUsername: make(map[string]*domain.Identity),
		emails:     make(map[string]struct{}),
	}
}

func (s *IdentityStore) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.byUsername[username]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	clone := *identity
	return &clone, nil
}

func (s *IdentityStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byUsername[username]
	return ok, nil
}

func (s *IdentityStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.emails[email]
	return ok, nil
}

// Create checks both uniqueness constraints and inserts under a single write
// lock, so of two concurrent creates with the same username or email exactly
// one succeeds.
func (s *IdentityStore) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[identity.Username]; ok {
		return nil, domain.ErrDuplicateUsername
	}
	if _, ok := s.emails[identity.Email]; ok {
		return nil, domain.ErrDuplicateEmail
	}

	s.sequence++
	clone := *identity
	clone.ID = strconv.FormatUint(s.sequence, 10)
	s.byUsername[clone.Username] = &clone
	s.emails[clone.Email] = struct{}{}

	out := clone
	return &out, nil
}

// SetEnabled flips the enabled flag. It stands in for the administrative
// flows that live outside the gateway.
func (s *IdentityStore) SetEnabled(username string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.byUsername[username]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	identity.Enabled = enabled
	return nil
}

// SetRoles replaces the delimited role field of an identity.
func (s *IdentityStore) SetRoles(username string, roles ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.byUsername[username]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	identity.Roles = domain.JoinRoles(roles...)
	return nil
}
