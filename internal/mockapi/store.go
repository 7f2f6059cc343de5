// Package mockapi is an in-memory stand-in for the remote registration
// resource. It serves the same routes under a tenant path prefix so the TUI
// and the list command can run without network access.
package mockapi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zjrosen/signup/internal/registration"
)

// ErrNotFound is returned when a registration id does not exist for a tenant.
var ErrNotFound = errors.New("registration not found")

// Store holds registrations per tenant in insertion order.
type Store struct {
	mu      sync.RWMutex
	tenants map[string][]registration.Registration
	newID   func() string
}

// NewStore creates an empty store that assigns UUID ids.
func NewStore() *Store {
	return &Store{
		tenants: make(map[string][]registration.Registration),
		newID:   uuid.NewString,
	}
}

// List returns a copy of tenant's registrations. It is never nil.
func (s *Store) List(tenant string) []registration.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]registration.Registration, len(s.tenants[tenant]))
	copy(out, s.tenants[tenant])
	return out
}

// Add stores r under tenant with a fresh id and server text. Passwords are
// dropped.
func (s *Store) Add(tenant string, r registration.Registration) registration.Registration {
	r.ID = s.newID()
	r.Password = ""
	r.ConfirmPassword = ""
	r.Text = fmt.Sprintf("Welcome aboard, %s!", r.Username)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenant] = append(s.tenants[tenant], r)
	return r
}

// Seed stores records as given, keeping their ids and text.
func (s *Store) Seed(tenant string, regs ...registration.Registration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenant] = append(s.tenants[tenant], regs...)
}

// Delete removes the registration with id and returns it.
func (s *Store) Delete(tenant, id string) (registration.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	regs := s.tenants[tenant]
	for i, r := range regs {
		if r.ID != id {
			continue
		}
		s.tenants[tenant] = append(regs[:i:i], regs[i+1:]...)
		return r, nil
	}
	return registration.Registration{}, fmt.Errorf("%w: %s/%s", ErrNotFound, tenant, id)
}
