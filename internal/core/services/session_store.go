package services

import (
	"sync"

	"tarit-loan/internal/core/domain"
)

// SessionStore holds the identifiers of one wizard session.
// Reads return copies; writes merge.
type SessionStore struct {
	mu  sync.RWMutex
	ctx domain.SessionContext
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Get returns a snapshot that later updates do not affect
func (s *SessionStore) Get() domain.SessionContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// Update merges every non-nil field of the patch and returns the result
func (s *SessionStore) Update(p domain.SessionPatch) domain.SessionContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	merge(&s.ctx.ApplicationID, p.ApplicationID)
	merge(&s.ctx.CustomerID, p.CustomerID)
	merge(&s.ctx.AccountNumber, p.AccountNumber)
	merge(&s.ctx.RegimentReference, p.RegimentReference)
	merge(&s.ctx.LoginID, p.LoginID)
	merge(&s.ctx.OTPReference, p.OTPReference)
	merge(&s.ctx.MobileNumber, p.MobileNumber)
	merge(&s.ctx.CIF, p.CIF)
	return s.ctx
}

// Clear resets every field
func (s *SessionStore) Clear() {
	s.mu.Lock()
	s.ctx = domain.SessionContext{}
	s.mu.Unlock()
}

func merge(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
