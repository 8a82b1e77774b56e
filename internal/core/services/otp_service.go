package services

import (
	"errors"
	"sync"
	"time"
)

// ============================================================
// OTP guard - local throttling in front of the backend OTP
// ============================================================

const (
	otpResendCooldown = time.Minute
	otpLifetime       = 5 * time.Minute
	otpMaxAttempts    = 5
)

var (
	ErrOTPCooldown        = errors.New("otp requested too recently")
	ErrOTPNotRequested    = errors.New("no otp has been requested")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPTooManyAttempts = errors.New("too many wrong otp attempts")
)

// OTPEntry tracks one outstanding OTP of a session
type OTPEntry struct {
	Reference   string
	Mobile      string
	RequestedAt time.Time
	ExpiresAt   time.Time
	Attempts    int // wrong codes entered
}

// OTPService enforces the resend cooldown and the wrong-attempt limit.
// Codes themselves are generated and checked by the origination backend.
type OTPService struct {
	store map[string]*OTPEntry // key = session id
	mu    sync.Mutex
	now   func() time.Time
}

// NewOTPService creates a new OTP guard
func NewOTPService() *OTPService {
	return &OTPService{
		store: make(map[string]*OTPEntry),
		now:   time.Now,
	}
}

// CanRequest fails while the previous OTP is younger than the cooldown
func (s *OTPService) CanRequest(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.store[sessionID]; ok {
		if s.now().Sub(existing.RequestedAt) < otpResendCooldown {
			return ErrOTPCooldown
		}
	}
	return nil
}

// Track records an OTP the backend has just sent
func (s *OTPService) Track(sessionID, reference, mobile string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.store[sessionID] = &OTPEntry{
		Reference:   reference,
		Mobile:      mobile,
		RequestedAt: now,
		ExpiresAt:   now.Add(otpLifetime),
	}
}

// Pending returns the outstanding OTP if it may still be verified
func (s *OTPService) Pending(sessionID string) (OTPEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.store[sessionID]
	if !ok {
		return OTPEntry{}, ErrOTPNotRequested
	}
	if s.now().After(entry.ExpiresAt) {
		delete(s.store, sessionID)
		return OTPEntry{}, ErrOTPExpired
	}
	if entry.Attempts >= otpMaxAttempts {
		delete(s.store, sessionID)
		return OTPEntry{}, ErrOTPTooManyAttempts
	}
	return *entry, nil
}

// RecordFailure counts a wrong code and reports how many tries remain
func (s *OTPService) RecordFailure(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.store[sessionID]
	if !ok {
		return 0
	}
	entry.Attempts++
	left := otpMaxAttempts - entry.Attempts
	if left <= 0 {
		delete(s.store, sessionID)
		return 0
	}
	return left
}

// Clear removes the OTP after a successful login or logout
func (s *OTPService) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, sessionID)
}

// Cleanup removes expired entries; run from the janitor
func (s *OTPService) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for key, entry := range s.store {
		if now.After(entry.ExpiresAt) {
			delete(s.store, key)
			removed++
		}
	}
	return removed
}
