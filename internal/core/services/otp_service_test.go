package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClockedOTP() (*OTPService, *time.Time) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s := NewOTPService()
	s.now = func() time.Time { return now }
	return s, &now
}

func TestOTPCooldown(t *testing.T) {
	s, now := newClockedOTP()

	require.NoError(t, s.CanRequest("s1"))
	s.Track("s1", "ref-1", "017")

	*now = now.Add(59 * time.Second)
	assert.ErrorIs(t, s.CanRequest("s1"), ErrOTPCooldown)
	assert.NoError(t, s.CanRequest("other"))

	*now = now.Add(time.Second)
	assert.NoError(t, s.CanRequest("s1"))
}

func TestOTPAttemptLimit(t *testing.T) {
	s, _ := newClockedOTP()
	s.Track("s1", "ref-1", "017")

	for i := 4; i >= 1; i-- {
		_, err := s.Pending("s1")
		require.NoError(t, err)
		assert.Equal(t, i, s.RecordFailure("s1"))
	}
	_, err := s.Pending("s1")
	require.NoError(t, err)
	assert.Equal(t, 0, s.RecordFailure("s1"))

	_, err = s.Pending("s1")
	assert.ErrorIs(t, err, ErrOTPNotRequested)
}

func TestOTPExpiry(t *testing.T) {
	s, now := newClockedOTP()
	s.Track("s1", "ref-1", "017")

	entry, err := s.Pending("s1")
	require.NoError(t, err)
	assert.Equal(t, "ref-1", entry.Reference)

	*now = now.Add(otpLifetime + time.Second)
	_, err = s.Pending("s1")
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestOTPCleanup(t *testing.T) {
	s, now := newClockedOTP()
	s.Track("a", "r", "1")
	*now = now.Add(otpLifetime / 2)
	s.Track("b", "r", "2")
	*now = now.Add(otpLifetime/2 + time.Second)

	assert.Equal(t, 1, s.Cleanup())
	_, err := s.Pending("b")
	assert.NoError(t, err)
}
