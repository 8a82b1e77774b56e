package origination

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	// RefreshWindow is how close to expiry a credential may get before it is refetched
	RefreshWindow = 5 * time.Minute
	// DefaultTokenTTL applies when issuance omits expiresIn
	DefaultTokenTTL = 3600 * time.Second
)

var (
	ErrNotConfigured = errors.New("origination base URL is not configured")
	ErrTokenRejected = errors.New("token issuance rejected")
	ErrTokenMissing  = errors.New("token issuance returned no token")
)

// Credential is the short-lived backend key. It only lives in memory.
type Credential struct {
	Value     string
	ExpiresAt time.Time
}

// String keeps the value out of logs and fmt output
func (c Credential) String() string {
	return "Credential{redacted, expires " + c.ExpiresAt.Format(time.RFC3339) + "}"
}

// GoString keeps the value out of %#v output
func (c Credential) GoString() string { return c.String() }

// TokenSource is what the request wrapper needs from the token manager
type TokenSource interface {
	EnsureValidToken(ctx context.Context) (Credential, error)
	Invalidate()
}

// TokenManager owns the single process-wide credential.
type TokenManager struct {
	rest   *resty.Client
	log    *logrus.Entry
	now    func() time.Time
	window time.Duration

	mu   sync.Mutex
	cred Credential
}

// NewTokenManager builds a manager issuing tokens against opts.BaseURL
func NewTokenManager(opts Options) *TokenManager {
	return &TokenManager{
		rest:   newRestClient(opts),
		log:    logrus.WithField("component", "origination.token"),
		now:    time.Now,
		window: RefreshWindow,
	}
}

// WithClock replaces the time source, used by tests
func (t *TokenManager) WithClock(now func() time.Time) *TokenManager {
	t.now = now
	return t
}

// EnsureValidToken returns the cached credential unless it is missing or
// expires within the refresh window, in which case a new one is fetched.
func (t *TokenManager) EnsureValidToken(ctx context.Context) (Credential, error) {
	if cred, ok := t.currentIfValid(); ok {
		return cred, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// another caller may have refreshed while we waited
	if cred, ok := t.currentIfValidLocked(); ok {
		return cred, nil
	}

	cred, err := t.fetch(ctx)
	if err != nil {
		t.cred = Credential{}
		tokenFetchesTotal.WithLabelValues("error").Inc()
		return Credential{}, err
	}
	t.cred = cred
	tokenFetchesTotal.WithLabelValues("ok").Inc()
	t.log.WithField("expires_at", cred.ExpiresAt.Format(time.RFC3339)).Debug("credential issued")
	return cred, nil
}

// Invalidate drops the cached credential so the next call fetches
func (t *TokenManager) Invalidate() {
	t.mu.Lock()
	t.cred = Credential{}
	t.mu.Unlock()
}

func (t *TokenManager) currentIfValid() (Credential, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentIfValidLocked()
}

func (t *TokenManager) currentIfValidLocked() (Credential, bool) {
	if t.cred.Value == "" || t.cred.ExpiresAt.IsZero() {
		return Credential{}, false
	}
	if t.cred.ExpiresAt.Sub(t.now()) <= t.window {
		return Credential{}, false
	}
	return t.cred, true
}

func (t *TokenManager) fetch(ctx context.Context) (Credential, error) {
	if t.rest.BaseURL == "" {
		return Credential{}, ErrNotConfigured
	}

	resp, err := t.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody([]byte("{}")).
		Post(PathToken)
	if err != nil {
		return Credential{}, errors.Wrap(err, "request token")
	}

	env, err := DecodeEnvelope(resp.Body())
	if err != nil {
		return Credential{}, errors.Wrapf(err, "token response (HTTP %d)", resp.StatusCode())
	}
	if env.Status != StatusOK {
		return Credential{}, errors.Wrapf(ErrTokenRejected, "status %q: %s", env.Status, env.Message)
	}

	value := env.ExtraString("token")
	if value == "" {
		return Credential{}, ErrTokenMissing
	}

	return Credential{
		Value:     value,
		ExpiresAt: t.now().Add(parseTTL(env.Extra["expiresIn"])),
	}, nil
}

// parseTTL accepts expiresIn as a number or a numeric string of seconds
func parseTTL(raw jx.Raw) time.Duration {
	if len(raw) == 0 {
		return DefaultTokenTTL
	}
	s, err := DecodeScalar(jx.DecodeBytes(raw))
	if err != nil || s == "" {
		return DefaultTokenTTL
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs <= 0 {
		return DefaultTokenTTL
	}
	return time.Duration(secs * float64(time.Second))
}
