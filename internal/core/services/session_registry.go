package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tarit-loan/internal/core/domain"
)

// Mirrored field names. The OTP reference is never mirrored.
const (
	fieldApplicationID     = "applicationId"
	fieldCustomerID        = "customerId"
	fieldAccountNumber     = "accountNumber"
	fieldRegimentReference = "regimentReference"
	fieldLoginID           = "loginId"
	fieldMobileNumber      = "mobileNumber"
	fieldCIF               = "cif"
	fieldCurrentStep       = "currentStep"
)

const mirrorTimeout = 3 * time.Second

// WizardSession is everything the BFF keeps for one browser.
type WizardSession struct {
	ID        string
	Store     *SessionStore
	Sequencer *StepSequencer
	State     *ApplicationState

	mirror   SessionMirror
	log      *logrus.Entry
	lastSeen time.Time
	seenMu   sync.Mutex
}

func newWizardSession(id string, mirror SessionMirror, now time.Time) *WizardSession {
	return &WizardSession{
		ID:        id,
		Store:     NewSessionStore(),
		Sequencer: NewStepSequencer(),
		State:     NewApplicationState(),
		mirror:    mirror,
		log:       logrus.WithField("component", "session"),
		lastSeen:  now,
	}
}

// Snapshot returns the current identifiers
func (w *WizardSession) Snapshot() domain.SessionContext {
	return w.Store.Get()
}

// Update merges the patch and mirrors the result
func (w *WizardSession) Update(ctx context.Context, patch domain.SessionPatch) domain.SessionContext {
	snap := w.Store.Update(patch)
	w.Persist(ctx)
	return snap
}

// Persist writes the mirrored fields and the current step. Failures are
// logged only; the in-memory session stays authoritative.
func (w *WizardSession) Persist(ctx context.Context) {
	if w.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()
	if err := w.mirror.Save(ctx, w.ID, mirrorFields(w.Store.Get(), w.Sequencer.Current())); err != nil {
		w.log.WithError(err).Warn("session mirror write failed")
	}
}

// Clear resets identifiers, cached aggregate and mirror
func (w *WizardSession) Clear(ctx context.Context) {
	w.Store.Clear()
	w.State.Reset()
	if w.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()
	if err := w.mirror.Delete(ctx, w.ID); err != nil {
		w.log.WithError(err).Warn("session mirror delete failed")
	}
}

func (w *WizardSession) touch(now time.Time) {
	w.seenMu.Lock()
	w.lastSeen = now
	w.seenMu.Unlock()
}

func (w *WizardSession) idleSince(now time.Time) time.Duration {
	w.seenMu.Lock()
	defer w.seenMu.Unlock()
	return now.Sub(w.lastSeen)
}

func mirrorFields(c domain.SessionContext, step domain.Step) map[string]string {
	return map[string]string{
		fieldApplicationID:     c.ApplicationID,
		fieldCustomerID:        c.CustomerID,
		fieldAccountNumber:     c.AccountNumber,
		fieldRegimentReference: c.RegimentReference,
		fieldLoginID:           c.LoginID,
		fieldMobileNumber:      c.MobileNumber,
		fieldCIF:               c.CIF,
		fieldCurrentStep:       strconv.Itoa(int(step)),
	}
}

func patchFromMirror(fields map[string]string) domain.SessionPatch {
	pick := func(name string) *string {
		if v, ok := fields[name]; ok {
			return domain.Str(v)
		}
		return nil
	}
	return domain.SessionPatch{
		ApplicationID:     pick(fieldApplicationID),
		CustomerID:        pick(fieldCustomerID),
		AccountNumber:     pick(fieldAccountNumber),
		RegimentReference: pick(fieldRegimentReference),
		LoginID:           pick(fieldLoginID),
		MobileNumber:      pick(fieldMobileNumber),
		CIF:               pick(fieldCIF),
	}
}

// SessionRegistry maps session ids to live wizard sessions.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*WizardSession
	mirror   SessionMirror
	now      func() time.Time
	log      *logrus.Entry
}

// NewSessionRegistry creates a registry; mirror may be nil to disable reload recovery
func NewSessionRegistry(mirror SessionMirror) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*WizardSession),
		mirror:   mirror,
		now:      time.Now,
		log:      logrus.WithField("component", "session_registry"),
	}
}

// Create starts a fresh session with a random id
func (r *SessionRegistry) Create() *WizardSession {
	s := newWizardSession(uuid.NewString(), r.mirror, r.now())
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get finds a live session and marks it as seen
func (r *SessionRegistry) Get(id string) (*WizardSession, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// Restore rebuilds a session from the mirror. A live session is returned as is.
// The boolean is false when there was nothing to restore.
func (r *SessionRegistry) Restore(ctx context.Context, id string) (*WizardSession, bool, error) {
	if s, ok := r.Get(id); ok {
		return s, true, nil
	}
	if r.mirror == nil || id == "" {
		return nil, false, nil
	}

	fields, err := r.mirror.Load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if len(fields) == 0 {
		return nil, false, nil
	}

	s := newWizardSession(id, r.mirror, r.now())
	s.Store.Update(patchFromMirror(fields))
	if n, err := strconv.Atoi(fields[fieldCurrentStep]); err == nil {
		s.Sequencer.Restore(domain.Step(n))
	}

	r.mu.Lock()
	// a concurrent restore may have won
	if existing, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return existing, true, nil
	}
	r.sessions[id] = s
	r.mu.Unlock()

	r.log.WithField("step", s.Sequencer.Current()).Info("session restored from mirror")
	return s, true, nil
}

// Remove clears a session and forgets it
func (r *SessionRegistry) Remove(ctx context.Context, id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Clear(ctx)
	}
}

// EvictIdle drops sessions unseen for longer than idle. Mirrors are kept
// until they expire so a later reload can still recover.
func (r *SessionRegistry) EvictIdle(idle time.Duration) int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if s.idleSince(now) > idle {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
