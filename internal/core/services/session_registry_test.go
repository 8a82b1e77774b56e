package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarit-loan/internal/adapters/persistence/models"
	"tarit-loan/internal/core/domain"
	"tarit-loan/internal/pkg/seal"
)

// memMirrorRepo is an in-memory SessionMirrorRepository
type memMirrorRepo struct {
	mu   sync.Mutex
	rows map[string]map[string]*models.SessionMirror
}

func newMemMirrorRepo() *memMirrorRepo {
	return &memMirrorRepo{rows: make(map[string]map[string]*models.SessionMirror)}
}

func (m *memMirrorRepo) Upsert(_ context.Context, rows []*models.SessionMirror) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		if m.rows[r.SessionID] == nil {
			m.rows[r.SessionID] = make(map[string]*models.SessionMirror)
		}
		cp := *r
		m.rows[r.SessionID][r.FieldName] = &cp
	}
	return nil
}

func (m *memMirrorRepo) GetBySessionID(_ context.Context, id string) ([]*models.SessionMirror, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.SessionMirror
	for _, r := range m.rows[id] {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memMirrorRepo) DeleteBySessionID(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.rows, id)
	m.mu.Unlock()
	return nil
}

func (m *memMirrorRepo) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func (m *memMirrorRepo) raw(id, field string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[id][field]; ok {
		return r.SealedValue
	}
	return ""
}

func newTestMirror(t *testing.T) (SessionMirror, *memMirrorRepo) {
	t.Helper()
	sealer, err := seal.New("test-secret")
	require.NoError(t, err)
	repo := newMemMirrorRepo()
	return NewSealedMirror(repo, sealer, time.Hour), repo
}

func TestMirrorSealsAndSkipsOTPReference(t *testing.T) {
	mirror, repo := newTestMirror(t)
	reg := NewSessionRegistry(mirror)
	sess := reg.Create()

	sess.Update(context.Background(), domain.SessionPatch{
		CIF:          domain.Str("CIF-77"),
		MobileNumber: domain.Str("01712345678"),
		OTPReference: domain.Str("otp-ref"),
	})

	sealed := repo.raw(sess.ID, fieldCIF)
	require.NotEmpty(t, sealed)
	assert.False(t, strings.Contains(sealed, "CIF-77"))
	assert.Empty(t, repo.raw(sess.ID, "otpReference"))
	assert.Empty(t, repo.raw(sess.ID, fieldApplicationID))

	fields, err := mirror.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "CIF-77", fields[fieldCIF])
	assert.Equal(t, "01712345678", fields[fieldMobileNumber])
	assert.Equal(t, "1", fields[fieldCurrentStep])
}

func TestRestoreRebuildsEvictedSession(t *testing.T) {
	mirror, _ := newTestMirror(t)
	reg := NewSessionRegistry(mirror)
	sess := reg.Create()
	sess.Sequencer.Restore(domain.StepLoanInfo)
	sess.Update(context.Background(), domain.SessionPatch{
		ApplicationID: domain.Str("APP-1"),
		OTPReference:  domain.Str("otp-ref"),
	})

	reg.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, reg.EvictIdle(time.Hour))
	_, ok := reg.Get(sess.ID)
	require.False(t, ok)

	restored, ok, err := reg.Restore(context.Background(), sess.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sess.ID, restored.ID)
	assert.Equal(t, "APP-1", restored.Snapshot().ApplicationID)
	assert.Empty(t, restored.Snapshot().OTPReference)
	assert.Equal(t, domain.StepLoanInfo, restored.Sequencer.Current())

	again, ok := reg.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, restored, again)
}

func TestRestoreUnknownSession(t *testing.T) {
	mirror, _ := newTestMirror(t)
	reg := NewSessionRegistry(mirror)

	s, ok, err := reg.Restore(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, s)
}

func TestRestoreWithoutMirror(t *testing.T) {
	reg := NewSessionRegistry(nil)
	_, ok, err := reg.Restore(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveClearsMirror(t *testing.T) {
	mirror, repo := newTestMirror(t)
	reg := NewSessionRegistry(mirror)
	sess := reg.Create()
	sess.Update(context.Background(), domain.SessionPatch{CIF: domain.Str("C1")})

	reg.Remove(context.Background(), sess.ID)

	assert.Empty(t, repo.raw(sess.ID, fieldCIF))
	assert.Equal(t, domain.SessionContext{}, sess.Snapshot())
	assert.Zero(t, reg.Len())
}

func TestLoadSkipsTamperedRows(t *testing.T) {
	mirror, repo := newTestMirror(t)
	require.NoError(t, mirror.Save(context.Background(), "s1", map[string]string{fieldCIF: "C1", fieldLoginID: "L1"}))

	// move a sealed value to another session; its context no longer matches
	require.NoError(t, repo.Upsert(context.Background(), []*models.SessionMirror{{
		SessionID: "s2", FieldName: fieldCIF, SealedValue: repo.raw("s1", fieldCIF), ExpiresAt: time.Now().Add(time.Hour),
	}}))

	fields, err := mirror.Load(context.Background(), "s2")
	require.NoError(t, err)
	assert.Empty(t, fields)
}
