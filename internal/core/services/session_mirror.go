package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tarit-loan/internal/adapters/persistence/models"
	"tarit-loan/internal/adapters/persistence/repositories"
	"tarit-loan/internal/pkg/seal"
)

// sealedMirror stores session fields encrypted, one row per field
type sealedMirror struct {
	repo   repositories.SessionMirrorRepository
	sealer *seal.Sealer
	ttl    time.Duration
	now    func() time.Time
	log    *logrus.Entry
}

// NewSealedMirror builds the MySQL-backed mirror. Rows expire after ttl.
func NewSealedMirror(repo repositories.SessionMirrorRepository, sealer *seal.Sealer, ttl time.Duration) SessionMirror {
	return &sealedMirror{
		repo:   repo,
		sealer: sealer,
		ttl:    ttl,
		now:    time.Now,
		log:    logrus.WithField("component", "session_mirror"),
	}
}

func sealContext(sessionID, field string) string {
	return sessionID + "|" + field
}

func (m *sealedMirror) Save(ctx context.Context, sessionID string, fields map[string]string) error {
	expires := m.now().Add(m.ttl)
	rows := make([]*models.SessionMirror, 0, len(fields))
	for name, value := range fields {
		if value == "" {
			continue
		}
		sealed, err := m.sealer.Seal(value, sealContext(sessionID, name))
		if err != nil {
			return fmt.Errorf("seal %s: %w", name, err)
		}
		rows = append(rows, &models.SessionMirror{
			SessionID:   sessionID,
			FieldName:   name,
			SealedValue: sealed,
			ExpiresAt:   expires,
		})
	}
	return m.repo.Upsert(ctx, rows)
}

// Load returns the fields that could be opened; tampered rows are skipped
func (m *sealedMirror) Load(ctx context.Context, sessionID string) (map[string]string, error) {
	rows, err := m.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(rows))
	for _, row := range rows {
		plain, err := m.sealer.Open(row.SealedValue, sealContext(sessionID, row.FieldName))
		if err != nil {
			m.log.WithError(err).WithField("field", row.FieldName).Warn("mirror row skipped")
			continue
		}
		fields[row.FieldName] = plain
	}
	return fields, nil
}

func (m *sealedMirror) Delete(ctx context.Context, sessionID string) error {
	return m.repo.DeleteBySessionID(ctx, sessionID)
}

func (m *sealedMirror) DeleteExpired(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx)
}
