package repositories

import (
	"context"
	"time"

	"tarit-loan/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sessionMirrorRepository implements SessionMirrorRepository interface
type sessionMirrorRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSessionMirrorRepository creates a new session mirror repository
func NewSessionMirrorRepository(db *gorm.DB) SessionMirrorRepository {
	return &sessionMirrorRepository{db: db, now: time.Now}
}

// Upsert writes rows, replacing the sealed value and expiry of existing fields
func (r *sessionMirrorRepository) Upsert(ctx context.Context, rows []*models.SessionMirror) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "field_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"sealed_value", "expires_at", "updated_at"}),
		}).
		Create(&rows).Error
}

// GetBySessionID gets the unexpired fields of a session
func (r *sessionMirrorRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.SessionMirror, error) {
	var rows []*models.SessionMirror
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Where("expires_at > ?", r.now()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteBySessionID removes every field of a session (logout)
func (r *sessionMirrorRepository) DeleteBySessionID(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.SessionMirror{}).Error
}

// DeleteExpired deletes all expired rows (cleanup job)
func (r *sessionMirrorRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.now()).
		Delete(&models.SessionMirror{})
	return res.RowsAffected, res.Error
}
