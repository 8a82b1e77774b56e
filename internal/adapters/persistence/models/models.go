package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Session mirror
// ============================================================

// SessionMirror is one sealed session field kept for reload recovery.
// (session_id, field_name) is unique so writes are upserts.
type SessionMirror struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   string    `gorm:"size:64;not null;uniqueIndex:idx_mirror_session_field" json:"session_id"`
	FieldName   string    `gorm:"size:32;not null;uniqueIndex:idx_mirror_session_field" json:"field_name"`
	SealedValue string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SessionMirror) TableName() string {
	return "session_mirrors"
}

func (m *SessionMirror) IsExpired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}

// AutoMigrate runs auto migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&SessionMirror{},
	)
}
