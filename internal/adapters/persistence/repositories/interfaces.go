package repositories

import (
	"context"

	"tarit-loan/internal/adapters/persistence/models"
)

// SessionMirrorRepository defines the durable session mirror
type SessionMirrorRepository interface {
	Upsert(ctx context.Context, rows []*models.SessionMirror) error
	GetBySessionID(ctx context.Context, sessionID string) ([]*models.SessionMirror, error)
	DeleteBySessionID(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
