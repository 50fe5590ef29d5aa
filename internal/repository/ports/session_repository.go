package ports

import (
	"context"
	"time"

	"github.com/medtrack/medtrack-api/internal/domain"
)

type SessionRepository interface {
	// Upsert activates a session for the user, replacing any previous row in
	// a single statement. The sessions table keeps one row per user, so two
	// concurrent logins cannot both end up with an active generation.
	Upsert(ctx context.Context, userID int64, token string, loginAt, expiresAt time.Time) (*domain.Session, error)
	FindActive(ctx context.Context, token string, userID int64) (*domain.Session, error)
	Rotate(ctx context.Context, sessionID int64, token string, refreshedAt, expiresAt time.Time) error
	Deactivate(ctx context.Context, sessionID int64, logoutAt time.Time) error
	DeactivateByToken(ctx context.Context, userID int64, token string, logoutAt time.Time) error
}
