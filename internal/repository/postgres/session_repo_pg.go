package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medtrack/medtrack-api/internal/domain"
)

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepo(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Upsert replaces the user's session in place. user_id is unique, so the
// conflict clause turns a second login into an atomic takeover of the
// existing row: new token, reactivated, logout cleared. There is no window
// where two generations are both active.
func (r *SessionRepository) Upsert(ctx context.Context, userID int64, token string, loginAt, expiresAt time.Time) (*domain.Session, error) {
	const query = `
        INSERT INTO sessions (user_id, token, is_active, login_at, expires_at)
        VALUES ($1, $2, true, $3, $4)
        ON CONFLICT (user_id) DO UPDATE
        SET token = EXCLUDED.token,
            is_active = true,
            login_at = EXCLUDED.login_at,
            logout_at = NULL,
            last_refresh_at = NULL,
            expires_at = EXCLUDED.expires_at
        RETURNING id, user_id, token, is_active, login_at, logout_at, last_refresh_at, expires_at
    `
	row := r.db.QueryRowxContext(ctx, query, userID, token, loginAt, expiresAt)
	var session domain.Session
	if err := row.StructScan(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) FindActive(ctx context.Context, token string, userID int64) (*domain.Session, error) {
	const query = `
        SELECT id, user_id, token, is_active, login_at, logout_at, last_refresh_at, expires_at
        FROM sessions
        WHERE token = $1 AND user_id = $2 AND is_active = true
    `
	var session domain.Session
	if err := r.db.GetContext(ctx, &session, query, token, userID); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Rotate(ctx context.Context, sessionID int64, token string, refreshedAt, expiresAt time.Time) error {
	const query = `
        UPDATE sessions
        SET token = $2, last_refresh_at = $3, expires_at = $4
        WHERE id = $1 AND is_active = true
    `
	_, err := r.db.ExecContext(ctx, query, sessionID, token, refreshedAt, expiresAt)
	return err
}

func (r *SessionRepository) Deactivate(ctx context.Context, sessionID int64, logoutAt time.Time) error {
	const query = `
        UPDATE sessions
        SET is_active = false, logout_at = $2
        WHERE id = $1 AND is_active = true
    `
	_, err := r.db.ExecContext(ctx, query, sessionID, logoutAt)
	return err
}

// DeactivateByToken stamps the logout. Matching nothing is not an error:
// logging out twice, or with a token already rotated away, is a no-op.
func (r *SessionRepository) DeactivateByToken(ctx context.Context, userID int64, token string, logoutAt time.Time) error {
	const query = `
        UPDATE sessions
        SET is_active = false, logout_at = $3
        WHERE user_id = $1 AND token = $2 AND is_active = true
    `
	_, err := r.db.ExecContext(ctx, query, userID, token, logoutAt)
	return err
}
