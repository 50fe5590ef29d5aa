package domain

import "time"

// Session is one authentication lifetime for a user. The sessions table keeps
// at most one row per user (user_id is unique); a new login replaces the row
// in place rather than inserting alongside it.
type Session struct {
	ID            int64      `db:"id" json:"id"`
	UserID        int64      `db:"user_id" json:"user_id"`
	Token         string     `db:"token" json:"-"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	LoginAt       time.Time  `db:"login_at" json:"login_at"`
	LogoutAt      *time.Time `db:"logout_at" json:"logout_at,omitempty"`
	LastRefreshAt *time.Time `db:"last_refresh_at" json:"last_refresh_at,omitempty"`
	ExpiresAt     time.Time  `db:"expires_at" json:"expires_at"`
}

// Expired reports whether the session's lifetime has passed. Expiry is
// evaluated lazily at read time; callers that observe an expired session are
// responsible for deactivating the row.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// TimeToExpiry returns the remaining lifetime, never negative.
func (s *Session) TimeToExpiry(now time.Time) time.Duration {
	d := s.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
