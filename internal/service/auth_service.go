package service

import (
	"context"
	"strings"
	"time"

	"github.com/medtrack/medtrack-api/internal/domain"
	"github.com/medtrack/medtrack-api/internal/repository/ports"
	"github.com/medtrack/medtrack-api/internal/util"
)

// AuthService owns the session lifecycle: registration, login (session
// takeover), verification with lazy expiry, token rotation and logout.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	jwt      *util.JWTManager
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionRepository, jwt *util.JWTManager, ttl time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		jwt:      jwt,
		ttl:      ttl,
		now:      time.Now,
	}
}

type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      domain.Principal `json:"user"`
}

type VerifyResult struct {
	User         domain.Principal `json:"user"`
	ExpiresAt    time.Time        `json:"expires_at"`
	TimeToExpiry time.Duration    `json:"-"`
}

type RefreshResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int64     `json:"user_id"`
	RoleID    int64     `json:"role_id"`
}

// Register creates a patient account. Name and phone are unique; a violation
// of either constraint surfaces as ErrDuplicateUser.
func (s *AuthService) Register(ctx context.Context, name, phone, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" || password == "" {
		return nil, ErrMissingField
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, name, phone, hash, domain.RolePatient)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return user, nil
}

// Login verifies the credential and activates a fresh session generation.
// The session row is upserted keyed on the user id, so whatever session was
// active before is replaced in the same statement; at no point do two
// generations coexist.
func (s *AuthService) Login(ctx context.Context, name, password string) (*LoginResult, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, ErrMissingField
	}

	user, err := s.users.FindByName(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !util.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.Generate(user.ID, user.RoleID)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Upsert(ctx, user.ID, token, s.now(), expiresAt); err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      domain.Principal{ID: user.ID, Name: user.Name, RoleID: user.RoleID},
	}, nil
}

// Verify resolves the principal behind a bearer token. Expiry is evaluated
// here, lazily: an expired row is deactivated as a side effect and the call
// fails with ErrSessionExpired.
func (s *AuthService) Verify(ctx context.Context, token string) (*VerifyResult, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := s.sessions.FindActive(ctx, token, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	now := s.now()
	if session.Expired(now) {
		if err := s.sessions.Deactivate(ctx, session.ID, now); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return &VerifyResult{
		User:         domain.Principal{ID: user.ID, Name: user.Name, RoleID: user.RoleID},
		ExpiresAt:    session.ExpiresAt,
		TimeToExpiry: session.TimeToExpiry(now),
	}, nil
}

// Refresh rotates the token and extends the expiry on the existing session
// row. The checks mirror Verify; the old token stops matching the row the
// moment the rotation commits.
func (s *AuthService) Refresh(ctx context.Context, token string) (*RefreshResult, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := s.sessions.FindActive(ctx, token, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	now := s.now()
	if session.Expired(now) {
		if err := s.sessions.Deactivate(ctx, session.ID, now); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}

	newToken, newExpiresAt, err := s.jwt.Generate(claims.UserID, claims.RoleID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Rotate(ctx, session.ID, newToken, now, newExpiresAt); err != nil {
		return nil, err
	}

	return &RefreshResult{
		Token:     newToken,
		ExpiresAt: newExpiresAt,
		UserID:    claims.UserID,
		RoleID:    claims.RoleID,
	}, nil
}

// Logout deactivates the session matching (user, token). Terminating a
// session that is already gone is a success: logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, userID int64, token string) error {
	if token == "" {
		return ErrMissingField
	}
	return s.sessions.DeactivateByToken(ctx, userID, token, s.now())
}
