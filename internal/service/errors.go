package service

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrMissingField       = errors.New("required field missing")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("name or phone already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionNotFound    = errors.New("session not found or inactive")
	ErrSessionExpired     = errors.New("session expired")
	ErrMedicineNotFound   = errors.New("medicine not found")
	ErrInsufficientStock  = errors.New("insufficient medicine stock")
	ErrReminderNotFound   = errors.New("reminder not found")
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
