package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/medtrack/medtrack-api/internal/domain"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, name, phone, passwordHash string, roleID int64) (*domain.User, error) {
	const query = `
        INSERT INTO users (name, phone, password_hash, role_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, name, phone, password_hash, role_id, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, name, phone, passwordHash, roleID)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByName(ctx context.Context, name string) (*domain.User, error) {
	const query = `
        SELECT id, name, phone, password_hash, role_id, created_at
        FROM users
        WHERE name = $1
    `
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, name); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT id, name, phone, password_hash, role_id, created_at
        FROM users
        WHERE id = $1
    `
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, roleID int64) ([]domain.User, error) {
	const query = `
        SELECT id, name, phone, password_hash, role_id, created_at
        FROM users
        WHERE role_id = $1
        ORDER BY name
    `
	var users []domain.User
	if err := r.db.SelectContext(ctx, &users, query, roleID); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) ListActive(ctx context.Context) ([]domain.ActiveUser, error) {
	const query = `
        SELECT u.id, u.name, u.phone, s.login_at, s.is_active
        FROM sessions s
        JOIN users u ON u.id = s.user_id
        WHERE s.is_active = true
        ORDER BY s.login_at DESC
    `
	var users []domain.ActiveUser
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
