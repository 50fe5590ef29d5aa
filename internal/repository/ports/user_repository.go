package ports

import (
	"context"

	"github.com/medtrack/medtrack-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, name, phone, passwordHash string, roleID int64) (*domain.User, error)
	FindByName(ctx context.Context, name string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	ListByRole(ctx context.Context, roleID int64) ([]domain.User, error)
	ListActive(ctx context.Context) ([]domain.ActiveUser, error)
	Delete(ctx context.Context, id int64) error
}
