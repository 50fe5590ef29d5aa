package ports

import (
	"context"

	"github.com/medtrack/medtrack-api/internal/domain"
)

type MedicineRepository interface {
	Create(ctx context.Context, name string, stock int, description, image *string) (*domain.Medicine, error)
	FindByID(ctx context.Context, id int64) (*domain.Medicine, error)
	List(ctx context.Context) ([]domain.Medicine, error)
	Update(ctx context.Context, id int64, patch domain.MedicinePatch) (*domain.Medicine, error)
	Delete(ctx context.Context, id int64) error
}
