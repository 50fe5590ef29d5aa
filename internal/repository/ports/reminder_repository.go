package ports

import (
	"context"
	"errors"
	"time"

	"github.com/medtrack/medtrack-api/internal/domain"
)

type ReminderRepository interface {
	// CreateConsumingStock inserts the reminder and decrements the medicine's
	// stock in one transaction. The decrement is conditional (stock must
	// cover the quantity); when it matches no row the transaction rolls back
	// and ErrInsufficientStock is returned, leaving both tables untouched.
	CreateConsumingStock(ctx context.Context, reminder *domain.Reminder) (*domain.Reminder, *domain.ReminderMedicineSnapshot, error)
	FindByID(ctx context.Context, id int64) (*domain.Reminder, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.ReminderWithMedicine, error)
	ListAll(ctx context.Context) ([]domain.Reminder, error)
	ListByUserSince(ctx context.Context, userID int64, since time.Time) ([]domain.ReminderWithMedicine, error)
	SetTimesTaken(ctx context.Context, id int64, timesTaken int, lastTakenAt *time.Time) error
	Update(ctx context.Context, id int64, patch domain.ReminderPatch) (*domain.Reminder, error)
	Delete(ctx context.Context, id int64) error
}

// ErrInsufficientStock is reported by CreateConsumingStock when the medicine
// row exists but its stock does not cover the requested quantity.
var ErrInsufficientStock = errors.New("insufficient medicine stock")
