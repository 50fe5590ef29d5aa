package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medtrack/medtrack-api/internal/domain"
	"github.com/medtrack/medtrack-api/internal/repository/ports"
)

type ReminderRepository struct {
	db *sqlx.DB
}

func NewReminderRepo(db *sqlx.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

const reminderColumns = `id, user_id, med_id, quantity, times_taken, "time", before_meal, last_taken_at, created_at`

// CreateConsumingStock runs the compare-and-decrement and the reminder insert
// in one transaction. The UPDATE's stock >= quantity predicate is the only
// stock check; it serializes concurrent creations on the medicine row, so two
// requests can never both spend the same stock.
func (r *ReminderRepository) CreateConsumingStock(ctx context.Context, reminder *domain.Reminder) (*domain.Reminder, *domain.ReminderMedicineSnapshot, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	const decrement = `
        UPDATE medicines
        SET stock = stock - $2, updated_at = NOW()
        WHERE id = $1 AND stock >= $2
        RETURNING id, name, stock
    `
	var snapshot domain.ReminderMedicineSnapshot
	if err := tx.QueryRowxContext(ctx, decrement, reminder.MedID, reminder.Quantity).StructScan(&snapshot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ports.ErrInsufficientStock
		}
		return nil, nil, err
	}

	const insert = `
        INSERT INTO reminders (user_id, med_id, quantity, "time", before_meal)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + reminderColumns + `
    `
	var stored domain.Reminder
	row := tx.QueryRowxContext(ctx, insert, reminder.UserID, reminder.MedID, reminder.Quantity, reminder.Time, reminder.BeforeMeal)
	if err := row.StructScan(&stored); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &stored, &snapshot, nil
}

func (r *ReminderRepository) FindByID(ctx context.Context, id int64) (*domain.Reminder, error) {
	const query = `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1`
	var reminder domain.Reminder
	if err := r.db.GetContext(ctx, &reminder, query, id); err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *ReminderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.ReminderWithMedicine, error) {
	const query = `
        SELECT r.id, r.user_id, r.med_id, r.quantity, r.times_taken, r."time",
               r.before_meal, r.last_taken_at, r.created_at,
               COALESCE(m.name, '') AS medicine_name,
               COALESCE(m.image, '') AS medicine_image
        FROM reminders r
        LEFT JOIN medicines m ON m.id = r.med_id
        WHERE r.user_id = $1
        ORDER BY r.created_at
    `
	var reminders []domain.ReminderWithMedicine
	if err := r.db.SelectContext(ctx, &reminders, query, userID); err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *ReminderRepository) ListAll(ctx context.Context) ([]domain.Reminder, error) {
	const query = `SELECT ` + reminderColumns + ` FROM reminders ORDER BY created_at`
	var reminders []domain.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query); err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListByUserSince returns the user's reminders whose last activity falls
// inside the window; rows never dosed fall back to their creation time.
func (r *ReminderRepository) ListByUserSince(ctx context.Context, userID int64, since time.Time) ([]domain.ReminderWithMedicine, error) {
	const query = `
        SELECT r.id, r.user_id, r.med_id, r.quantity, r.times_taken, r."time",
               r.before_meal, r.last_taken_at, r.created_at,
               COALESCE(m.name, '') AS medicine_name,
               COALESCE(m.image, '') AS medicine_image
        FROM reminders r
        LEFT JOIN medicines m ON m.id = r.med_id
        WHERE r.user_id = $1 AND COALESCE(r.last_taken_at, r.created_at) >= $2
        ORDER BY COALESCE(r.last_taken_at, r.created_at) DESC
    `
	var reminders []domain.ReminderWithMedicine
	if err := r.db.SelectContext(ctx, &reminders, query, userID, since); err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *ReminderRepository) SetTimesTaken(ctx context.Context, id int64, timesTaken int, lastTakenAt *time.Time) error {
	const query = `
        UPDATE reminders
        SET times_taken = $2, last_taken_at = $3
        WHERE id = $1
    `
	res, err := r.db.ExecContext(ctx, query, id, timesTaken, lastTakenAt)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ReminderRepository) Update(ctx context.Context, id int64, patch domain.ReminderPatch) (*domain.Reminder, error) {
	const query = `
        UPDATE reminders
        SET user_id = COALESCE($2, user_id),
            med_id = COALESCE($3, med_id),
            quantity = COALESCE($4, quantity),
            times_taken = COALESCE($5, times_taken),
            "time" = COALESCE($6, "time"),
            before_meal = COALESCE($7, before_meal)
        WHERE id = $1
        RETURNING ` + reminderColumns + `
    `
	row := r.db.QueryRowxContext(ctx, query, id, patch.UserID, patch.MedID, patch.Quantity, patch.TimesTaken, patch.Time, patch.BeforeMeal)
	var reminder domain.Reminder
	if err := row.StructScan(&reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *ReminderRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM reminders WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
