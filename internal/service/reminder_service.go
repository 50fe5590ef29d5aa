package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/medtrack/medtrack-api/internal/domain"
	"github.com/medtrack/medtrack-api/internal/queue"
	"github.com/medtrack/medtrack-api/internal/repository/ports"
)

const defaultHistoryDays = 30

// StockAlerter publishes low-stock events; satisfied by *queue.Publisher.
type StockAlerter interface {
	PublishStockAlert(ctx context.Context, event queue.StockAlertEvent) error
}

// ReminderService owns the reminder lifecycle: creation with atomic stock
// consumption, read-triggered daily-counter reconciliation, dose logging and
// the medication history window.
type ReminderService struct {
	reminders ports.ReminderRepository
	medicines ports.MedicineRepository
	publisher StockAlerter

	stockAlertThreshold int
	imageURL            func(object string) *string
	now                 func() time.Time
}

func NewReminderService(reminders ports.ReminderRepository, medicines ports.MedicineRepository, publisher StockAlerter, stockAlertThreshold int, imageURL func(object string) *string) *ReminderService {
	if imageURL == nil {
		imageURL = func(string) *string { return nil }
	}
	return &ReminderService{
		reminders:           reminders,
		medicines:           medicines,
		publisher:           publisher,
		stockAlertThreshold: stockAlertThreshold,
		imageURL:            imageURL,
		now:                 time.Now,
	}
}

type ReminderCreateInput struct {
	UserID     int64
	MedID      int64
	Quantity   int
	Time       string
	BeforeMeal bool
}

type ReminderCreateResult struct {
	Reminder domain.Reminder                 `json:"reminder"`
	Medicine domain.ReminderMedicineSnapshot `json:"medicine"`
}

// Create validates the input, then hands the stock consumption and the
// insert to the store as one unit of work. Either both commit or neither is
// observable; the stock check itself lives in the conditional decrement, not
// here, so concurrent creations cannot double-spend.
func (s *ReminderService) Create(ctx context.Context, input ReminderCreateInput) (*ReminderCreateResult, error) {
	if input.UserID == 0 || input.MedID == 0 || strings.TrimSpace(input.Time) == "" {
		return nil, ErrMissingField
	}
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	if _, err := s.medicines.FindByID(ctx, input.MedID); err != nil {
		if isNotFound(err) {
			return nil, ErrMedicineNotFound
		}
		return nil, err
	}

	reminder := &domain.Reminder{
		UserID:     input.UserID,
		MedID:      input.MedID,
		Quantity:   quantity,
		Time:       strings.TrimSpace(input.Time),
		BeforeMeal: input.BeforeMeal,
	}
	stored, snapshot, err := s.reminders.CreateConsumingStock(ctx, reminder)
	if err != nil {
		if errors.Is(err, ports.ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		return nil, err
	}

	s.maybePublishStockAlert(ctx, snapshot)

	return &ReminderCreateResult{Reminder: *stored, Medicine: *snapshot}, nil
}

// ListForUser returns the user's reminders joined with medicine metadata.
// Counters left over from a previous calendar day are reset here, persisted
// immediately and reflected in the returned snapshot: every listing call
// self-heals the staleness it observes.
func (s *ReminderService) ListForUser(ctx context.Context, userID int64) ([]domain.ReminderWithMedicine, error) {
	if userID == 0 {
		return nil, ErrMissingField
	}

	items, err := s.reminders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range items {
		if items[i].ReconcileDaily(now) {
			if err := s.reminders.SetTimesTaken(ctx, items[i].ID, 0, nil); err != nil {
				return nil, err
			}
		}
		items[i].ImageURL = s.imageURL(items[i].MedicineImage)
	}
	return items, nil
}

// ListAll is the administrative dump of every reminder, unreconciled.
func (s *ReminderService) ListAll(ctx context.Context) ([]domain.Reminder, error) {
	return s.reminders.ListAll(ctx)
}

// LogDose records the day's counter. lastTakenAt defaults to now when the
// client does not supply one. The counter is not bounded by the reminder's
// quantity; over-logging is accepted as-is.
func (s *ReminderService) LogDose(ctx context.Context, reminderID int64, timesTaken int, lastTakenAt *time.Time) (*domain.Reminder, error) {
	if timesTaken < 0 {
		return nil, ErrMissingField
	}
	if _, err := s.reminders.FindByID(ctx, reminderID); err != nil {
		if isNotFound(err) {
			return nil, ErrReminderNotFound
		}
		return nil, err
	}

	takenAt := lastTakenAt
	if takenAt == nil {
		t := s.now()
		takenAt = &t
	}
	if err := s.reminders.SetTimesTaken(ctx, reminderID, timesTaken, takenAt); err != nil {
		if isNotFound(err) {
			return nil, ErrReminderNotFound
		}
		return nil, err
	}
	return s.reminders.FindByID(ctx, reminderID)
}

// Reset forces the daily counter back to zero and clears the last dose
// timestamp.
func (s *ReminderService) Reset(ctx context.Context, reminderID int64) error {
	if _, err := s.reminders.FindByID(ctx, reminderID); err != nil {
		if isNotFound(err) {
			return ErrReminderNotFound
		}
		return err
	}
	if err := s.reminders.SetTimesTaken(ctx, reminderID, 0, nil); err != nil {
		if isNotFound(err) {
			return ErrReminderNotFound
		}
		return err
	}
	return nil
}

// Update applies a partial update; absent fields keep their stored values.
// A changed med_id is not re-validated against the medicine table and no
// stock moves.
func (s *ReminderService) Update(ctx context.Context, reminderID int64, patch domain.ReminderPatch) (*domain.Reminder, error) {
	updated, err := s.reminders.Update(ctx, reminderID, patch)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReminderNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes the reminder. Stock consumed at creation stays consumed.
func (s *ReminderService) Delete(ctx context.Context, reminderID int64) error {
	if err := s.reminders.Delete(ctx, reminderID); err != nil {
		if isNotFound(err) {
			return ErrReminderNotFound
		}
		return err
	}
	return nil
}

// History returns the user's reminders whose last activity (dose logged, or
// creation when never dosed) falls within the past `days` days. days
// defaults to 30 and must not be negative.
func (s *ReminderService) History(ctx context.Context, userID int64, days int) ([]domain.ReminderWithMedicine, error) {
	if userID == 0 {
		return nil, ErrMissingField
	}
	if days < 0 {
		return nil, ErrMissingField
	}
	if days == 0 {
		days = defaultHistoryDays
	}

	since := s.now().AddDate(0, 0, -days)
	items, err := s.reminders.ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].ImageURL = s.imageURL(items[i].MedicineImage)
	}
	return items, nil
}

func (s *ReminderService) maybePublishStockAlert(ctx context.Context, snapshot *domain.ReminderMedicineSnapshot) {
	if s.publisher == nil || snapshot.Stock > s.stockAlertThreshold {
		return
	}
	event := queue.StockAlertEvent{
		MedicineID:   snapshot.ID,
		MedicineName: snapshot.Name,
		Remaining:    snapshot.Stock,
		Threshold:    s.stockAlertThreshold,
		At:           s.now().UTC(),
	}
	if err := s.publisher.PublishStockAlert(ctx, event); err != nil {
		log.Printf("stock alert for medicine %d not published: %v", snapshot.ID, err)
	}
}
