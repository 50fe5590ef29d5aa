package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/medtrack/medtrack-api/internal/domain"
	"github.com/medtrack/medtrack-api/internal/queue"
	"github.com/medtrack/medtrack-api/internal/repository/ports"
)

type fakeReminderRepo struct {
	createInput    *domain.Reminder
	createResult   *domain.Reminder
	createSnapshot *domain.ReminderMedicineSnapshot
	createErr      error

	findByIDInput  int64
	findByIDResult *domain.Reminder
	findByIDErr    error

	listByUserInput  int64
	listByUserResult []domain.ReminderWithMedicine
	listByUserErr    error

	listAllResult []domain.Reminder
	listAllErr    error

	listSinceInput struct {
		userID int64
		since  time.Time
	}
	listSinceResult []domain.ReminderWithMedicine
	listSinceErr    error

	setCalls []struct {
		id          int64
		timesTaken  int
		lastTakenAt *time.Time
	}
	setErr error

	updateInput struct {
		id    int64
		patch domain.ReminderPatch
	}
	updateResult *domain.Reminder
	updateErr    error

	deleteInput int64
	deleteErr   error
}

func (f *fakeReminderRepo) CreateConsumingStock(ctx context.Context, reminder *domain.Reminder) (*domain.Reminder, *domain.ReminderMedicineSnapshot, error) {
	copied := *reminder
	f.createInput = &copied
	if f.createErr != nil {
		return nil, nil, f.createErr
	}
	if f.createResult != nil {
		return f.createResult, f.createSnapshot, nil
	}
	stored := *reminder
	stored.ID = 1
	snapshot := f.createSnapshot
	if snapshot == nil {
		snapshot = &domain.ReminderMedicineSnapshot{ID: reminder.MedID, Name: "Paracetamol 500 mg", Stock: 10}
	}
	return &stored, snapshot, nil
}

func (f *fakeReminderRepo) FindByID(ctx context.Context, id int64) (*domain.Reminder, error) {
	f.findByIDInput = id
	return f.findByIDResult, f.findByIDErr
}

func (f *fakeReminderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.ReminderWithMedicine, error) {
	f.listByUserInput = userID
	if f.listByUserErr != nil {
		return nil, f.listByUserErr
	}
	return append([]domain.ReminderWithMedicine(nil), f.listByUserResult...), nil
}

func (f *fakeReminderRepo) ListAll(ctx context.Context) ([]domain.Reminder, error) {
	return append([]domain.Reminder(nil), f.listAllResult...), f.listAllErr
}

func (f *fakeReminderRepo) ListByUserSince(ctx context.Context, userID int64, since time.Time) ([]domain.ReminderWithMedicine, error) {
	f.listSinceInput = struct {
		userID int64
		since  time.Time
	}{userID: userID, since: since}
	if f.listSinceErr != nil {
		return nil, f.listSinceErr
	}
	return append([]domain.ReminderWithMedicine(nil), f.listSinceResult...), nil
}

func (f *fakeReminderRepo) SetTimesTaken(ctx context.Context, id int64, timesTaken int, lastTakenAt *time.Time) error {
	f.setCalls = append(f.setCalls, struct {
		id          int64
		timesTaken  int
		lastTakenAt *time.Time
	}{id: id, timesTaken: timesTaken, lastTakenAt: lastTakenAt})
	return f.setErr
}

func (f *fakeReminderRepo) Update(ctx context.Context, id int64, patch domain.ReminderPatch) (*domain.Reminder, error) {
	f.updateInput = struct {
		id    int64
		patch domain.ReminderPatch
	}{id: id, patch: patch}
	return f.updateResult, f.updateErr
}

func (f *fakeReminderRepo) Delete(ctx context.Context, id int64) error {
	f.deleteInput = id
	return f.deleteErr
}

type fakeMedicineRepo struct {
	findByIDInput  int64
	findByIDResult *domain.Medicine
	findByIDErr    error

	listResult []domain.Medicine
	listErr    error

	createResult *domain.Medicine
	createErr    error

	updateResult *domain.Medicine
	updateErr    error

	deleteErr error
}

func (f *fakeMedicineRepo) Create(ctx context.Context, name string, stock int, description, image *string) (*domain.Medicine, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createResult != nil {
		return f.createResult, nil
	}
	return &domain.Medicine{ID: 1, Name: name, Stock: stock, Description: description, Image: image}, nil
}

func (f *fakeMedicineRepo) FindByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	f.findByIDInput = id
	return f.findByIDResult, f.findByIDErr
}

func (f *fakeMedicineRepo) List(ctx context.Context) ([]domain.Medicine, error) {
	return append([]domain.Medicine(nil), f.listResult...), f.listErr
}

func (f *fakeMedicineRepo) Update(ctx context.Context, id int64, patch domain.MedicinePatch) (*domain.Medicine, error) {
	return f.updateResult, f.updateErr
}

func (f *fakeMedicineRepo) Delete(ctx context.Context, id int64) error {
	return f.deleteErr
}

type fakeStockAlerter struct {
	events []queue.StockAlertEvent
	err    error
}

func (f *fakeStockAlerter) PublishStockAlert(ctx context.Context, event queue.StockAlertEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func timePtr(t time.Time) *time.Time { return &t }

func TestCreateReminderDefaultsQuantity(t *testing.T) {
	reminders := &fakeReminderRepo{}
	medicines := &fakeMedicineRepo{findByIDResult: &domain.Medicine{ID: 2, Name: "Paracetamol 500 mg", Stock: 10}}
	svc := NewReminderService(reminders, medicines, nil, 5, nil)

	result, err := svc.Create(context.Background(), ReminderCreateInput{UserID: 7, MedID: 2, Time: " 08:00 "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reminders.createInput.Quantity != 1 {
		t.Fatalf("expected quantity to default to 1, got %d", reminders.createInput.Quantity)
	}
	if reminders.createInput.Time != "08:00" {
		t.Fatalf("expected trimmed time, got %q", reminders.createInput.Time)
	}
	if result.Reminder.ID == 0 {
		t.Fatal("expected stored reminder in result")
	}
}

func TestCreateReminderUnknownMedicine(t *testing.T) {
	medicines := &fakeMedicineRepo{findByIDErr: sql.ErrNoRows}
	svc := NewReminderService(&fakeReminderRepo{}, medicines, nil, 5, nil)

	_, err := svc.Create(context.Background(), ReminderCreateInput{UserID: 7, MedID: 99, Time: "08:00"})
	if !errors.Is(err, ErrMedicineNotFound) {
		t.Fatalf("expected ErrMedicineNotFound, got %v", err)
	}
}

func TestCreateReminderInsufficientStock(t *testing.T) {
	reminders := &fakeReminderRepo{createErr: ports.ErrInsufficientStock}
	medicines := &fakeMedicineRepo{findByIDResult: &domain.Medicine{ID: 2, Stock: 1}}
	alerter := &fakeStockAlerter{}
	svc := NewReminderService(reminders, medicines, alerter, 5, nil)

	_, err := svc.Create(context.Background(), ReminderCreateInput{UserID: 7, MedID: 2, Quantity: 3, Time: "08:00"})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if len(alerter.events) != 0 {
		t.Fatal("no alert must be published when the creation fails")
	}
}

func TestCreateReminderPublishesLowStockAlert(t *testing.T) {
	reminders := &fakeReminderRepo{createSnapshot: &domain.ReminderMedicineSnapshot{ID: 2, Name: "Paracetamol 500 mg", Stock: 3}}
	medicines := &fakeMedicineRepo{findByIDResult: &domain.Medicine{ID: 2, Stock: 4}}
	alerter := &fakeStockAlerter{}
	svc := NewReminderService(reminders, medicines, alerter, 5, nil)

	if _, err := svc.Create(context.Background(), ReminderCreateInput{UserID: 7, MedID: 2, Time: "08:00"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(alerter.events) != 1 {
		t.Fatalf("expected one stock alert, got %d", len(alerter.events))
	}
	event := alerter.events[0]
	if event.MedicineID != 2 || event.Remaining != 3 || event.Threshold != 5 {
		t.Fatalf("unexpected alert payload: %+v", event)
	}
}

func TestCreateReminderAboveThresholdNoAlert(t *testing.T) {
	reminders := &fakeReminderRepo{createSnapshot: &domain.ReminderMedicineSnapshot{ID: 2, Name: "Paracetamol 500 mg", Stock: 9}}
	medicines := &fakeMedicineRepo{findByIDResult: &domain.Medicine{ID: 2, Stock: 10}}
	alerter := &fakeStockAlerter{}
	svc := NewReminderService(reminders, medicines, alerter, 5, nil)

	if _, err := svc.Create(context.Background(), ReminderCreateInput{UserID: 7, MedID: 2, Time: "08:00"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(alerter.events) != 0 {
		t.Fatalf("expected no alert above threshold, got %d", len(alerter.events))
	}
}

func TestListForUserResetsStaleCounters(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)
	yesterday := now.AddDate(0, 0, -1)

	reminders := &fakeReminderRepo{
		listByUserResult: []domain.ReminderWithMedicine{
			{Reminder: domain.Reminder{ID: 1, UserID: 7, TimesTaken: 2, LastTakenAt: timePtr(yesterday)}},
			{Reminder: domain.Reminder{ID: 2, UserID: 7, TimesTaken: 1, LastTakenAt: timePtr(now.Add(-time.Hour))}},
			{Reminder: domain.Reminder{ID: 3, UserID: 7, TimesTaken: 0}},
		},
	}
	svc := NewReminderService(reminders, &fakeMedicineRepo{}, nil, 5, nil)
	svc.now = func() time.Time { return now }

	items, err := svc.ListForUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Only the reminder last dosed yesterday needs a reset.
	if len(reminders.setCalls) != 1 {
		t.Fatalf("expected one persisted reset, got %d", len(reminders.setCalls))
	}
	if reminders.setCalls[0].id != 1 || reminders.setCalls[0].timesTaken != 0 || reminders.setCalls[0].lastTakenAt != nil {
		t.Fatalf("unexpected reset call: %+v", reminders.setCalls[0])
	}

	if items[0].TimesTaken != 0 || items[0].LastTakenAt != nil {
		t.Fatalf("stale reminder should be zeroed in the response: %+v", items[0].Reminder)
	}
	if items[1].TimesTaken != 1 {
		t.Fatalf("same-day counter must survive, got %d", items[1].TimesTaken)
	}
}

func TestListForUserResolvesImageURLs(t *testing.T) {
	reminders := &fakeReminderRepo{
		listByUserResult: []domain.ReminderWithMedicine{
			{Reminder: domain.Reminder{ID: 1, UserID: 7}, MedicineImage: "abc.jpg"},
			{Reminder: domain.Reminder{ID: 2, UserID: 7}},
		},
	}
	imageURL := func(object string) *string {
		if object == "" {
			return nil
		}
		url := "https://cdn/" + object
		return &url
	}
	svc := NewReminderService(reminders, &fakeMedicineRepo{}, nil, 5, imageURL)

	items, err := svc.ListForUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if items[0].ImageURL == nil || *items[0].ImageURL != "https://cdn/abc.jpg" {
		t.Fatalf("expected resolved image url, got %v", items[0].ImageURL)
	}
	if items[1].ImageURL != nil {
		t.Fatal("expected nil url for missing image")
	}
}

func TestLogDoseDefaultsTimestamp(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	reminders := &fakeReminderRepo{findByIDResult: &domain.Reminder{ID: 1, UserID: 7}}
	svc := NewReminderService(reminders, &fakeMedicineRepo{}, nil, 5, nil)
	svc.now = func() time.Time { return now }

	if _, err := svc.LogDose(context.Background(), 1, 2, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(reminders.setCalls) != 1 {
		t.Fatalf("expected one persist call, got %d", len(reminders.setCalls))
	}
	call := reminders.setCalls[0]
	if call.timesTaken != 2 {
		t.Fatalf("expected times taken 2, got %d", call.timesTaken)
	}
	if call.lastTakenAt == nil || !call.lastTakenAt.Equal(now) {
		t.Fatalf("expected timestamp defaulted to now, got %v", call.lastTakenAt)
	}
}

func TestLogDoseRejectsNegative(t *testing.T) {
	svc := NewReminderService(&fakeReminderRepo{}, &fakeMedicineRepo{}, nil, 5, nil)

	if _, err := svc.LogDose(context.Background(), 1, -1, nil); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestLogDoseUnknownReminder(t *testing.T) {
	reminders := &fakeReminderRepo{findByIDErr: sql.ErrNoRows}
	svc := NewReminderService(reminders, &fakeMedicineRepo{}, nil, 5, nil)

	if _, err := svc.LogDose(context.Background(), 99, 1, nil); !errors.Is(err, ErrReminderNotFound) {
		t.Fatalf("expected ErrReminderNotFound, got %v", err)
	}
}

func TestResetZeroesCounter(t *testing.T) {
	reminders := &fakeReminderRepo{findByIDResult: &domain.Reminder{ID: 1, TimesTaken: 3}}
	svc := NewReminderService(reminders, &fakeMedicineRepo{}, nil, 5, nil)

	if err := svc.Reset(context.Background(), 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(reminders.setCalls) != 1 {
		t.Fatalf("expected one persist call, got %d", len(reminders.setCalls))
	}
	if reminders.setCalls[0].timesTaken != 0 || reminders.setCalls[0].lastTakenAt != nil {
		t.Fatalf("expected zeroed counter and cleared timestamp: %+v", reminders.setCalls[0])
	}
}

func TestUpdateReminderPatch(t *testing.T) {
	quantity := 2
	reminders := &fakeReminderRepo{updateResult: &domain.Reminder{ID: 1, Quantity: 2}}
	svc := NewReminderService(reminders, &fakeMedicineRepo{}, nil, 5, nil)

	updated, err := svc.Update(context.Background(), 1, domain.ReminderPatch{Quantity: &quantity})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", updated.Quantity)
	}
	if reminders.updateInput.patch.Time != nil {
		t.Fatal("absent fields must stay nil in the patch")
	}
}

func TestDeleteReminderNotFound(t *testing.T) {
	reminders := &fakeReminderRepo{deleteErr: sql.ErrNoRows}
	svc := NewReminderService(reminders, &fakeMedicineRepo{}, nil, 5, nil)

	if err := svc.Delete(context.Background(), 99); !errors.Is(err, ErrReminderNotFound) {
		t.Fatalf("expected ErrReminderNotFound, got %v", err)
	}
}

func TestHistoryWindow(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	reminders := &fakeReminderRepo{}
	svc := NewReminderService(reminders, &fakeMedicineRepo{}, nil, 5, nil)
	svc.now = func() time.Time { return now }

	if _, err := svc.History(context.Background(), 7, 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	wantSince := now.AddDate(0, 0, -30)
	if !reminders.listSinceInput.since.Equal(wantSince) {
		t.Fatalf("expected default 30 day window since %v, got %v", wantSince, reminders.listSinceInput.since)
	}

	if _, err := svc.History(context.Background(), 7, 7); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	wantSince = now.AddDate(0, 0, -7)
	if !reminders.listSinceInput.since.Equal(wantSince) {
		t.Fatalf("expected 7 day window since %v, got %v", wantSince, reminders.listSinceInput.since)
	}

	if _, err := svc.History(context.Background(), 7, -1); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for negative window, got %v", err)
	}
}
