package domain

import "time"

// Reminder is a scheduled dosage instruction binding a user to a medicine.
// TimesTaken counts doses logged on the current calendar day only; a value
// carried over from a previous day is stale and must be reconciled before it
// is returned or acted upon.
type Reminder struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	MedID       int64      `db:"med_id" json:"med_id"`
	Quantity    int        `db:"quantity" json:"quantity"`
	TimesTaken  int        `db:"times_taken" json:"times_taken"`
	Time        string     `db:"time" json:"time"`
	BeforeMeal  bool       `db:"before_meal" json:"before_meal"`
	LastTakenAt *time.Time `db:"last_taken_at" json:"last_taken_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// ReconcileDaily resets the daily counter when the last dose was logged on a
// previous local calendar day. It mutates the reminder in place and reports
// whether the change needs to be persisted. Calling it twice with the same
// now is a no-op the second time.
func (r *Reminder) ReconcileDaily(now time.Time) bool {
	if r.LastTakenAt == nil {
		return false
	}
	if sameLocalDay(*r.LastTakenAt, now) {
		return false
	}
	r.TimesTaken = 0
	r.LastTakenAt = nil
	return true
}

func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// ReminderPatch carries a partial update; nil fields keep the stored value.
type ReminderPatch struct {
	UserID     *int64
	MedID      *int64
	Quantity   *int
	TimesTaken *int
	Time       *string
	BeforeMeal *bool
}

// ReminderWithMedicine is a reminder row joined with the medicine it
// references. Name and image default to empty strings when the medicine row
// is gone, tolerating orphaned references.
type ReminderWithMedicine struct {
	Reminder
	MedicineName  string  `db:"medicine_name" json:"medicine_name"`
	MedicineImage string  `db:"medicine_image" json:"medicine_image"`
	ImageURL      *string `db:"-" json:"medicine_image_url,omitempty"`
}

// ReminderMedicineSnapshot is returned alongside a freshly created reminder.
type ReminderMedicineSnapshot struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Stock int    `db:"stock" json:"stock"`
}
