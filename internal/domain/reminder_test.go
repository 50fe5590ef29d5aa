package domain

import (
	"testing"
	"time"
)

func TestReconcileDailyNeverDosed(t *testing.T) {
	r := Reminder{TimesTaken: 0}
	if r.ReconcileDaily(time.Now()) {
		t.Fatal("a reminder never dosed has nothing to reconcile")
	}
}

func TestReconcileDailySameDay(t *testing.T) {
	now := time.Date(2026, time.March, 10, 22, 0, 0, 0, time.Local)
	morning := time.Date(2026, time.March, 10, 7, 0, 0, 0, time.Local)

	r := Reminder{TimesTaken: 2, LastTakenAt: &morning}
	if r.ReconcileDaily(now) {
		t.Fatal("same-day counter must not be reset")
	}
	if r.TimesTaken != 2 {
		t.Fatalf("counter changed without a reset: %d", r.TimesTaken)
	}
}

func TestReconcileDailyPreviousDay(t *testing.T) {
	now := time.Date(2026, time.March, 10, 0, 30, 0, 0, time.Local)
	lastNight := time.Date(2026, time.March, 9, 23, 45, 0, 0, time.Local)

	r := Reminder{TimesTaken: 3, LastTakenAt: &lastNight}
	if !r.ReconcileDaily(now) {
		t.Fatal("counter from a previous day must be reset")
	}
	if r.TimesTaken != 0 || r.LastTakenAt != nil {
		t.Fatalf("reset must zero the counter and clear the timestamp: %+v", r)
	}
}

func TestReconcileDailyIdempotent(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)
	yesterday := now.AddDate(0, 0, -1)

	r := Reminder{TimesTaken: 1, LastTakenAt: &yesterday}
	if !r.ReconcileDaily(now) {
		t.Fatal("first reconcile should reset")
	}
	if r.ReconcileDaily(now) {
		t.Fatal("second reconcile with the same now must be a no-op")
	}
}

func TestReconcileDailyLongGap(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)
	lastMonth := now.AddDate(0, -1, 0)

	r := Reminder{TimesTaken: 4, LastTakenAt: &lastMonth}
	if !r.ReconcileDaily(now) {
		t.Fatal("a month-old counter must be reset")
	}
}
