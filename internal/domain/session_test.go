package domain

import (
	"testing"
	"time"
)

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	s := Session{ExpiresAt: now.Add(time.Minute)}
	if s.Expired(now) {
		t.Fatal("session expiring in a minute must not be expired")
	}

	s.ExpiresAt = now
	if !s.Expired(now) {
		t.Fatal("a session is expired at exactly its expiry instant")
	}

	s.ExpiresAt = now.Add(-time.Second)
	if !s.Expired(now) {
		t.Fatal("past expiry must report expired")
	}
}

func TestSessionTimeToExpiry(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	s := Session{ExpiresAt: now.Add(90 * time.Second)}
	if got := s.TimeToExpiry(now); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}

	s.ExpiresAt = now.Add(-time.Hour)
	if got := s.TimeToExpiry(now); got != 0 {
		t.Fatalf("expected clamped zero, got %v", got)
	}
}
