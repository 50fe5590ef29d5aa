package service

import (
	"context"

	"github.com/medtrack/medtrack-api/internal/domain"
	"github.com/medtrack/medtrack-api/internal/repository/ports"
)

// UserService covers the administrative surface over patient accounts.
type UserService struct {
	users ports.UserRepository
}

func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users}
}

// PatientSummary is the credential-free projection handed to admins.
type PatientSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (s *UserService) ListPatients(ctx context.Context) ([]PatientSummary, error) {
	users, err := s.users.ListByRole(ctx, domain.RolePatient)
	if err != nil {
		return nil, err
	}
	out := make([]PatientSummary, 0, len(users))
	for _, u := range users {
		out = append(out, PatientSummary{ID: u.ID, Name: u.Name, Phone: u.Phone})
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*PatientSummary, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &PatientSummary{ID: user.ID, Name: user.Name, Phone: user.Phone}, nil
}

// Profile returns the caller's own identity record.
func (s *UserService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Delete removes the account; sessions and reminders go with it via the
// schema's cascading foreign keys.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// ListActive reports which users currently hold an active session.
func (s *UserService) ListActive(ctx context.Context) ([]domain.ActiveUser, error) {
	return s.users.ListActive(ctx)
}
