package service

import (
	"context"
	"time"

	"github.com/ftechnology/backend/internal/db"
	"github.com/ftechnology/backend/internal/model"
	"github.com/google/uuid"
)

const defaultLoginHistoryLimit = 5

type UserRepo interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string, dateOfBirth *time.Time) (*model.User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL *string) (*model.User, error)
	SetPasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	ListLoginEvents(ctx context.Context, userID uuid.UUID, limit int) ([]model.LoginEvent, error)
}

type UsersService struct {
	repo   UserRepo
	hasher *PasswordHasher
}

func NewUsersService(repo UserRepo, hasher *PasswordHasher) *UsersService {
	return &UsersService{repo: repo, hasher: hasher}
}

func (s *UsersService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UsersService) UpdateProfile(ctx context.Context, id uuid.UUID, req model.UpdateProfileRequest) (*model.User, error) {
	if req.FirstName != nil {
		if err := validateName(*req.FirstName); err != nil {
			return nil, err
		}
	}
	if req.LastName != nil {
		if err := validateName(*req.LastName); err != nil {
			return nil, err
		}
	}

	var dob *time.Time
	if req.DateOfBirth != nil {
		parsed, err := parseDateOfBirth(*req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		dob = &parsed
	}

	user, err := s.repo.UpdateProfile(ctx, id, req.FirstName, req.LastName, dob)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UsersService) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) (*model.User, error) {
	user, err := s.repo.UpdateAvatar(ctx, id, &avatarURL)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UsersService) RemoveAvatar(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.UpdateAvatar(ctx, id, nil)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UsersService) LoginHistory(ctx context.Context, id uuid.UUID, limit int) ([]model.LoginEvent, error) {
	if limit <= 0 {
		limit = defaultLoginHistoryLimit
	}
	return s.repo.ListLoginEvents(ctx, id, limit)
}

// ChangePassword verifies the current password before writing the new one.
// Accounts without a password (OAuth-only) fail the verify the same way a
// wrong password does.
func (s *UsersService) ChangePassword(ctx context.Context, id uuid.UUID, req model.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return ErrAccountNotFound
		}
		return err
	}

	if !s.hasher.Verify(ctx, req.CurrentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(ctx, req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.SetPasswordHash(ctx, id, hash)
}
