package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account record. PasswordHash is nil for OAuth-only accounts;
// Provider/ProviderID are nil for local-only accounts. An account always has
// at least one of the two.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash *string
	FirstName    string
	LastName     string
	DateOfBirth  *time.Time
	AvatarURL    *string
	Provider     *string
	ProviderID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LoginEvent is an append-only record of a successful login.
type LoginEvent struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// ResetToken is a single-use password reset secret. UsedAt transitions from
// nil to non-nil exactly once.
type ResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Secret    string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// ProviderAssertion is an OAuth profile already verified against the
// provider. The resolver maps it onto a local account.
type ProviderAssertion struct {
	Provider  string
	SubjectID string
	Email     string
	FirstName string
	LastName  string
	AvatarURL string
}

type UserProfile struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	DateOfBirth *string `json:"dateOfBirth"`
	AvatarURL   *string `json:"avatarUrl"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func NewUserProfile(u *User) UserProfile {
	var dob *string
	if u.DateOfBirth != nil {
		formatted := u.DateOfBirth.Format("2006-01-02")
		dob = &formatted
	}
	return UserProfile{
		ID:          u.ID.String(),
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DateOfBirth: dob,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

type LoginEventResponse struct {
	ID        string `json:"id"`
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`
	CreatedAt string `json:"createdAt"`
}

func NewLoginEventResponse(e *LoginEvent) LoginEventResponse {
	return LoginEventResponse{
		ID:        e.ID.String(),
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}
