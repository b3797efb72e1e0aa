package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/ftechnology/backend/internal/db"
	"github.com/ftechnology/backend/internal/model"
	"github.com/google/uuid"
)

const (
	resetSecretBytes = 32
	resetTokenTTL    = time.Hour
)

type ResetRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ReplaceResetToken(ctx context.Context, userID uuid.UUID, secret string, expiresAt time.Time) error
	GetResetTokenBySecret(ctx context.Context, secret string) (*model.ResetToken, error)
	ConsumeResetToken(ctx context.Context, tokenID, userID uuid.UUID, passwordHash string) (bool, error)
}

// ResetManager drives the single-use password reset lifecycle:
// NONE -> ISSUED -> CONSUMED | EXPIRED.
type ResetManager struct {
	repo   ResetRepo
	hasher *PasswordHasher
}

func NewResetManager(repo ResetRepo, hasher *PasswordHasher) *ResetManager {
	return &ResetManager{repo: repo, hasher: hasher}
}

// Request issues a fresh reset secret for the account matching email,
// invalidating any previously issued token. When no account matches it
// returns empty values with a nil error and performs no writes, so callers
// can answer identically whether or not the email exists.
func (m *ResetManager) Request(ctx context.Context, email string) (string, *model.User, error) {
	user, err := m.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return "", nil, nil
		}
		return "", nil, err
	}

	secret, err := newResetSecret()
	if err != nil {
		return "", nil, err
	}

	if err := m.repo.ReplaceResetToken(ctx, user.ID, secret, time.Now().Add(resetTokenTTL)); err != nil {
		return "", nil, err
	}

	return secret, user, nil
}

// Consume redeems a reset secret and sets the account's password to
// newPassword. At most one of two racing calls on the same secret succeeds;
// the loser observes ErrTokenAlreadyUsed.
func (m *ResetManager) Consume(ctx context.Context, secret, newPassword string) error {
	token, err := m.repo.GetResetTokenBySecret(ctx, secret)
	if err != nil {
		if db.IsNoRows(err) {
			return ErrTokenNotFound
		}
		return err
	}

	if token.UsedAt != nil {
		return ErrTokenAlreadyUsed
	}
	if time.Now().After(token.ExpiresAt) {
		return ErrTokenExpired
	}

	hash, err := m.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	consumed, err := m.repo.ConsumeResetToken(ctx, token.ID, token.UserID, hash)
	if err != nil {
		return err
	}
	if !consumed {
		return ErrTokenAlreadyUsed
	}
	return nil
}

func newResetSecret() (string, error) {
	raw := make([]byte, resetSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
