package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the factor used by the previous deployment; around
// 100ms per hash on current hardware.
const bcryptCost = 12

// dummyDigest is a bcrypt digest of an unguessable throwaway value. Verify
// compares against it when an account has no password hash, so OAuth-only
// accounts fail with the same timing profile as a wrong password.
const dummyDigest = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

type PasswordHasher struct {
	sem chan struct{}
}

// NewPasswordHasher bounds concurrent hashing to maxConcurrent so the
// deliberately expensive bcrypt work cannot starve unrelated requests.
func NewPasswordHasher(maxConcurrent int) *PasswordHasher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &PasswordHasher{sem: make(chan struct{}, maxConcurrent)}
}

func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the stored digest. A nil digest
// (OAuth-only account) always fails, after a full bcrypt comparison.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext string, digest *string) bool {
	if err := h.acquire(ctx); err != nil {
		return false
	}
	defer h.release()

	stored := dummyDigest
	if digest != nil {
		stored = *digest
	}
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext))
	return err == nil && digest != nil
}

func (h *PasswordHasher) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *PasswordHasher) release() {
	<-h.sem
}
