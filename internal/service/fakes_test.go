package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ftechnology/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeStore is an in-memory stand-in for the Postgres repository, matching
// its contract closely enough to drive the services: pgx.ErrNoRows on
// misses, a 23505 PgError on duplicate emails, conditional reset-token
// consumption.
type fakeStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*model.User
	tokens map[uuid.UUID]*model.ResetToken
	events []model.LoginEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[uuid.UUID]*model.User),
		tokens: make(map[uuid.UUID]*model.ResetToken),
	}
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (f *fakeStore) GetUserByProvider(ctx context.Context, provider, providerID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Provider != nil && *u.Provider == provider && u.ProviderID != nil && *u.ProviderID == providerID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) CreateUser(ctx context.Context, email, passwordHash, firstName, lastName string, dateOfBirth *time.Time) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range f.users {
		if u.Email == email {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	now := time.Now()
	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: &passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		DateOfBirth:  dateOfBirth,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[user.ID] = user
	clone := *user
	return &clone, nil
}

func (f *fakeStore) CreateOAuthUser(ctx context.Context, a model.ProviderAssertion) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	provider, providerID := a.Provider, a.SubjectID
	user := &model.User{
		ID:         uuid.New(),
		Email:      strings.ToLower(a.Email),
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Provider:   &provider,
		ProviderID: &providerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if a.AvatarURL != "" {
		avatar := a.AvatarURL
		user.AvatarURL = &avatar
	}
	f.users[user.ID] = user
	clone := *user
	return &clone, nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string, dateOfBirth *time.Time) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if firstName != nil {
		u.FirstName = *firstName
	}
	if lastName != nil {
		u.LastName = *lastName
	}
	if dateOfBirth != nil {
		u.DateOfBirth = dateOfBirth
	}
	u.UpdatedAt = time.Now()
	clone := *u
	return &clone, nil
}

func (f *fakeStore) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL *string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u.AvatarURL = avatarURL
	u.UpdatedAt = time.Now()
	clone := *u
	return &clone, nil
}

func (f *fakeStore) LinkProvider(ctx context.Context, id uuid.UUID, provider, providerID string, avatarURL *string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u.Provider = &provider
	u.ProviderID = &providerID
	if avatarURL != nil {
		u.AvatarURL = avatarURL
	}
	u.UpdatedAt = time.Now()
	clone := *u
	return &clone, nil
}

func (f *fakeStore) SetPasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = &passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) RecordLoginEvent(ctx context.Context, userID uuid.UUID, ipAddress, userAgent string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, model.LoginEvent{
		ID:        uuid.New(),
		UserID:    userID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeStore) ListLoginEvents(ctx context.Context, userID uuid.UUID, limit int) ([]model.LoginEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.LoginEvent
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		if f.events[i].UserID == userID {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

func (f *fakeStore) ReplaceResetToken(ctx context.Context, userID uuid.UUID, secret string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return pgx.ErrNoRows
	}
	for id, tok := range f.tokens {
		if tok.UserID == userID {
			delete(f.tokens, id)
		}
	}
	token := &model.ResetToken{
		ID:        uuid.New(),
		UserID:    userID,
		Secret:    secret,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeStore) GetResetTokenBySecret(ctx context.Context, secret string) (*model.ResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tok := range f.tokens {
		if tok.Secret == secret {
			clone := *tok
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) ConsumeResetToken(ctx context.Context, tokenID, userID uuid.UUID, passwordHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[tokenID]
	if !ok || tok.UsedAt != nil {
		return false, nil
	}
	now := time.Now()
	tok.UsedAt = &now
	if u, ok := f.users[userID]; ok {
		u.PasswordHash = &passwordHash
		u.UpdatedAt = now
	}
	return true, nil
}

func (f *fakeStore) tokenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

type fakeMailer struct {
	mu         sync.Mutex
	resetSent  []string
	welcomeTo  []string
	failResets bool
}

func (m *fakeMailer) SendPasswordResetEmail(ctx context.Context, email, secret, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failResets {
		return context.DeadlineExceeded
	}
	m.resetSent = append(m.resetSent, email)
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(ctx context.Context, email, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomeTo = append(m.welcomeTo, email)
	return nil
}
