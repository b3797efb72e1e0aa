package handler

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ftechnology/backend/internal/config"
	"github.com/ftechnology/backend/internal/model"
	"github.com/ftechnology/backend/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeStore is a minimal in-memory repository backing the handler tests.
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
	user := &model.User{
		ID:         uuid.New(),
		Email:      strings.ToLower(a.Email),
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Provider:   &a.Provider,
		ProviderID: &a.SubjectID,
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
	}
	return true, nil
}

// staticProvider stands in for a configured OAuth provider and accepts any
// code, returning a fixed verified profile.
type staticProvider struct{}

func (staticProvider) Name() string { return "google" }

func (staticProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (staticProvider) ExchangeCode(ctx context.Context, code string) (*model.ProviderAssertion, error) {
	return &model.ProviderAssertion{
		Provider:  "google",
		SubjectID: "goog-98765",
		Email:     "carol@example.com",
		FirstName: "Carol",
		LastName:  "Bianchi",
	}, nil
}

type noopMailer struct{}

func (noopMailer) SendPasswordResetEmail(ctx context.Context, email, secret, displayName string) error {
	return nil
}

func (noopMailer) SendWelcomeEmail(ctx context.Context, email, displayName string) error {
	return nil
}

func newTestAuthService(t *testing.T, store *fakeStore) *service.AuthService {
	t.Helper()
	hasher := service.NewPasswordHasher(2)
	issuer, err := service.NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	svc, err := service.NewAuthService(
		store,
		hasher,
		issuer,
		service.NewResetManager(store, hasher),
		service.NewOAuthResolver(store),
		noopMailer{},
		slog.Default(),
		config.AuthConfig{JWTSecret: "test-secret", SessionTTL: "168h", RememberTTL: "720h"},
	)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func registerTestUser(t *testing.T, svc *service.AuthService) *model.AuthResponse {
	t.Helper()
	res, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:           "alice@example.com",
		Password:        "Passw0rd",
		ConfirmPassword: "Passw0rd",
		FirstName:       "Alice",
		LastName:        "Rossi",
		DateOfBirth:     "1990-05-15",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return res
}
