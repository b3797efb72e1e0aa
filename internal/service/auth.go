package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/ftechnology/backend/internal/config"
	"github.com/ftechnology/backend/internal/db"
	"github.com/ftechnology/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	minNameLength     = 2
	maxNameLength     = 50
	minAge            = 13
	maxAge            = 120
)

type AuthRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	CreateUser(ctx context.Context, email, passwordHash, firstName, lastName string, dateOfBirth *time.Time) (*model.User, error)
	RecordLoginEvent(ctx context.Context, userID uuid.UUID, ipAddress, userAgent string) error
}

type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, email, secret, displayName string) error
	SendWelcomeEmail(ctx context.Context, email, displayName string) error
}

// AuthService composes the hasher, token issuer, reset manager, and OAuth
// resolver into the register/login/forgot/reset/oauth-callback flows.
type AuthService struct {
	repo        AuthRepo
	hasher      *PasswordHasher
	issuer      *TokenIssuer
	reset       *ResetManager
	resolver    *OAuthResolver
	mailer      Mailer
	logger      *slog.Logger
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

func NewAuthService(
	repo AuthRepo,
	hasher *PasswordHasher,
	issuer *TokenIssuer,
	reset *ResetManager,
	resolver *OAuthResolver,
	mailer Mailer,
	logger *slog.Logger,
	cfg config.AuthConfig,
) (*AuthService, error) {
	sessionTTL, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_SESSION_TTL", ErrMisconfigured)
	}

	rememberTTL, err := time.ParseDuration(cfg.RememberTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_REMEMBER_TTL", ErrMisconfigured)
	}

	return &AuthService{
		repo:        repo,
		hasher:      hasher,
		issuer:      issuer,
		reset:       reset,
		resolver:    resolver,
		mailer:      mailer,
		logger:      logger,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := validateName(req.FirstName); err != nil {
		return nil, err
	}
	if err := validateName(req.LastName); err != nil {
		return nil, err
	}
	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !db.IsNoRows(err) {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, req.Email, hash, req.FirstName, req.LastName, &dob)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	// welcome email is best-effort; registration already succeeded
	if err := s.mailer.SendWelcomeEmail(ctx, user.Email, user.FirstName); err != nil {
		s.logger.Warn("welcome_email_failed", "error", err)
	}

	return s.authResponse(user, s.sessionTTL)
}

// Login authenticates an email/password pair. Unknown email and wrong
// password return the same error after the same bcrypt work, so callers
// cannot probe which addresses are registered.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, ipAddress, userAgent string) (*model.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if db.IsNoRows(err) {
			s.hasher.Verify(ctx, req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(ctx, req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.RecordLoginEvent(ctx, user.ID, ipAddress, userAgent); err != nil {
		return nil, err
	}

	ttl := s.sessionTTL
	if req.RememberMe {
		ttl = s.rememberTTL
	}
	return s.authResponse(user, ttl)
}

// ForgotPassword always reports success to the caller. A delivery failure
// after the token is persisted is logged and swallowed; the generic
// acknowledgement stands either way.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	secret, user, err := s.reset.Request(ctx, email)
	if err != nil {
		return err
	}
	if secret == "" {
		return nil
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, secret, user.FirstName); err != nil {
		s.logger.Warn("reset_email_failed", "error", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	if req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := validatePassword(req.Password); err != nil {
		return err
	}
	return s.reset.Consume(ctx, req.Token, req.Password)
}

// OAuthCallback resolves a verified provider assertion to an account and
// issues a session exactly as a password login does.
func (s *AuthService) OAuthCallback(ctx context.Context, assertion model.ProviderAssertion, ipAddress, userAgent string) (*model.AuthResponse, error) {
	user, err := s.resolver.Resolve(ctx, assertion)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RecordLoginEvent(ctx, user.ID, ipAddress, userAgent); err != nil {
		return nil, err
	}

	return s.authResponse(user, s.sessionTTL)
}

// ValidateAccessToken verifies a bearer token and re-checks that its subject
// still exists.
func (s *AuthService) ValidateAccessToken(ctx context.Context, tokenStr string) (*model.User, error) {
	claims, err := s.issuer.Validate(tokenStr)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) authResponse(user *model.User, ttl time.Duration) (*model.AuthResponse, error) {
	token, err := s.issuer.Issue(user.ID, user.Email, ttl)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{
		User:        model.NewUserProfile(user),
		AccessToken: token,
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrInvalidInput
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasDigit {
		return ErrInvalidInput
	}
	return nil
}

func validateName(name string) error {
	if len(name) < minNameLength || len(name) > maxNameLength {
		return ErrInvalidInput
	}
	return nil
}

func parseDateOfBirth(raw string) (time.Time, error) {
	dob, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, ErrInvalidInput
	}
	// Birthday-exact bounds: the year difference alone would admit someone
	// whose minAge-th birthday is still ahead this year.
	now := time.Now()
	if dob.AddDate(minAge, 0, 0).After(now) {
		return time.Time{}, ErrInvalidInput
	}
	if !dob.AddDate(maxAge+1, 0, 0).After(now) {
		return time.Time{}, ErrInvalidInput
	}
	return dob, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
