package db

import (
	"context"
	"strings"
	"time"

	"github.com/ftechnology/backend/internal/model"
	"github.com/google/uuid"
)

const userColumns = `id, email, password_hash, first_name, last_name, date_of_birth,
	avatar_url, provider, provider_id, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.DateOfBirth,
		&user.AvatarURL,
		&user.Provider,
		&user.ProviderID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a locally registered account. The email is lowercased
// before the write; the unique index enforces one account per address.
func (db *Postgres) CreateUser(ctx context.Context, email, passwordHash, firstName, lastName string, dateOfBirth *time.Time) (*model.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, date_of_birth, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + userColumns
	row := db.Pool.QueryRow(ctx, query,
		uuid.New(), strings.ToLower(email), passwordHash, firstName, lastName, dateOfBirth)
	return scanUser(row)
}

// CreateOAuthUser inserts an account with a provider identity and no
// password hash.
func (db *Postgres) CreateOAuthUser(ctx context.Context, a model.ProviderAssertion) (*model.User, error) {
	var avatar *string
	if a.AvatarURL != "" {
		avatar = &a.AvatarURL
	}
	query := `
		INSERT INTO users (id, email, first_name, last_name, avatar_url, provider, provider_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + userColumns
	row := db.Pool.QueryRow(ctx, query,
		uuid.New(), strings.ToLower(a.Email), a.FirstName, a.LastName, avatar, a.Provider, a.SubjectID)
	return scanUser(row)
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	row := db.Pool.QueryRow(ctx, query, strings.ToLower(email))
	return scanUser(row)
}

func (db *Postgres) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	row := db.Pool.QueryRow(ctx, query, id)
	return scanUser(row)
}

func (db *Postgres) GetUserByProvider(ctx context.Context, provider, providerID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE provider = $1 AND provider_id = $2`
	row := db.Pool.QueryRow(ctx, query, provider, providerID)
	return scanUser(row)
}

// UpdateProfile applies a partial update; nil fields keep their current
// values.
func (db *Postgres) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string, dateOfBirth *time.Time) (*model.User, error) {
	query := `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			date_of_birth = COALESCE($4, date_of_birth),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	row := db.Pool.QueryRow(ctx, query, id, firstName, lastName, dateOfBirth)
	return scanUser(row)
}

// UpdateAvatar sets or clears the avatar reference. A nil value clears it.
func (db *Postgres) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL *string) (*model.User, error) {
	query := `
		UPDATE users
		SET avatar_url = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	row := db.Pool.QueryRow(ctx, query, id, avatarURL)
	return scanUser(row)
}

// LinkProvider attaches an external identity to an existing account,
// refreshing the avatar only when one is supplied. The password hash and
// profile fields are untouched.
func (db *Postgres) LinkProvider(ctx context.Context, id uuid.UUID, provider, providerID string, avatarURL *string) (*model.User, error) {
	query := `
		UPDATE users
		SET provider = $2, provider_id = $3,
			avatar_url = COALESCE($4, avatar_url),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	row := db.Pool.QueryRow(ctx, query, id, provider, providerID, avatarURL)
	return scanUser(row)
}

func (db *Postgres) SetPasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`
	_, err := db.Pool.Exec(ctx, query, id, passwordHash)
	return err
}
