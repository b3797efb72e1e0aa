package db

import (
	"context"
	"time"

	"github.com/ftechnology/backend/internal/model"
	"github.com/google/uuid"
)

// ReplaceResetToken deletes every prior reset token for the account and
// inserts the new one in a single transaction. The account row is locked
// first: under READ COMMITTED two concurrent replacements would each miss
// the other's uncommitted insert and both commit, leaving two live tokens.
func (db *Postgres) ReplaceResetToken(ctx context.Context, userID uuid.UUID, secret string, expiresAt time.Time) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var locked uuid.UUID
	if err = tx.QueryRow(ctx, `
		SELECT id FROM users WHERE id = $1 FOR UPDATE
	`, userID).Scan(&locked); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `
		DELETE FROM password_reset_tokens
		WHERE user_id = $1
	`, userID); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO password_reset_tokens (id, user_id, secret, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, uuid.New(), userID, secret, expiresAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (db *Postgres) GetResetTokenBySecret(ctx context.Context, secret string) (*model.ResetToken, error) {
	query := `
		SELECT id, user_id, secret, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE secret = $1
	`
	var token model.ResetToken
	err := db.Pool.QueryRow(ctx, query, secret).Scan(
		&token.ID,
		&token.UserID,
		&token.Secret,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// ConsumeResetToken marks the token used and writes the new password hash in
// one transaction. The mark is conditional on used_at still being NULL, so
// of two racing consumers exactly one sees consumed=true; the loser gets
// consumed=false with a nil error.
func (db *Postgres) ConsumeResetToken(ctx context.Context, tokenID, userID uuid.UUID, passwordHash string) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE password_reset_tokens
		SET used_at = NOW()
		WHERE id = $1 AND used_at IS NULL
	`, tokenID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err = tx.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`, userID, passwordHash); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}
