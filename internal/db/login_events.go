package db

import (
	"context"

	"github.com/ftechnology/backend/internal/model"
	"github.com/google/uuid"
)

// RecordLoginEvent appends a login record. Rows are never updated or
// deleted here; cleanup rides on the users FK cascade.
func (db *Postgres) RecordLoginEvent(ctx context.Context, userID uuid.UUID, ipAddress, userAgent string) error {
	query := `
		INSERT INTO login_events (id, user_id, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := db.Pool.Exec(ctx, query, uuid.New(), userID, ipAddress, userAgent)
	return err
}

func (db *Postgres) ListLoginEvents(ctx context.Context, userID uuid.UUID, limit int) ([]model.LoginEvent, error) {
	query := `
		SELECT id, user_id, ip_address, user_agent, created_at
		FROM login_events
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := db.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.LoginEvent
	for rows.Next() {
		var e model.LoginEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
