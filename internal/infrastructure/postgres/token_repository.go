package postgres

import (
	"context"
	"fmt"

	"parcela/internal/domain/notification"
)

type TokenRepository struct {
	db *DB
}

func NewTokenRepository(db *DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Register(ctx context.Context, token notification.DeviceToken) error {
	if token.Token == "" {
		return notification.ErrInvalidToken
	}

	query := `
		INSERT INTO device_tokens (token, user_id, platform, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (token) DO UPDATE SET user_id = $2, platform = $3, active = TRUE
	`
	if _, err := r.db.ExecContext(ctx, query, token.Token, token.UserID, token.Platform); err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}

	return nil
}

func (r *TokenRepository) ListActiveByUserID(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT token FROM device_tokens WHERE user_id = $1 AND active = TRUE`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, token)
	}

	return tokens, rows.Err()
}

func (r *TokenRepository) Deactivate(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE device_tokens SET active = FALSE WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to deactivate device token: %w", err)
	}

	return nil
}
