package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/trackdex/internal/models"
)

// compile-time interface assertion
var _ models.TokenCache = (*TokenRepository)(nil)

// TokenRepository implements [models.TokenCache] for the tokens table.
type TokenRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db, now: time.Now}
}

// Get retrieves the token stored under key. A missing row is a cache miss, not an error.
func (r *TokenRepository) Get(ctx context.Context, key string) (*models.Token, error) {
	query := `
		SELECT access_token, token_type, expires_at
		FROM tokens
		WHERE cache_key = ?
	`

	var (
		accessToken string
		tokenType   string
		expiresAt   time.Time
	)

	err := r.db.QueryRowContext(ctx, query, key).Scan(&accessToken, &tokenType, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	return &models.Token{AccessToken: accessToken, TokenType: tokenType, Expiry: expiresAt}, nil
}

// Set inserts or replaces the token stored under key
func (r *TokenRepository) Set(ctx context.Context, key string, token *models.Token) error {
	if token == nil {
		return nil
	}

	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	query := `
		INSERT INTO tokens (cache_key, access_token, token_type, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			access_token = excluded.access_token,
			token_type = excluded.token_type,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx, query, key, token.AccessToken, tokenType, token.Expiry.UTC(), now, now)
	if err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	return nil
}

// Delete removes the token stored under key
func (r *TokenRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// PurgeExpired deletes tokens that expired before now and reports how many were removed.
// Tokens without an expiry are kept.
func (r *TokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM tokens
		WHERE expires_at > ? AND expires_at < ?
	`

	result, err := r.db.ExecContext(ctx, query, time.Time{}, r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// Clear deletes every cached token and reports how many were removed.
func (r *TokenRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tokens`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
