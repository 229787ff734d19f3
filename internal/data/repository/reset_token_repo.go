package repository

import (
	"context"
	"fmt"

	"movie-ticket/internal/data/entity"
	"movie-ticket/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ResetTokenRepository interface {
	Create(ctx context.Context, token *entity.ResetToken) error
	FindValid(ctx context.Context, token string) (*entity.ResetToken, error)
	MarkUsed(ctx context.Context, token string) error
}

type resetTokenRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewResetTokenRepository(db database.PgxIface, log *zap.Logger) ResetTokenRepository {
	return &resetTokenRepository{
		db:  db,
		log: log.With(zap.String("repository", "reset_token")),
	}
}

func (r *resetTokenRepository) Create(ctx context.Context, token *entity.ResetToken) error {
	query := `
		INSERT INTO reset_tokens (id, user_id, email, token, expires_at, is_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Email,
		token.Token,
		token.ExpiresAt,
		token.IsUsed,
		token.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create reset token",
			zap.Error(err),
			zap.String("email", token.Email),
		)
		return fmt.Errorf("create reset token for %s: %w", token.Email, err)
	}

	return nil
}

func (r *resetTokenRepository) FindValid(ctx context.Context, token string) (*entity.ResetToken, error) {
	query := `
		SELECT id, user_id, email, token, expires_at, is_used, created_at
		FROM reset_tokens
		WHERE token = $1 AND is_used = FALSE AND expires_at > NOW()
	`

	var rt entity.ResetToken
	err := r.db.QueryRow(ctx, query, token).Scan(
		&rt.ID,
		&rt.UserID,
		&rt.Email,
		&rt.Token,
		&rt.ExpiresAt,
		&rt.IsUsed,
		&rt.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reset token", zap.Error(err))
		return nil, fmt.Errorf("find reset token: %w", err)
	}

	return &rt, nil
}

func (r *resetTokenRepository) MarkUsed(ctx context.Context, token string) error {
	query := `UPDATE reset_tokens SET is_used = TRUE WHERE token = $1`

	result, err := r.db.Exec(ctx, query, token)
	if err != nil {
		r.log.Error("Failed to mark reset token used", zap.Error(err))
		return fmt.Errorf("mark reset token used: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("reset token not found")
	}

	return nil
}
