package entity

import (
	"time"

	"github.com/google/uuid"
)

// ResetToken is a single-use password reset token delivered by email.
type ResetToken struct {
	BaseSimple
	UserID    uuid.UUID `db:"user_id"`
	Email     string    `db:"email"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	IsUsed    bool      `db:"is_used"`
}
