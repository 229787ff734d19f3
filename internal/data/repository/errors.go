package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotPending is returned by conditional status updates when the booking
// was not in pending state (already completed or cancelled).
var ErrNotPending = errors.New("booking is not pending")

// SeatsTakenError reports the exact seats that are already held for a
// showtime. It is returned both by the pre-check inside the reservation
// transaction and when the unique index on (show_time_id, seat_id) rejects
// a concurrent insert.
type SeatsTakenError struct {
	SeatIDs []uuid.UUID
}

func (e *SeatsTakenError) Error() string {
	ids := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("seats already booked: %s", strings.Join(ids, ", "))
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
