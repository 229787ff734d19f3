package repository

import (
	"context"
	"fmt"
	"time"

	"movie-ticket/internal/data/entity"
	"movie-ticket/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	// CreateWithDetails reserves the requested seats in a single
	// transaction: stale pending holds for the showtime are expired first,
	// the requested seats are re-checked, and booking plus details are
	// inserted together. Returns *SeatsTakenError when any seat is held.
	CreateWithDetails(ctx context.Context, booking *entity.Booking, details []*entity.BookingDetail, holdTTL time.Duration) error

	// Finalize transitions a pending booking to completed, marks its
	// details booked and inserts the payment row, all atomically.
	// Returns ErrNotPending when the booking is not in pending state.
	Finalize(ctx context.Context, bookingID uuid.UUID, payment *entity.Payment) error

	// Cancel transitions a booking to cancelled when its current status is
	// one of allowedFrom, and marks its details cancelled so the seats are
	// released. Returns ErrNotPending when the conditional update matched
	// no row.
	Cancel(ctx context.Context, bookingID uuid.UUID, allowedFrom []entity.BookingStatus) error

	// ExpireStale cancels pending bookings older than ttl, releasing their
	// seat holds. Returns the number of bookings expired.
	ExpireStale(ctx context.Context, ttl time.Duration) (int64, error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, status *entity.BookingStatus, limit, offset int) ([]*entity.Booking, error)
	CountAll(ctx context.Context, status *entity.BookingStatus) (int64, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, order_id, user_id, booking_time, total_amount, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.OrderID,
		&booking.UserID,
		&booking.BookingTime,
		&booking.TotalAmount,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) CreateWithDetails(ctx context.Context, booking *entity.Booking, details []*entity.BookingDetail, holdTTL time.Duration) error {
	if len(details) == 0 {
		return fmt.Errorf("create booking %s: no details", booking.OrderID)
	}

	showTimeID := details[0].ShowTimeID
	seatIDs := make([]uuid.UUID, len(details))
	for i, d := range details {
		seatIDs[i] = d.SeatID
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reservation tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lazy expiry: pending holds past their TTL stop holding seats before
	// the availability re-check below.
	if err := expireStaleHolds(ctx, tx, &showTimeID, holdTTL); err != nil {
		r.log.Error("Failed to expire stale holds",
			zap.Error(err),
			zap.String("show_time_id", showTimeID.String()),
		)
		return fmt.Errorf("expire stale holds for showtime %s: %w", showTimeID.String(), err)
	}

	// Early-exit check. The unique index below remains the source of truth
	// under concurrency.
	taken, err := heldSeatsAmong(ctx, tx, showTimeID, seatIDs)
	if err != nil {
		return fmt.Errorf("check held seats for showtime %s: %w", showTimeID.String(), err)
	}
	if len(taken) > 0 {
		return &SeatsTakenError{SeatIDs: taken}
	}

	insertBooking := `
		INSERT INTO bookings (id, order_id, user_id, booking_time, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, insertBooking,
		booking.ID,
		booking.OrderID,
		booking.UserID,
		booking.BookingTime,
		booking.TotalAmount,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert booking",
			zap.Error(err),
			zap.String("order_id", booking.OrderID),
		)
		return fmt.Errorf("insert booking %s: %w", booking.OrderID, err)
	}

	insertDetails := `INSERT INTO booking_details (id, booking_id, show_time_id, seat_id, price, status, created_at) VALUES `
	args := []interface{}{}
	for i, d := range details {
		if i > 0 {
			insertDetails += ", "
		}
		insertDetails += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*7+1, i*7+2, i*7+3, i*7+4, i*7+5, i*7+6, i*7+7)
		args = append(args, d.ID, d.BookingID, d.ShowTimeID, d.SeatID, d.Price, d.Status, d.CreatedAt)
	}

	if _, err := tx.Exec(ctx, insertDetails, args...); err != nil {
		if isUniqueViolation(err) {
			// A concurrent reservation won the race between our check and
			// insert. Report which of the requested seats are now held.
			return r.conflictFromRace(ctx, showTimeID, seatIDs)
		}
		r.log.Error("Failed to insert booking details",
			zap.Error(err),
			zap.String("order_id", booking.OrderID),
			zap.Int("count", len(details)),
		)
		return fmt.Errorf("insert booking details for %s: %w", booking.OrderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return r.conflictFromRace(ctx, showTimeID, seatIDs)
		}
		return fmt.Errorf("commit reservation for %s: %w", booking.OrderID, err)
	}

	return nil
}

// conflictFromRace re-reads the held set outside the failed transaction so
// the caller gets the exact conflicting seat ids.
func (r *bookingRepository) conflictFromRace(ctx context.Context, showTimeID uuid.UUID, seatIDs []uuid.UUID) error {
	taken, err := heldSeatsAmong(ctx, r.db, showTimeID, seatIDs)
	if err != nil || len(taken) == 0 {
		// Could not attribute the conflict; report all requested seats.
		return &SeatsTakenError{SeatIDs: seatIDs}
	}
	return &SeatsTakenError{SeatIDs: taken}
}

// querier covers both the pool and an open transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func heldSeatsAmong(ctx context.Context, q querier, showTimeID uuid.UUID, seatIDs []uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT seat_id
		FROM booking_details
		WHERE show_time_id = $1 AND seat_id = ANY($2) AND status <> 'cancelled'
	`

	rows, err := q.Query(ctx, query, showTimeID, seatIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taken []uuid.UUID
	for rows.Next() {
		var seatID uuid.UUID
		if err := rows.Scan(&seatID); err != nil {
			return nil, fmt.Errorf("scan held seat row: %w", err)
		}
		taken = append(taken, seatID)
	}

	return taken, rows.Err()
}

// expireStaleHolds cancels pending bookings older than ttl. When showTimeID
// is non-nil only bookings holding seats for that showtime are touched.
func expireStaleHolds(ctx context.Context, tx pgx.Tx, showTimeID *uuid.UUID, ttl time.Duration) error {
	cutoff := time.Now().Add(-ttl)

	var err error
	if showTimeID != nil {
		query := `
			UPDATE bookings b
			SET status = 'cancelled', updated_at = NOW()
			WHERE b.status = 'pending' AND b.created_at < $1
			  AND EXISTS (
				SELECT 1 FROM booking_details d
				WHERE d.booking_id = b.id AND d.show_time_id = $2
			  )
		`
		_, err = tx.Exec(ctx, query, cutoff, *showTimeID)
	} else {
		query := `
			UPDATE bookings
			SET status = 'cancelled', updated_at = NOW()
			WHERE status = 'pending' AND created_at < $1
		`
		_, err = tx.Exec(ctx, query, cutoff)
	}
	if err != nil {
		return err
	}

	releaseDetails := `
		UPDATE booking_details d
		SET status = 'cancelled'
		FROM bookings b
		WHERE d.booking_id = b.id AND b.status = 'cancelled' AND d.status <> 'cancelled'
	`
	_, err = tx.Exec(ctx, releaseDetails)
	return err
}

func (r *bookingRepository) Finalize(ctx context.Context, bookingID uuid.UUID, payment *entity.Payment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin finalize tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Conditional transition serializes finalize against a racing cancel.
	transition := `
		UPDATE bookings
		SET status = 'completed', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	result, err := tx.Exec(ctx, transition, bookingID)
	if err != nil {
		r.log.Error("Failed to complete booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("complete booking %s: %w", bookingID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotPending
	}

	markBooked := `
		UPDATE booking_details
		SET status = 'booked'
		WHERE booking_id = $1 AND status = 'pending'
	`
	if _, err := tx.Exec(ctx, markBooked, bookingID); err != nil {
		return fmt.Errorf("mark details booked for %s: %w", bookingID.String(), err)
	}

	insertPayment := `
		INSERT INTO payments (id, booking_id, amount, method, transaction_id, status, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, insertPayment,
		payment.ID,
		payment.BookingID,
		payment.Amount,
		payment.Method,
		payment.TransactionID,
		payment.Status,
		payment.PaidAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert payment",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("insert payment for booking %s: %w", bookingID.String(), err)
	}

	return tx.Commit(ctx)
}

func (r *bookingRepository) Cancel(ctx context.Context, bookingID uuid.UUID, allowedFrom []entity.BookingStatus) error {
	statuses := make([]string, len(allowedFrom))
	for i, s := range allowedFrom {
		statuses[i] = string(s)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cancel tx: %w", err)
	}
	defer tx.Rollback(ctx)

	transition := `
		UPDATE bookings
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status = ANY($2)
	`
	result, err := tx.Exec(ctx, transition, bookingID, statuses)
	if err != nil {
		r.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("cancel booking %s: %w", bookingID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotPending
	}

	releaseSeats := `
		UPDATE booking_details
		SET status = 'cancelled'
		WHERE booking_id = $1 AND status <> 'cancelled'
	`
	if _, err := tx.Exec(ctx, releaseSeats, bookingID); err != nil {
		return fmt.Errorf("release seats for booking %s: %w", bookingID.String(), err)
	}

	return tx.Commit(ctx)
}

func (r *bookingRepository) ExpireStale(ctx context.Context, ttl time.Duration) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin expiry tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cutoff := time.Now().Add(-ttl)
	expire := `
		UPDATE bookings
		SET status = 'cancelled', updated_at = NOW()
		WHERE status = 'pending' AND created_at < $1
	`
	result, err := tx.Exec(ctx, expire, cutoff)
	if err != nil {
		r.log.Error("Failed to expire stale bookings", zap.Error(err))
		return 0, fmt.Errorf("expire stale bookings: %w", err)
	}

	releaseSeats := `
		UPDATE booking_details d
		SET status = 'cancelled'
		FROM bookings b
		WHERE d.booking_id = b.id AND b.status = 'cancelled' AND d.status <> 'cancelled'
	`
	if _, err := tx.Exec(ctx, releaseSeats); err != nil {
		return 0, fmt.Errorf("release stale seat holds: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit expiry: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, status *entity.BookingStatus, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) CountAll(ctx context.Context, status *entity.BookingStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE ($1::text IS NULL OR status = $1)`

	var count int64
	if err := r.db.QueryRow(ctx, query, status).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return count, nil
}

func collectBookings(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}
