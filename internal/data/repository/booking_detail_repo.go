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

type BookingDetailRepository interface {
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingDetail, error)

	// FindHeldSeatIDs returns the seats currently held for a showtime: a
	// non-cancelled booking detail exists for the (showtime, seat) pair.
	FindHeldSeatIDs(ctx context.Context, showTimeID uuid.UUID) ([]uuid.UUID, error)

	// EarliestShowStart returns the earliest showtime start among a
	// booking's details; used for the cancellation buffer check.
	EarliestShowStart(ctx context.Context, bookingID uuid.UUID) (time.Time, error)
}

type bookingDetailRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingDetailRepository(db database.PgxIface, log *zap.Logger) BookingDetailRepository {
	return &bookingDetailRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking_detail")),
	}
}

func (r *bookingDetailRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingDetail, error) {
	query := `
		SELECT id, booking_id, show_time_id, seat_id, price, status, created_at
		FROM booking_details
		WHERE booking_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find booking details",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find booking details for %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var details []*entity.BookingDetail
	for rows.Next() {
		var d entity.BookingDetail
		err := rows.Scan(
			&d.ID,
			&d.BookingID,
			&d.ShowTimeID,
			&d.SeatID,
			&d.Price,
			&d.Status,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking detail row: %w", err)
		}
		details = append(details, &d)
	}

	return details, rows.Err()
}

func (r *bookingDetailRepository) FindHeldSeatIDs(ctx context.Context, showTimeID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT seat_id
		FROM booking_details
		WHERE show_time_id = $1 AND status <> 'cancelled'
	`

	rows, err := r.db.Query(ctx, query, showTimeID)
	if err != nil {
		r.log.Error("Failed to find held seats",
			zap.Error(err),
			zap.String("show_time_id", showTimeID.String()),
		)
		return nil, fmt.Errorf("find held seats for showtime %s: %w", showTimeID.String(), err)
	}
	defer rows.Close()

	var seatIDs []uuid.UUID
	for rows.Next() {
		var seatID uuid.UUID
		if err := rows.Scan(&seatID); err != nil {
			return nil, fmt.Errorf("scan held seat row: %w", err)
		}
		seatIDs = append(seatIDs, seatID)
	}

	return seatIDs, rows.Err()
}

func (r *bookingDetailRepository) EarliestShowStart(ctx context.Context, bookingID uuid.UUID) (time.Time, error) {
	query := `
		SELECT MIN(st.start_time)
		FROM booking_details d
		INNER JOIN show_times st ON d.show_time_id = st.id
		WHERE d.booking_id = $1
	`

	var start time.Time
	err := r.db.QueryRow(ctx, query, bookingID).Scan(&start)
	if err == pgx.ErrNoRows {
		return time.Time{}, fmt.Errorf("booking %s has no details", bookingID.String())
	}
	if err != nil {
		r.log.Error("Failed to find earliest show start",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return time.Time{}, fmt.Errorf("earliest show start for %s: %w", bookingID.String(), err)
	}

	return start, nil
}
