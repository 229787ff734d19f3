package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"movie-ticket/internal/data/entity"
	"movie-ticket/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// seatRows feeds seat ids to the held-seat queries.
type seatRows struct {
	pgx.Rows
	seatIDs []uuid.UUID
	idx     int
}

func (r *seatRows) Next() bool {
	r.idx++
	return r.idx <= len(r.seatIDs)
}

func (r *seatRows) Scan(dest ...any) error {
	*(dest[0].(*uuid.UUID)) = r.seatIDs[r.idx-1]
	return nil
}

func (r *seatRows) Close()     {}
func (r *seatRows) Err() error { return nil }

// fakeTx embeds pgx.Tx so only the statements the reservation path runs
// need handling; anything else panics.
type fakeTx struct {
	pgx.Tx

	heldInTx   []uuid.UUID
	detailsErr error
	notPending bool
	committed  bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if strings.Contains(sql, "INSERT INTO booking_details") && t.detailsErr != nil {
		return pgconn.CommandTag{}, t.detailsErr
	}
	if strings.Contains(sql, "UPDATE bookings") && t.notPending {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return &seatRows{seatIDs: t.heldInTx}, nil
}

func (t *fakeTx) Commit(ctx context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(ctx context.Context) error { return nil }

type fakeDB struct {
	database.PgxIface

	tx   *fakeTx
	held []uuid.UUID
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) { return db.tx, nil }

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return &seatRows{seatIDs: db.held}, nil
}

func reservationFixture(seatIDs []uuid.UUID) (*entity.Booking, []*entity.BookingDetail) {
	now := time.Now()
	booking := &entity.Booking{
		Base:        entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		OrderID:     "TICKET-20260830-120000-0001",
		UserID:      uuid.New(),
		BookingTime: now,
		TotalAmount: 90000 * float64(len(seatIDs)),
		Status:      entity.BookingStatusPending,
	}

	showTimeID := uuid.New()
	details := make([]*entity.BookingDetail, len(seatIDs))
	for i, seatID := range seatIDs {
		details[i] = &entity.BookingDetail{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			BookingID:  booking.ID,
			ShowTimeID: showTimeID,
			SeatID:     seatID,
			Price:      90000,
			Status:     entity.BookingDetailStatusPending,
		}
	}
	return booking, details
}

func TestCreateWithDetailsMapsUniqueViolationToSeatsTaken(t *testing.T) {
	seatIDs := []uuid.UUID{uuid.New(), uuid.New()}
	db := &fakeDB{
		tx: &fakeTx{detailsErr: &pgconn.PgError{
			Code:           "23505",
			ConstraintName: "uq_booking_details_live_seat",
		}},
		// The re-read after the failed transaction sees the winner's hold.
		held: seatIDs[:1],
	}
	repo := NewBookingRepository(db, zap.NewNop())

	booking, details := reservationFixture(seatIDs)
	err := repo.CreateWithDetails(context.Background(), booking, details, 15*time.Minute)
	require.Error(t, err)

	var taken *SeatsTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, seatIDs[:1], taken.SeatIDs)
	assert.Contains(t, taken.Error(), seatIDs[0].String())
	assert.False(t, db.tx.committed)
}

func TestCreateWithDetailsUniqueViolationWithoutAttribution(t *testing.T) {
	seatIDs := []uuid.UUID{uuid.New(), uuid.New()}
	db := &fakeDB{
		tx: &fakeTx{detailsErr: &pgconn.PgError{Code: "23505"}},
	}
	repo := NewBookingRepository(db, zap.NewNop())

	booking, details := reservationFixture(seatIDs)
	err := repo.CreateWithDetails(context.Background(), booking, details, 15*time.Minute)
	require.Error(t, err)

	// When the winning hold cannot be read back, every requested seat is
	// reported rather than none.
	var taken *SeatsTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, seatIDs, taken.SeatIDs)
}

func TestCreateWithDetailsPrecheckShortCircuits(t *testing.T) {
	seatIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	db := &fakeDB{
		tx: &fakeTx{heldInTx: seatIDs[1:2]},
	}
	repo := NewBookingRepository(db, zap.NewNop())

	booking, details := reservationFixture(seatIDs)
	err := repo.CreateWithDetails(context.Background(), booking, details, 15*time.Minute)
	require.Error(t, err)

	var taken *SeatsTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, seatIDs[1:2], taken.SeatIDs)
	assert.False(t, db.tx.committed)
}

func TestCreateWithDetailsOtherErrorPassesThrough(t *testing.T) {
	seatIDs := []uuid.UUID{uuid.New()}
	db := &fakeDB{
		tx: &fakeTx{detailsErr: &pgconn.PgError{Code: "23503"}},
	}
	repo := NewBookingRepository(db, zap.NewNop())

	booking, details := reservationFixture(seatIDs)
	err := repo.CreateWithDetails(context.Background(), booking, details, 15*time.Minute)
	require.Error(t, err)

	var taken *SeatsTakenError
	assert.False(t, errors.As(err, &taken))
	assert.Contains(t, err.Error(), booking.OrderID)
}

func TestFinalizeReturnsErrNotPending(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{notPending: true}}
	repo := NewBookingRepository(db, zap.NewNop())

	now := time.Now()
	payment := &entity.Payment{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		BookingID: uuid.New(),
		Amount:    90000,
		Method:    entity.PaymentMethodBankTransfer,
		Status:    entity.PaymentStatusCompleted,
		PaidAt:    now,
	}

	err := repo.Finalize(context.Background(), payment.BookingID, payment)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.False(t, db.tx.committed)
}

func TestCancelReturnsErrNotPendingWhenNoStatusMatches(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{notPending: true}}
	repo := NewBookingRepository(db, zap.NewNop())

	err := repo.Cancel(context.Background(), uuid.New(), []entity.BookingStatus{entity.BookingStatusPending})
	assert.ErrorIs(t, err, ErrNotPending)
}
