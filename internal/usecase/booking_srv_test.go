package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"movie-ticket/internal/data/entity"
	"movie-ticket/internal/data/repository"
	"movie-ticket/internal/dto/request"
	"movie-ticket/pkg/mailer"
	"movie-ticket/pkg/utils"
	"movie-ticket/pkg/vietqr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Fakes embed the repository interface so only the methods a test needs
// must be implemented; an unexpected call panics and fails the test.

type fakeBookingRepo struct {
	repository.BookingRepository

	createErr      error
	created        *entity.Booking
	createdDetails []*entity.BookingDetail

	finalizeErr    error
	finalizeCalls  int
	finalizePaid   *entity.Payment
	byID           map[uuid.UUID]*entity.Booking
	cancelErr      error
	cancelAllowed  []entity.BookingStatus
	cancelledID    uuid.UUID
}

func (f *fakeBookingRepo) CreateWithDetails(ctx context.Context, booking *entity.Booking, details []*entity.BookingDetail, holdTTL time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = booking
	f.createdDetails = details
	return nil
}

func (f *fakeBookingRepo) Finalize(ctx context.Context, bookingID uuid.UUID, payment *entity.Payment) error {
	f.finalizeCalls++
	if f.finalizeErr != nil {
		return f.finalizeErr
	}
	f.finalizePaid = payment
	return nil
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, bookingID uuid.UUID, allowedFrom []entity.BookingStatus) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelledID = bookingID
	f.cancelAllowed = allowedFrom
	return nil
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return f.byID[id], nil
}

type fakeShowTimeRepo struct {
	repository.ShowTimeRepository
	byID map[uuid.UUID]*entity.ShowTime
}

func (f *fakeShowTimeRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.ShowTime, error) {
	return f.byID[id], nil
}

type fakeSeatRepo struct {
	repository.SeatRepository
	seats []*entity.Seat
}

func (f *fakeSeatRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Seat, error) {
	var found []*entity.Seat
	for _, id := range ids {
		for _, seat := range f.seats {
			if seat.ID == id {
				found = append(found, seat)
			}
		}
	}
	return found, nil
}

func (f *fakeSeatRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Seat, error) {
	for _, seat := range f.seats {
		if seat.ID == id {
			return seat, nil
		}
	}
	return nil, nil
}

type fakeBookingDetailRepo struct {
	repository.BookingDetailRepository
	details   []*entity.BookingDetail
	held      []uuid.UUID
	showStart time.Time
}

func (f *fakeBookingDetailRepo) FindHeldSeatIDs(ctx context.Context, showTimeID uuid.UUID) ([]uuid.UUID, error) {
	return f.held, nil
}

func (f *fakeBookingDetailRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingDetail, error) {
	return f.details, nil
}

func (f *fakeBookingDetailRepo) EarliestShowStart(ctx context.Context, bookingID uuid.UUID) (time.Time, error) {
	return f.showStart, nil
}

type fakePaymentRepo struct {
	repository.PaymentRepository
	byBooking map[uuid.UUID]*entity.Payment
}

func (f *fakePaymentRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	return f.byBooking[bookingID], nil
}

type fakeUserRepo struct {
	repository.UserRepository
	byID map[uuid.UUID]*entity.User
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return f.byID[id], nil
}

type noopMailer struct{}

func (noopMailer) SendInvoice(to, name string, invoice mailer.Invoice) error { return nil }
func (noopMailer) SendPasswordReset(to, name, resetURL string) error         { return nil }

func testConfig() *utils.Config {
	return &utils.Config{
		Payment: utils.PaymentConfig{
			BankID:      "970422",
			AccountNo:   "0123456789",
			AccountName: "CINEMA ONE",
			Template:    "compact2",
		},
		Booking: utils.BookingConfig{
			MaxSeats:     5,
			CancelBuffer: 30 * time.Minute,
			HoldTTL:      15 * time.Minute,
		},
	}
}

func testQRClient(t *testing.T) *vietqr.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png"))
	}))
	t.Cleanup(server.Close)
	return vietqr.NewClientWithBase(vietqr.Account{
		BankID:      "970422",
		AccountNo:   "0123456789",
		AccountName: "CINEMA ONE",
		Template:    "compact2",
	}, server.URL, server.URL+"/banks", zap.NewNop())
}

type bookingFixture struct {
	service    BookingService
	bookings   *fakeBookingRepo
	showTimeID uuid.UUID
	userID     uuid.UUID
	seats      []*entity.Seat
	price      float64
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	roomID := uuid.New()
	showTimeID := uuid.New()
	price := 90000.0

	seats := make([]*entity.Seat, 6)
	for i := range seats {
		seats[i] = &entity.Seat{
			Base:       entity.Base{ID: uuid.New()},
			RoomID:     roomID,
			SeatNumber: string(rune('A')) + string(rune('1'+i)),
			SeatRow:    "A",
			SeatColumn: i + 1,
		}
	}

	bookings := &fakeBookingRepo{byID: map[uuid.UUID]*entity.Booking{}}
	repo := &repository.Repository{
		Booking: bookings,
		ShowTime: &fakeShowTimeRepo{byID: map[uuid.UUID]*entity.ShowTime{
			showTimeID: {
				Base:      entity.Base{ID: showTimeID},
				RoomID:    roomID,
				StartTime: time.Now().Add(4 * time.Hour),
				Price:     price,
				Status:    entity.ShowTimeStatusAvailable,
			},
		}},
		Seat:          &fakeSeatRepo{seats: seats},
		BookingDetail: &fakeBookingDetailRepo{},
		Payment:       &fakePaymentRepo{byBooking: map[uuid.UUID]*entity.Payment{}},
		User:          &fakeUserRepo{byID: map[uuid.UUID]*entity.User{}},
	}

	return &bookingFixture{
		service:    NewBookingService(repo, testQRClient(t), noopMailer{}, testConfig(), zap.NewNop()),
		bookings:   bookings,
		showTimeID: showTimeID,
		userID:     uuid.New(),
		seats:      seats,
		price:      price,
	}
}

func (f *bookingFixture) createRequest(seatCount int) request.CreateBookingRequest {
	ids := make([]string, seatCount)
	for i := 0; i < seatCount; i++ {
		ids[i] = f.seats[i].ID.String()
	}
	return request.CreateBookingRequest{
		ShowTimeID: f.showTimeID.String(),
		SeatIDs:    ids,
	}
}

func TestCreateBookingComputesTotal(t *testing.T) {
	f := newBookingFixture(t)

	booking, payment, err := f.service.Create(context.Background(), f.userID, f.createRequest(3))
	require.NoError(t, err)

	assert.Equal(t, 3*f.price, booking.TotalAmount)
	assert.Equal(t, "pending", booking.Status)
	assert.Equal(t, 3*f.price, payment.Amount)
	assert.NotEmpty(t, payment.QRImage)
	assert.Equal(t, booking.OrderID, payment.Description)

	require.NotNil(t, f.bookings.created)
	assert.Len(t, f.bookings.createdDetails, 3)
	for _, detail := range f.bookings.createdDetails {
		assert.Equal(t, f.price, detail.Price)
		assert.Equal(t, entity.BookingDetailStatusPending, detail.Status)
	}
}

func TestCreateBookingRejectsTooManySeats(t *testing.T) {
	f := newBookingFixture(t)

	_, _, err := f.service.Create(context.Background(), f.userID, f.createRequest(6))
	require.Error(t, err)

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Nil(t, f.bookings.created)
}

func TestCreateBookingRejectsZeroSeats(t *testing.T) {
	f := newBookingFixture(t)

	_, _, err := f.service.Create(context.Background(), f.userID, request.CreateBookingRequest{
		ShowTimeID: f.showTimeID.String(),
	})
	require.Error(t, err)

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestCreateBookingNamesConflictingSeats(t *testing.T) {
	f := newBookingFixture(t)
	f.bookings.createErr = &repository.SeatsTakenError{SeatIDs: []uuid.UUID{f.seats[1].ID}}

	_, _, err := f.service.Create(context.Background(), f.userID, f.createRequest(3))
	require.Error(t, err)

	var conflict *SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{f.seats[1].SeatNumber}, conflict.SeatNumbers)
}

func TestCreateBookingRejectsForeignSeat(t *testing.T) {
	f := newBookingFixture(t)
	f.seats[0].RoomID = uuid.New() // seat from another room

	_, _, err := f.service.Create(context.Background(), f.userID, f.createRequest(2))
	require.Error(t, err)

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

// failingQRClient builds a client whose hosted fetch errors and whose
// local fallback cannot encode either (account name past QR capacity).
func failingQRClient(t *testing.T) *vietqr.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)
	return vietqr.NewClientWithBase(vietqr.Account{
		BankID:      "970422",
		AccountNo:   "0123456789",
		AccountName: strings.Repeat("X", 4000),
		Template:    "compact2",
	}, server.URL, server.URL+"/banks", zap.NewNop())
}

func TestCreateBookingSurvivesQRFailure(t *testing.T) {
	f := newBookingFixture(t)
	service := NewBookingService(f.service.(*bookingService).repo, failingQRClient(t), noopMailer{}, testConfig(), zap.NewNop())

	booking, payment, err := service.Create(context.Background(), f.userID, f.createRequest(2))
	require.NoError(t, err)

	// The seats are committed and held; the client retries instructions.
	require.NotNil(t, booking)
	assert.Equal(t, 2*f.price, booking.TotalAmount)
	assert.Nil(t, payment)
	require.NotNil(t, f.bookings.created)
}

func TestConfirmPaymentFinalizesPendingBooking(t *testing.T) {
	f := newBookingFixture(t)
	bookingID := uuid.New()
	f.bookings.byID[bookingID] = &entity.Booking{
		Base:        entity.Base{ID: bookingID, CreatedAt: time.Now()},
		OrderID:     "TICKET-TEST-1",
		UserID:      f.userID,
		TotalAmount: 180000,
		Status:      entity.BookingStatusPending,
	}

	result, err := f.service.ConfirmPayment(context.Background(), bookingID, f.userID, false, request.ConfirmPaymentRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, f.bookings.finalizeCalls)
	assert.Equal(t, "completed", result.Booking.Status)
	assert.Equal(t, 180000.0, result.Payment.Amount)
	assert.Equal(t, entity.PaymentMethodBankTransfer, result.Payment.Method)
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	f := newBookingFixture(t)
	bookingID := uuid.New()
	booking := &entity.Booking{
		Base:        entity.Base{ID: bookingID},
		OrderID:     "TICKET-TEST-2",
		UserID:      f.userID,
		TotalAmount: 90000,
		Status:      entity.BookingStatusCompleted,
	}
	f.bookings.byID[bookingID] = booking

	existing := &entity.Payment{
		Base:      entity.Base{ID: uuid.New()},
		BookingID: bookingID,
		Amount:    90000,
		Method:    entity.PaymentMethodBankTransfer,
		Status:    entity.PaymentStatusCompleted,
		PaidAt:    time.Now().Add(-time.Hour),
	}
	f.service.(*bookingService).repo.Payment.(*fakePaymentRepo).byBooking[bookingID] = existing

	first, err := f.service.ConfirmPayment(context.Background(), bookingID, f.userID, false, request.ConfirmPaymentRequest{})
	require.NoError(t, err)
	second, err := f.service.ConfirmPayment(context.Background(), bookingID, f.userID, false, request.ConfirmPaymentRequest{})
	require.NoError(t, err)

	assert.Equal(t, 0, f.bookings.finalizeCalls)
	assert.Equal(t, existing.ID.String(), first.Payment.ID)
	assert.Equal(t, first.Payment.ID, second.Payment.ID)
}

func TestConfirmPaymentByStrangerRejected(t *testing.T) {
	f := newBookingFixture(t)
	bookingID := uuid.New()
	f.bookings.byID[bookingID] = &entity.Booking{
		Base:        entity.Base{ID: bookingID, CreatedAt: time.Now()},
		OrderID:     "TICKET-TEST-S",
		UserID:      f.userID,
		TotalAmount: 90000,
		Status:      entity.BookingStatusPending,
	}

	_, err := f.service.ConfirmPayment(context.Background(), bookingID, uuid.New(), false, request.ConfirmPaymentRequest{})
	require.Error(t, err)

	var notAuthorized *NotAuthorizedError
	assert.ErrorAs(t, err, &notAuthorized)
	assert.Equal(t, 0, f.bookings.finalizeCalls)
}

func TestConfirmPaymentByAdminOnBehalfOfOwner(t *testing.T) {
	f := newBookingFixture(t)
	bookingID := uuid.New()
	f.bookings.byID[bookingID] = &entity.Booking{
		Base:        entity.Base{ID: bookingID, CreatedAt: time.Now()},
		OrderID:     "TICKET-TEST-A",
		UserID:      f.userID,
		TotalAmount: 90000,
		Status:      entity.BookingStatusPending,
	}

	result, err := f.service.ConfirmPayment(context.Background(), bookingID, uuid.New(), true, request.ConfirmPaymentRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.bookings.finalizeCalls)
	assert.Equal(t, "completed", result.Booking.Status)
}

func TestConfirmPaymentRejectsCancelledBooking(t *testing.T) {
	f := newBookingFixture(t)
	bookingID := uuid.New()
	f.bookings.byID[bookingID] = &entity.Booking{
		Base:   entity.Base{ID: bookingID},
		UserID: f.userID,
		Status: entity.BookingStatusCancelled,
	}

	_, err := f.service.ConfirmPayment(context.Background(), bookingID, f.userID, false, request.ConfirmPaymentRequest{})
	require.Error(t, err)

	var state *StateError
	assert.ErrorAs(t, err, &state)
	assert.Equal(t, 0, f.bookings.finalizeCalls)
}

func TestConfirmPaymentRaceReturnsExistingPayment(t *testing.T) {
	f := newBookingFixture(t)
	bookingID := uuid.New()
	f.bookings.byID[bookingID] = &entity.Booking{
		Base:        entity.Base{ID: bookingID},
		OrderID:     "TICKET-TEST-3",
		UserID:      f.userID,
		TotalAmount: 90000,
		Status:      entity.BookingStatusPending,
	}
	f.bookings.finalizeErr = repository.ErrNotPending

	existing := &entity.Payment{
		Base:      entity.Base{ID: uuid.New()},
		BookingID: bookingID,
		Amount:    90000,
		Status:    entity.PaymentStatusCompleted,
	}
	f.service.(*bookingService).repo.Payment.(*fakePaymentRepo).byBooking[bookingID] = existing

	// By the time the conditional update ran, a concurrent confirm had
	// already completed the booking.
	f.bookings.byID[bookingID] = &entity.Booking{
		Base:        entity.Base{ID: bookingID},
		OrderID:     "TICKET-TEST-3",
		UserID:      f.userID,
		TotalAmount: 90000,
		Status:      entity.BookingStatusCompleted,
	}

	result, err := f.service.ConfirmPayment(context.Background(), bookingID, f.userID, false, request.ConfirmPaymentRequest{})
	require.NoError(t, err)
	assert.Equal(t, existing.ID.String(), result.Payment.ID)
}

func cancelFixture(t *testing.T, showStart time.Time, status entity.BookingStatus) (*bookingFixture, uuid.UUID) {
	t.Helper()
	f := newBookingFixture(t)
	bookingID := uuid.New()
	f.bookings.byID[bookingID] = &entity.Booking{
		Base:    entity.Base{ID: bookingID},
		OrderID: "TICKET-TEST-C",
		UserID:  f.userID,
		Status:  status,
	}
	f.service.(*bookingService).repo.BookingDetail.(*fakeBookingDetailRepo).showStart = showStart
	return f, bookingID
}

func TestCancelByOwnerBeforeBuffer(t *testing.T) {
	f, bookingID := cancelFixture(t, time.Now().Add(2*time.Hour), entity.BookingStatusPending)

	err := f.service.Cancel(context.Background(), bookingID, f.userID, false)
	require.NoError(t, err)
	assert.Equal(t, bookingID, f.bookings.cancelledID)
	assert.Equal(t, []entity.BookingStatus{entity.BookingStatusPending}, f.bookings.cancelAllowed)
}

func TestCancelByOwnerInsideBufferRejected(t *testing.T) {
	f, bookingID := cancelFixture(t, time.Now().Add(20*time.Minute), entity.BookingStatusPending)

	err := f.service.Cancel(context.Background(), bookingID, f.userID, false)
	require.Error(t, err)

	var state *StateError
	assert.ErrorAs(t, err, &state)
}

func TestCancelByAdminInsideBuffer(t *testing.T) {
	f, bookingID := cancelFixture(t, time.Now().Add(10*time.Minute), entity.BookingStatusPending)

	err := f.service.Cancel(context.Background(), bookingID, uuid.New(), true)
	require.NoError(t, err)
	assert.Equal(t, bookingID, f.bookings.cancelledID)
}

func TestCancelByStrangerRejected(t *testing.T) {
	f, bookingID := cancelFixture(t, time.Now().Add(2*time.Hour), entity.BookingStatusPending)

	err := f.service.Cancel(context.Background(), bookingID, uuid.New(), false)
	require.Error(t, err)

	var notAuthorized *NotAuthorizedError
	assert.ErrorAs(t, err, &notAuthorized)
}

func TestCancelTerminalStatusesRejected(t *testing.T) {
	for _, status := range []entity.BookingStatus{entity.BookingStatusCompleted, entity.BookingStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f, bookingID := cancelFixture(t, time.Now().Add(2*time.Hour), status)

			err := f.service.Cancel(context.Background(), bookingID, f.userID, false)
			require.Error(t, err)

			var state *StateError
			assert.ErrorAs(t, err, &state)
			assert.Equal(t, uuid.Nil, f.bookings.cancelledID)
		})
	}
}
