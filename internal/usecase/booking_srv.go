package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movie-ticket/internal/data/entity"
	"movie-ticket/internal/data/repository"
	"movie-ticket/internal/dto/request"
	"movie-ticket/internal/dto/response"
	"movie-ticket/pkg/mailer"
	"movie-ticket/pkg/utils"
	"movie-ticket/pkg/vietqr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// Create reserves seats for a showtime and returns the pending booking
	// together with payment instructions.
	Create(ctx context.Context, userID uuid.UUID, req request.CreateBookingRequest) (*response.BookingResponse, *response.PaymentInstructionResponse, error)

	// ConfirmPayment completes a pending booking owned by the actor.
	// Confirming an already completed booking returns the existing payment
	// without side effects.
	ConfirmPayment(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool, req request.ConfirmPaymentRequest) (*response.ConfirmPaymentResponse, error)

	// Cancel releases a booking's seats. Owners may cancel up to the
	// cancellation buffer before the show; admins may cancel any time
	// before the show starts.
	Cancel(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool) error

	GetByID(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool) (*response.BookingResponse, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) (*response.Paginated[response.BookingResponse], error)
	ListAll(ctx context.Context, status string, page, limit int) (*response.Paginated[response.BookingResponse], error)
	PaymentInstructions(ctx context.Context, bookingID, actorID uuid.UUID) (*response.PaymentInstructionResponse, error)
}

type bookingService struct {
	repo   *repository.Repository
	qr     *vietqr.Client
	mailer mailer.Mailer
	config *utils.Config
	log    *zap.Logger
}

func NewBookingService(repo *repository.Repository, qr *vietqr.Client, mail mailer.Mailer, config *utils.Config, log *zap.Logger) BookingService {
	return &bookingService{
		repo:   repo,
		qr:     qr,
		mailer: mail,
		config: config,
		log:    log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) Create(ctx context.Context, userID uuid.UUID, req request.CreateBookingRequest) (*response.BookingResponse, *response.PaymentInstructionResponse, error) {
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, nil, &ValidationError{Fields: fields}
	}
	if len(req.SeatIDs) > s.config.Booking.MaxSeats {
		return nil, nil, &ValidationError{Fields: map[string]string{
			"seat_ids": fmt.Sprintf("Maximum is %d", s.config.Booking.MaxSeats),
		}}
	}

	showTimeID, err := uuid.Parse(req.ShowTimeID)
	if err != nil {
		return nil, nil, &ValidationError{Fields: map[string]string{"show_time_id": "Must be a valid UUID"}}
	}

	showTime, err := s.repo.ShowTime.FindByID(ctx, showTimeID)
	if err != nil {
		return nil, nil, err
	}
	if showTime == nil {
		return nil, nil, &NotFoundError{Resource: "Showtime"}
	}
	if showTime.Status != entity.ShowTimeStatusAvailable || !showTime.StartTime.After(time.Now()) {
		return nil, nil, &StateError{Reason: "Showtime is no longer open for booking"}
	}

	seatIDs := make([]uuid.UUID, len(req.SeatIDs))
	for i, raw := range req.SeatIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, nil, &ValidationError{Fields: map[string]string{"seat_ids": "Must be valid UUIDs"}}
		}
		seatIDs[i] = id
	}

	seats, err := s.repo.Seat.FindByIDs(ctx, seatIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(seats) != len(seatIDs) {
		return nil, nil, &NotFoundError{Resource: "Seat"}
	}
	for _, seat := range seats {
		if seat.RoomID != showTime.RoomID {
			return nil, nil, &ValidationError{Fields: map[string]string{
				"seat_ids": fmt.Sprintf("Seat %s does not belong to this showtime's room", seat.SeatNumber),
			}}
		}
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderID:     utils.GenerateOrderID(),
		UserID:      userID,
		BookingTime: now,
		TotalAmount: showTime.Price * float64(len(seatIDs)),
		Status:      entity.BookingStatusPending,
	}

	details := make([]*entity.BookingDetail, len(seatIDs))
	for i, seatID := range seatIDs {
		details[i] = &entity.BookingDetail{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: now,
			},
			BookingID:  booking.ID,
			ShowTimeID: showTimeID,
			SeatID:     seatID,
			Price:      showTime.Price,
			Status:     entity.BookingDetailStatusPending,
		}
	}

	if err := s.repo.Booking.CreateWithDetails(ctx, booking, details, s.config.Booking.HoldTTL); err != nil {
		var taken *repository.SeatsTakenError
		if errors.As(err, &taken) {
			return nil, nil, &SeatConflictError{SeatNumbers: s.seatNumbers(seats, taken.SeatIDs)}
		}
		return nil, nil, err
	}

	s.log.Info("booking created",
		zap.String("order_id", booking.OrderID),
		zap.String("user_id", userID.String()),
		zap.Int("seats", len(seatIDs)),
		zap.Float64("total", booking.TotalAmount),
	)

	// QR rendering happens outside the reservation transaction. The seats
	// are already committed and held, so a failed render must not fail the
	// booking; the client re-requests instructions instead.
	instructions, err := s.renderPaymentInstructions(ctx, booking)
	if err != nil {
		s.log.Warn("payment instructions unavailable at booking time",
			zap.Error(err),
			zap.String("order_id", booking.OrderID),
		)
		instructions = nil
	}

	bookingResp := s.toBookingResponse(ctx, booking)
	return bookingResp, instructions, nil
}

func (s *bookingService) seatNumbers(seats []*entity.Seat, ids []uuid.UUID) []string {
	byID := make(map[uuid.UUID]string, len(seats))
	for _, seat := range seats {
		byID[seat.ID] = seat.SeatNumber
	}

	numbers := make([]string, 0, len(ids))
	for _, id := range ids {
		if number, ok := byID[id]; ok {
			numbers = append(numbers, number)
		} else {
			numbers = append(numbers, id.String())
		}
	}
	return numbers
}

func (s *bookingService) renderPaymentInstructions(ctx context.Context, booking *entity.Booking) (*response.PaymentInstructionResponse, error) {
	image, err := s.qr.QRImage(ctx, booking.TotalAmount, booking.OrderID)
	if err != nil {
		return nil, &AdapterError{Err: err}
	}

	return &response.PaymentInstructionResponse{
		OrderID:     booking.OrderID,
		Amount:      booking.TotalAmount,
		QRImage:     image,
		QRImageURL:  s.qr.ImageURL(booking.TotalAmount, booking.OrderID),
		BankID:      s.config.Payment.BankID,
		AccountNo:   s.config.Payment.AccountNo,
		AccountName: s.config.Payment.AccountName,
		Description: booking.OrderID,
		ExpiresAt:   booking.CreatedAt.Add(s.config.Booking.HoldTTL),
	}, nil
}

// PaymentInstructions re-renders the QR for an existing pending booking,
// letting a client recover after losing the create response.
func (s *bookingService) PaymentInstructions(ctx context.Context, bookingID, actorID uuid.UUID) (*response.PaymentInstructionResponse, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, &NotFoundError{Resource: "Booking"}
	}
	if booking.UserID != actorID {
		return nil, &NotAuthorizedError{Reason: "Not your booking"}
	}
	if booking.Status != entity.BookingStatusPending {
		return nil, &StateError{Reason: "Booking is not awaiting payment"}
	}

	return s.renderPaymentInstructions(ctx, booking)
}

func (s *bookingService) ConfirmPayment(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool, req request.ConfirmPaymentRequest) (*response.ConfirmPaymentResponse, error) {
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, &NotFoundError{Resource: "Booking"}
	}
	if !isAdmin && booking.UserID != actorID {
		return nil, &NotAuthorizedError{Reason: "Not your booking"}
	}

	// Idempotent confirm: an already completed booking returns its
	// existing payment.
	if booking.Status == entity.BookingStatusCompleted {
		payment, err := s.repo.Payment.FindByBookingID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if payment == nil {
			return nil, fmt.Errorf("completed booking %s has no payment", bookingID.String())
		}
		return s.confirmResponse(ctx, booking, payment), nil
	}
	if booking.Status == entity.BookingStatusCancelled {
		return nil, &StateError{Reason: "Booking was cancelled and can no longer be paid"}
	}

	now := time.Now()
	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID: bookingID,
		Amount:    booking.TotalAmount,
		Method:    entity.PaymentMethodBankTransfer,
		Status:    entity.PaymentStatusCompleted,
		PaidAt:    now,
	}
	if req.TransactionID != "" {
		payment.TransactionID = &req.TransactionID
	}

	if err := s.repo.Booking.Finalize(ctx, bookingID, payment); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			// Lost the race: re-read to distinguish a concurrent confirm
			// from a concurrent cancel.
			current, readErr := s.repo.Booking.FindByID(ctx, bookingID)
			if readErr == nil && current != nil && current.Status == entity.BookingStatusCompleted {
				existing, payErr := s.repo.Payment.FindByBookingID(ctx, bookingID)
				if payErr == nil && existing != nil {
					return s.confirmResponse(ctx, current, existing), nil
				}
			}
			return nil, &StateError{Reason: "Booking was cancelled and can no longer be paid"}
		}
		return nil, err
	}

	booking.Status = entity.BookingStatusCompleted

	s.log.Info("payment confirmed",
		zap.String("order_id", booking.OrderID),
		zap.Float64("amount", payment.Amount),
	)

	s.sendInvoiceAsync(booking, payment)

	return s.confirmResponse(ctx, booking, payment), nil
}

// sendInvoiceAsync emails the ticket invoice without blocking the
// confirmation response. Failures are logged only.
func (s *bookingService) sendInvoiceAsync(booking *entity.Booking, payment *entity.Payment) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := s.repo.User.FindByID(ctx, booking.UserID)
		if err != nil || user == nil {
			s.log.Error("invoice email skipped, user lookup failed",
				zap.Error(err),
				zap.String("order_id", booking.OrderID),
			)
			return
		}

		invoice := mailer.Invoice{
			OrderID:     booking.OrderID,
			TotalAmount: payment.Amount,
		}

		details, err := s.repo.BookingDetail.FindByBookingID(ctx, booking.ID)
		if err == nil && len(details) > 0 {
			if showTime, err := s.repo.ShowTime.FindByID(ctx, details[0].ShowTimeID); err == nil && showTime != nil {
				invoice.ShowTime = showTime.StartTime.Format("Mon, 02 Jan 2006 15:04")
				if movie, err := s.repo.Movie.FindByID(ctx, showTime.MovieID); err == nil && movie != nil {
					invoice.MovieTitle = movie.Title
				}
				if room, err := s.repo.Room.FindByID(ctx, showTime.RoomID); err == nil && room != nil {
					invoice.RoomName = room.Name
				}
			}
			for _, detail := range details {
				if seat, err := s.repo.Seat.FindByID(ctx, detail.SeatID); err == nil && seat != nil {
					invoice.Seats = append(invoice.Seats, seat.SeatNumber)
				}
			}
		}

		if err := s.mailer.SendInvoice(user.Email, user.FullName, invoice); err != nil {
			s.log.Error("failed to send invoice email",
				zap.Error(err),
				zap.String("order_id", booking.OrderID),
			)
		}
	}()
}

func (s *bookingService) confirmResponse(ctx context.Context, booking *entity.Booking, payment *entity.Payment) *response.ConfirmPaymentResponse {
	return &response.ConfirmPaymentResponse{
		Booking: *s.toBookingResponse(ctx, booking),
		Payment: response.PaymentResponse{
			ID:            payment.ID.String(),
			BookingID:     payment.BookingID.String(),
			Amount:        payment.Amount,
			Method:        payment.Method,
			TransactionID: payment.TransactionID,
			Status:        string(payment.Status),
			PaidAt:        payment.PaidAt,
		},
	}
}

func (s *bookingService) Cancel(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool) error {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		return &NotFoundError{Resource: "Booking"}
	}
	if !isAdmin && booking.UserID != actorID {
		return &NotAuthorizedError{Reason: "Not your booking"}
	}
	// Completed and cancelled are terminal; completed seats are durably
	// held and are not released.
	if !booking.Status.CanTransition(entity.BookingStatusCancelled) {
		return &StateError{Reason: fmt.Sprintf("Booking is already %s", booking.Status)}
	}

	showStart, err := s.repo.BookingDetail.EarliestShowStart(ctx, bookingID)
	if err != nil {
		return err
	}

	if isAdmin {
		if !time.Now().Before(showStart) {
			return &StateError{Reason: "Show has already started"}
		}
	} else {
		// Owners must cancel before the buffer window closes.
		deadline := showStart.Add(-s.config.Booking.CancelBuffer)
		if !time.Now().Before(deadline) {
			return &StateError{Reason: fmt.Sprintf(
				"Bookings can only be cancelled up to %d minutes before the show",
				int(s.config.Booking.CancelBuffer.Minutes()),
			)}
		}
	}

	allowedFrom := []entity.BookingStatus{entity.BookingStatusPending}
	if err := s.repo.Booking.Cancel(ctx, bookingID, allowedFrom); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return &StateError{Reason: "Booking already left the pending state"}
		}
		return err
	}

	s.log.Info("booking cancelled",
		zap.String("order_id", booking.OrderID),
		zap.Bool("by_admin", isAdmin),
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool) (*response.BookingResponse, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, &NotFoundError{Resource: "Booking"}
	}
	if !isAdmin && booking.UserID != actorID {
		return nil, &NotAuthorizedError{Reason: "Not your booking"}
	}

	return s.toBookingResponse(ctx, booking), nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) (*response.Paginated[response.BookingResponse], error) {
	offset := (page - 1) * limit
	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]response.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		items = append(items, *s.toBookingResponse(ctx, booking))
	}

	paginated := response.NewPaginated(items, page, limit, total)
	return &paginated, nil
}

func (s *bookingService) ListAll(ctx context.Context, status string, page, limit int) (*response.Paginated[response.BookingResponse], error) {
	var statusFilter *entity.BookingStatus
	if status != "" {
		st := entity.BookingStatus(status)
		switch st {
		case entity.BookingStatusPending, entity.BookingStatusCompleted, entity.BookingStatusCancelled:
			statusFilter = &st
		default:
			return nil, &ValidationError{Fields: map[string]string{"status": "Must be one of: pending, completed, cancelled"}}
		}
	}

	offset := (page - 1) * limit
	bookings, err := s.repo.Booking.FindAll(ctx, statusFilter, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Booking.CountAll(ctx, statusFilter)
	if err != nil {
		return nil, err
	}

	items := make([]response.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		items = append(items, *s.toBookingResponse(ctx, booking))
	}

	paginated := response.NewPaginated(items, page, limit, total)
	return &paginated, nil
}

// toBookingResponse enriches a booking with movie, room and seat info.
// Lookups are best effort; a partially enriched response is still useful.
func (s *bookingService) toBookingResponse(ctx context.Context, booking *entity.Booking) *response.BookingResponse {
	resp := &response.BookingResponse{
		ID:          booking.ID.String(),
		OrderID:     booking.OrderID,
		UserID:      booking.UserID.String(),
		Seats:       []string{},
		TotalAmount: booking.TotalAmount,
		Status:      string(booking.Status),
		BookingTime: booking.BookingTime,
	}

	if booking.Status == entity.BookingStatusPending {
		resp.ExpiresAt = booking.CreatedAt.Add(s.config.Booking.HoldTTL)
	}

	details, err := s.repo.BookingDetail.FindByBookingID(ctx, booking.ID)
	if err != nil || len(details) == 0 {
		return resp
	}

	if showTime, err := s.repo.ShowTime.FindByID(ctx, details[0].ShowTimeID); err == nil && showTime != nil {
		resp.ShowTime = showTime.StartTime
		if movie, err := s.repo.Movie.FindByID(ctx, showTime.MovieID); err == nil && movie != nil {
			resp.MovieTitle = movie.Title
		}
		if room, err := s.repo.Room.FindByID(ctx, showTime.RoomID); err == nil && room != nil {
			resp.RoomName = room.Name
		}
	}

	for _, detail := range details {
		if seat, err := s.repo.Seat.FindByID(ctx, detail.SeatID); err == nil && seat != nil {
			resp.Seats = append(resp.Seats, seat.SeatNumber)
		}
	}

	return resp
}
