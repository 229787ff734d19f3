package repository

import (
	"movie-ticket/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User          UserRepository
	Session       SessionRepository
	ResetToken    ResetTokenRepository
	Movie         MovieRepository
	Room          RoomRepository
	Seat          SeatRepository
	ShowTime      ShowTimeRepository
	Booking       BookingRepository
	BookingDetail BookingDetailRepository
	Payment       PaymentRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:          NewUserRepository(db, log),
		Session:       NewSessionRepository(db, log),
		ResetToken:    NewResetTokenRepository(db, log),
		Movie:         NewMovieRepository(db, log),
		Room:          NewRoomRepository(db, log),
		Seat:          NewSeatRepository(db, log),
		ShowTime:      NewShowTimeRepository(db, log),
		Booking:       NewBookingRepository(db, log),
		BookingDetail: NewBookingDetailRepository(db, log),
		Payment:       NewPaymentRepository(db, log),
	}
}
