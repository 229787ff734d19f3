package entity

import "github.com/google/uuid"

type BookingDetailStatus string

const (
	BookingDetailStatusPending   BookingDetailStatus = "pending"
	BookingDetailStatusBooked    BookingDetailStatus = "booked"
	BookingDetailStatusCancelled BookingDetailStatus = "cancelled"
)

// BookingDetail joins a booking to one seat of one showtime, carrying the
// per-seat price at booking time. Its status mirrors the owning booking so
// the partial unique index on (show_time_id, seat_id) WHERE status <>
// 'cancelled' enforces the no-double-booking invariant at the storage layer.
type BookingDetail struct {
	BaseSimple
	BookingID  uuid.UUID           `db:"booking_id"`
	ShowTimeID uuid.UUID           `db:"show_time_id"`
	SeatID     uuid.UUID           `db:"seat_id"`
	Price      float64             `db:"price"`
	Status     BookingDetailStatus `db:"status"`
}
