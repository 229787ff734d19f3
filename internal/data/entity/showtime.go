package entity

import (
	"time"

	"github.com/google/uuid"
)

type ShowTimeStatus string

const (
	ShowTimeStatusAvailable ShowTimeStatus = "available"
	ShowTimeStatusExpired   ShowTimeStatus = "expired"
)

type ShowTimeFormat string

const (
	ShowTimeFormat2D   ShowTimeFormat = "2D"
	ShowTimeFormat3D   ShowTimeFormat = "3D"
	ShowTimeFormatIMAX ShowTimeFormat = "IMAX"
)

type ShowTime struct {
	Base
	MovieID   uuid.UUID      `db:"movie_id"`
	RoomID    uuid.UUID      `db:"room_id"`
	StartTime time.Time      `db:"start_time"`
	Price     float64        `db:"price"`
	Format    ShowTimeFormat `db:"format"`
	Status    ShowTimeStatus `db:"status"`
}

// EndTime is the moment the screen is busy until, including the cleanup
// buffer needed before the next showtime can start in the same room.
func (st *ShowTime) EndTime(duration time.Duration, cleanupBuffer time.Duration) time.Time {
	return st.StartTime.Add(duration + cleanupBuffer)
}
