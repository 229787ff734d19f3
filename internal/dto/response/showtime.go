package response

import "time"

type ShowTimeResponse struct {
	ID         string    `json:"id"`
	MovieID    string    `json:"movie_id"`
	MovieTitle string    `json:"movie_title,omitempty"`
	RoomID     string    `json:"room_id"`
	RoomName   string    `json:"room_name,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Price      float64   `json:"price"`
	Format     string    `json:"format"`
	Status     string    `json:"status"`
}

// SeatAvailabilityResponse partitions a showtime's seats into taken and
// free sets so clients can render the seat map in one call.
type SeatAvailabilityResponse struct {
	ShowTimeID     string         `json:"show_time_id"`
	AvailableSeats []SeatResponse `json:"available_seats"`
	TakenSeats     []SeatResponse `json:"taken_seats"`
}
