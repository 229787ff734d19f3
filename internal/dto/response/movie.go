package response

import "time"

type MovieResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Genre             string    `json:"genre"`
	Director          *string   `json:"director,omitempty"`
	Description       *string   `json:"description,omitempty"`
	PosterURL         *string   `json:"poster_url,omitempty"`
	TrailerURL        *string   `json:"trailer_url,omitempty"`
	Cast              *string   `json:"cast,omitempty"`
	Language          *string   `json:"language,omitempty"`
	Rating            *string   `json:"rating,omitempty"`
	ReleaseDate       time.Time `json:"release_date"`
	DurationInMinutes int       `json:"duration_in_minutes"`
	Status            string    `json:"status"`
}

type RoomResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TotalSeats int    `json:"total_seats"`
}

type SeatResponse struct {
	ID         string `json:"id"`
	SeatNumber string `json:"seat_number"`
	SeatRow    string `json:"seat_row"`
	SeatColumn int    `json:"seat_column"`
}

type RoomDetailResponse struct {
	RoomResponse
	Seats []SeatResponse `json:"seats"`
}
