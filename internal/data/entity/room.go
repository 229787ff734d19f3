package entity

type Room struct {
	Base
	Name       string `db:"name"`
	TotalSeats int    `db:"total_seats"`
}
