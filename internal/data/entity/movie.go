package entity

import (
	"time"
)

type MovieStatus string

const (
	MovieStatusNowShowing MovieStatus = "now_showing"
	MovieStatusComingSoon MovieStatus = "coming_soon"
	MovieStatusArchived   MovieStatus = "archived"
)

type Movie struct {
	Base
	Title             string      `db:"title"`
	Genre             string      `db:"genre"`
	Director          *string     `db:"director"`
	Description       *string     `db:"description"`
	PosterURL         *string     `db:"poster_url"`
	TrailerURL        *string     `db:"trailer_url"`
	Cast              *string     `db:"movie_cast"` // comma-separated actor names
	Language          *string     `db:"language"`
	Rating            *string     `db:"rating"` // e.g. PG-13, R
	ReleaseDate       time.Time   `db:"release_date"`
	DurationInMinutes int         `db:"duration_in_minutes"`
	Status            MovieStatus `db:"status"`
}
