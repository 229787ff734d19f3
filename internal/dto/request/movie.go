package request

type CreateMovieRequest struct {
	Title             string  `json:"title" validate:"required,min=1,max=200"`
	Genre             string  `json:"genre" validate:"required,max=100"`
	Director          *string `json:"director" validate:"omitempty,max=100"`
	Description       *string `json:"description"`
	PosterURL         *string `json:"poster_url" validate:"omitempty,url"`
	TrailerURL        *string `json:"trailer_url" validate:"omitempty,url"`
	Cast              *string `json:"cast"`
	Language          *string `json:"language" validate:"omitempty,max=50"`
	Rating            *string `json:"rating" validate:"omitempty,max=10"`
	ReleaseDate       string  `json:"release_date" validate:"required,datetime=2006-01-02"`
	DurationInMinutes int     `json:"duration_in_minutes" validate:"required,gt=0,max=600"`
	Status            string  `json:"status" validate:"required,oneof=now_showing coming_soon archived"`
}

type UpdateMovieRequest struct {
	Title             string  `json:"title" validate:"required,min=1,max=200"`
	Genre             string  `json:"genre" validate:"required,max=100"`
	Director          *string `json:"director" validate:"omitempty,max=100"`
	Description       *string `json:"description"`
	PosterURL         *string `json:"poster_url" validate:"omitempty,url"`
	TrailerURL        *string `json:"trailer_url" validate:"omitempty,url"`
	Cast              *string `json:"cast"`
	Language          *string `json:"language" validate:"omitempty,max=50"`
	Rating            *string `json:"rating" validate:"omitempty,max=10"`
	ReleaseDate       string  `json:"release_date" validate:"required,datetime=2006-01-02"`
	DurationInMinutes int     `json:"duration_in_minutes" validate:"required,gt=0,max=600"`
	Status            string  `json:"status" validate:"required,oneof=now_showing coming_soon archived"`
}
