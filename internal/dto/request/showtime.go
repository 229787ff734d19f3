package request

type CreateShowTimeRequest struct {
	MovieID   string  `json:"movie_id" validate:"required,uuid4"`
	RoomID    string  `json:"room_id" validate:"required,uuid4"`
	StartTime string  `json:"start_time" validate:"required"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	Format    string  `json:"format" validate:"required,oneof=2D 3D IMAX"`
}

type UpdateShowTimeRequest struct {
	StartTime string  `json:"start_time" validate:"required"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	Format    string  `json:"format" validate:"required,oneof=2D 3D IMAX"`
}
