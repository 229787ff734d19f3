package request

type CreateRoomRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
	Rows int    `json:"rows" validate:"required,gt=0,max=26"`
	Cols int    `json:"cols" validate:"required,gt=0,max=50"`
}

type UpdateRoomRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}
