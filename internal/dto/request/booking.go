package request

type CreateBookingRequest struct {
	ShowTimeID string   `json:"show_time_id" validate:"required,uuid4"`
	SeatIDs    []string `json:"seat_ids" validate:"required,min=1,max=5,unique,dive,uuid4"`
}

type ConfirmPaymentRequest struct {
	TransactionID string `json:"transaction_id" validate:"omitempty,max=100"`
}
