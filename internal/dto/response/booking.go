package response

import "time"

type BookingResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	MovieTitle  string    `json:"movie_title,omitempty"`
	ShowTime    time.Time `json:"show_time,omitempty"`
	RoomName    string    `json:"room_name,omitempty"`
	Seats       []string  `json:"seats"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	BookingTime time.Time `json:"booking_time"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
}

// PaymentInstructionResponse carries everything the client needs to pay
// by bank transfer: the QR image plus the raw transfer details.
type PaymentInstructionResponse struct {
	OrderID     string    `json:"order_id"`
	Amount      float64   `json:"amount"`
	QRImage     string    `json:"qr_image"`
	QRImageURL  string    `json:"qr_image_url"`
	BankID      string    `json:"bank_id"`
	AccountNo   string    `json:"account_no"`
	AccountName string    `json:"account_name"`
	Description string    `json:"description"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type PaymentResponse struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"booking_id"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	Status        string    `json:"status"`
	PaidAt        time.Time `json:"paid_at"`
}

type ConfirmPaymentResponse struct {
	Booking BookingResponse `json:"booking"`
	Payment PaymentResponse `json:"payment"`
}
