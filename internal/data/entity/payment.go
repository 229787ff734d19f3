package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

const PaymentMethodBankTransfer = "bank_transfer"

type Payment struct {
	Base
	BookingID     uuid.UUID     `db:"booking_id"`
	Amount        float64       `db:"amount"`
	Method        string        `db:"method"`
	TransactionID *string       `db:"transaction_id"`
	Status        PaymentStatus `db:"status"`
	PaidAt        time.Time     `db:"paid_at"`
}
