package dto

import (
	"time"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	PlanName string `json:"plan_name" validate:"required"`
}

type CheckoutResponse struct {
	OrderId     uuid.UUID `json:"order_id"`
	RedirectURL string    `json:"redirect_url"`
	Token       string    `json:"token"`
}

type SubscriptionStatusResponse struct {
	SubscriptionId uuid.UUID `json:"subscription_id"`
	PlanName       string    `json:"plan_name"`
	Active         bool      `json:"active"`
	PaymentStatus  string    `json:"payment_status"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MidtransNotification is the webhook payload. Only the fields used for
// verification and state transitions are bound.
type MidtransNotification struct {
	OrderId           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	TransactionId     string `json:"transaction_id"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
}
