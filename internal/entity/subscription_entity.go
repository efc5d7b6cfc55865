package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// SubscriptionRecord ties a user to a named plan from the static catalog.
// A user has at most one active record; upgrades flip the newest record
// active and deactivate the rest, they never delete history.
type SubscriptionRecord struct {
	Id                    uuid.UUID
	UserId                uuid.UUID
	PlanName              string
	Active                bool
	PaymentStatus         PaymentStatus
	MidtransTransactionId *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
