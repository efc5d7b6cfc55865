package model

import (
	"time"

	"github.com/google/uuid"
)

type UserSubscription struct {
	Id                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId                uuid.UUID `gorm:"type:uuid;not null;index"`
	PlanName              string    `gorm:"type:varchar(50);not null"`
	Active                bool      `gorm:"not null;default:false;index"`
	PaymentStatus         string    `gorm:"type:varchar(50);not null;default:'pending'"`
	MidtransTransactionId *string   `gorm:"type:varchar(255)"`
	CreatedAt             time.Time `gorm:"autoCreateTime"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}
