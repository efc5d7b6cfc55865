package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// One row per (user, calendar date). The composite unique index backs the
// ON CONFLICT upsert that makes the increment atomic.
type DailyChatCreation struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_daily_chat_user_date"`
	Date      datatypes.Date `gorm:"not null;uniqueIndex:idx_daily_chat_user_date"`
	Count     int            `gorm:"not null;default:0"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (DailyChatCreation) TableName() string {
	return "daily_chat_creation"
}
