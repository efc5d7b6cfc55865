package entity

import (
	"time"

	"github.com/google/uuid"
)

// DailyChatCreation counts sessions a user created on a calendar day (UTC).
// One row per (user, date); the increment is an atomic upsert so concurrent
// creations can never lose a count.
type DailyChatCreation struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Date      time.Time
	Count     int
	UpdatedAt time.Time
}
