package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Title          string
	IsDefaultTitle bool
	QuestionsCount int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
