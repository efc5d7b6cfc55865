package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

type ChatMessage struct {
	Id          uuid.UUID
	SessionId   uuid.UUID
	UserId      uuid.UUID
	Text        string
	MessageType MessageType
	FileURL     *string
	IsAI        bool
	CreatedAt   time.Time
}
