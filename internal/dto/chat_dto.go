package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	IsDefaultTitle bool      `json:"is_default_title"`
	CreatedAt      time.Time `json:"created_at"`
}

type SessionResponse struct {
	Id             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	IsDefaultTitle bool       `json:"is_default_title"`
	QuestionsCount int        `json:"questions_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

type MessageResponse struct {
	Id          uuid.UUID `json:"id"`
	Text        string    `json:"text"`
	MessageType string    `json:"message_type"`
	FileURL     *string   `json:"file_url,omitempty"`
	IsAI        bool      `json:"is_ai"`
	CreatedAt   time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
	Text      string    `json:"text" validate:"required"`
}

// SendImageMessageRequest accompanies the multipart file field "image".
type SendImageMessageRequest struct {
	SessionId uuid.UUID `json:"session_id" form:"session_id" validate:"required"`
	Caption   string    `json:"caption" form:"caption"`
}

type SendMessageResponse struct {
	SessionId uuid.UUID        `json:"session_id"`
	Title     string           `json:"title"`
	Sent      *MessageResponse `json:"sent"`
	Reply     *MessageResponse `json:"reply"`
}

type RenameSessionRequest struct {
	Title string `json:"title" validate:"required,min=1,max=120"`
}
