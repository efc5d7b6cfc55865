package mapper

import (
	"time"

	"chatx-be/internal/entity"
	"chatx-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:             s.Id,
		UserId:         s.UserId,
		Title:          s.Title,
		IsDefaultTitle: s.IsDefaultTitle,
		QuestionsCount: s.QuestionsCount,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:             s.Id,
		UserId:         s.UserId,
		Title:          s.Title,
		IsDefaultTitle: s.IsDefaultTitle,
		QuestionsCount: s.QuestionsCount,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:          msg.Id,
		SessionId:   msg.SessionId,
		UserId:      msg.UserId,
		Text:        msg.Text,
		MessageType: entity.MessageType(msg.MessageType),
		FileURL:     msg.FileURL,
		IsAI:        msg.IsAI,
		CreatedAt:   msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	return &model.ChatMessage{
		Id:          msg.Id,
		SessionId:   msg.SessionId,
		UserId:      msg.UserId,
		Text:        msg.Text,
		MessageType: string(msg.MessageType),
		FileURL:     msg.FileURL,
		IsAI:        msg.IsAI,
		CreatedAt:   msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessagesToEntities(msgs []*model.ChatMessage) []*entity.ChatMessage {
	out := make([]*entity.ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, m.ChatMessageToEntity(msg))
	}
	return out
}

func (m *ChatMapper) ChatSessionsToEntities(sessions []*model.ChatSession) []*entity.ChatSession {
	out := make([]*entity.ChatSession, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, m.ChatSessionToEntity(s))
	}
	return out
}
