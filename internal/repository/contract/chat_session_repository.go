package contract

import (
	"context"

	"chatx-be/internal/entity"
	"chatx-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error
	// Rename sets the title and clears the default-title flag in one statement.
	Rename(ctx context.Context, id uuid.UUID, title string) error
	// IncrementQuestionsCount bumps questions_count atomically in the store,
	// never read-then-write.
	IncrementQuestionsCount(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
