package unitofwork

import (
	"context"

	"chatx-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	SubscriptionRepository() contract.SubscriptionRepository
	DailyChatCreationRepository() contract.DailyChatCreationRepository
}
