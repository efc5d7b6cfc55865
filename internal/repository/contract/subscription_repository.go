package contract

import (
	"context"

	"chatx-be/internal/entity"
	"chatx-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, record *entity.SubscriptionRecord) error
	Update(ctx context.Context, record *entity.SubscriptionRecord) error
	// DeactivateAllByUserId clears the active flag on every record of the
	// user, keeping the at-most-one-active invariant before a new record
	// is activated.
	DeactivateAllByUserId(ctx context.Context, userId uuid.UUID) error
	DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionRecord, error)
}
