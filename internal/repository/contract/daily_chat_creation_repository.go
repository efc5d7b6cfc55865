package contract

import (
	"context"
	"time"

	"chatx-be/internal/entity"

	"github.com/google/uuid"
)

type DailyChatCreationRepository interface {
	// FindByUserAndDate returns nil, nil when the user has no counter row
	// for the date yet.
	FindByUserAndDate(ctx context.Context, userId uuid.UUID, date time.Time) (*entity.DailyChatCreation, error)
	// Increment upserts the (user, date) row with count+1 in a single
	// statement. Concurrent calls for the same key never lose an increment.
	Increment(ctx context.Context, userId uuid.UUID, date time.Time) error
	DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error
}
