package quota

import (
	"context"
	"fmt"
	"time"

	"chatx-be/internal/entity"
	"chatx-be/internal/plan"
	"chatx-be/internal/repository/specification"
	"chatx-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// CreationCheck is the side-effect-free result of a daily session quota
// lookup. ResetsAt is the next UTC midnight, when the counter goes stale.
type CreationCheck struct {
	CanCreate bool
	Used      int
	Limit     plan.Limit
	ResetsAt  time.Time
}

// MessageCheck is the result of a per-session question quota lookup.
type MessageCheck struct {
	CanSend  bool
	Used     int
	Limit    plan.Limit
	PlanName string
}

// Ledger gates session creation and message sending against the plan
// catalog. Validation never writes; increments are single atomic
// statements issued through the repositories.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// ResolvePlan returns the user's effective plan: the newest active
// subscription record, lazily created as FREE when the user has none.
func (l *Ledger) ResolvePlan(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (plan.Plan, error) {
	record, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return plan.Plan{}, err
	}
	if record == nil {
		record = &entity.SubscriptionRecord{
			UserId:        userId,
			PlanName:      plan.NameFree,
			Active:        true,
			PaymentStatus: entity.PaymentStatusPaid,
		}
		if err := uow.SubscriptionRepository().Create(ctx, record); err != nil {
			return plan.Plan{}, fmt.Errorf("create default subscription: %w", err)
		}
	}
	return plan.ByName(record.PlanName), nil
}

func (l *Ledger) ValidateChatCreation(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*CreationCheck, error) {
	p, err := l.ResolvePlan(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	today := Today()
	counter, err := uow.DailyChatCreationRepository().FindByUserAndDate(ctx, userId, today)
	if err != nil {
		return nil, err
	}

	used := 0
	if counter != nil {
		used = counter.Count
	}

	return &CreationCheck{
		CanCreate: !p.SessionsPerDay.Reached(used),
		Used:      used,
		Limit:     p.SessionsPerDay,
		ResetsAt:  today.AddDate(0, 0, 1),
	}, nil
}

// IncrementDailyChatCount must only be called after a successful session
// create. The upsert is atomic per (user, date).
func (l *Ledger) IncrementDailyChatCount(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	return uow.DailyChatCreationRepository().Increment(ctx, userId, Today())
}

// ValidateMessageLimit reads the question count persisted on the session;
// the store value is the source of truth, not any client-side mirror.
func (l *Ledger) ValidateMessageLimit(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, userId uuid.UUID) (*MessageCheck, error) {
	p, err := l.ResolvePlan(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	return &MessageCheck{
		CanSend:  !p.QuestionsPerSession.Reached(session.QuestionsCount),
		Used:     session.QuestionsCount,
		Limit:    p.QuestionsPerSession,
		PlanName: p.Name,
	}, nil
}

// Today returns the current UTC calendar date with the time part zeroed,
// matching the date column on daily_chat_creation.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
