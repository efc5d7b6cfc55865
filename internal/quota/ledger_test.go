package quota

import (
	"context"
	"testing"
	"time"

	"chatx-be/internal/entity"
	"chatx-be/internal/plan"
	"chatx-be/internal/repository/contract"
	"chatx-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriptionRepo struct {
	contract.SubscriptionRepository
	record  *entity.SubscriptionRecord
	created []*entity.SubscriptionRecord
}

func (f *fakeSubscriptionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionRecord, error) {
	return f.record, nil
}

func (f *fakeSubscriptionRepo) Create(ctx context.Context, record *entity.SubscriptionRecord) error {
	record.Id = uuid.New()
	f.created = append(f.created, record)
	f.record = record
	return nil
}

type fakeDailyRepo struct {
	contract.DailyChatCreationRepository
	counts     map[uuid.UUID]int
	increments int
}

func (f *fakeDailyRepo) FindByUserAndDate(ctx context.Context, userId uuid.UUID, date time.Time) (*entity.DailyChatCreation, error) {
	count, ok := f.counts[userId]
	if !ok {
		return nil, nil
	}
	return &entity.DailyChatCreation{UserId: userId, Date: date, Count: count}, nil
}

func (f *fakeDailyRepo) Increment(ctx context.Context, userId uuid.UUID, date time.Time) error {
	if f.counts == nil {
		f.counts = map[uuid.UUID]int{}
	}
	f.counts[userId]++
	f.increments++
	return nil
}

type fakeUow struct {
	subs  *fakeSubscriptionRepo
	daily *fakeDailyRepo
}

func (f *fakeUow) Begin(ctx context.Context) error { return nil }
func (f *fakeUow) Commit() error                   { return nil }
func (f *fakeUow) Rollback() error                 { return nil }
func (f *fakeUow) UserRepository() contract.UserRepository {
	return nil
}
func (f *fakeUow) ChatSessionRepository() contract.ChatSessionRepository {
	return nil
}
func (f *fakeUow) ChatMessageRepository() contract.ChatMessageRepository {
	return nil
}
func (f *fakeUow) SubscriptionRepository() contract.SubscriptionRepository {
	return f.subs
}
func (f *fakeUow) DailyChatCreationRepository() contract.DailyChatCreationRepository {
	return f.daily
}

func newFakeUow(record *entity.SubscriptionRecord) *fakeUow {
	return &fakeUow{
		subs:  &fakeSubscriptionRepo{record: record},
		daily: &fakeDailyRepo{counts: map[uuid.UUID]int{}},
	}
}

func TestResolvePlanLazilyCreatesFreeRecord(t *testing.T) {
	uow := newFakeUow(nil)
	ledger := NewLedger()
	userId := uuid.New()

	p, err := ledger.ResolvePlan(context.Background(), uow, userId)
	require.NoError(t, err)
	assert.Equal(t, plan.NameFree, p.Name)

	require.Len(t, uow.subs.created, 1)
	assert.Equal(t, userId, uow.subs.created[0].UserId)
	assert.True(t, uow.subs.created[0].Active)

	// Second lookup reuses the record, no duplicate.
	_, err = ledger.ResolvePlan(context.Background(), uow, userId)
	require.NoError(t, err)
	assert.Len(t, uow.subs.created, 1)
}

func TestResolvePlanUnknownNameFallsBackToFree(t *testing.T) {
	uow := newFakeUow(&entity.SubscriptionRecord{PlanName: "LEGACY_GOLD", Active: true})
	p, err := NewLedger().ResolvePlan(context.Background(), uow, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, plan.NameFree, p.Name)
}

func TestValidateChatCreationUnderAndAtLimit(t *testing.T) {
	userId := uuid.New()
	uow := newFakeUow(&entity.SubscriptionRecord{PlanName: plan.NameFree, Active: true})
	ledger := NewLedger()

	check, err := ledger.ValidateChatCreation(context.Background(), uow, userId)
	require.NoError(t, err)
	assert.True(t, check.CanCreate)
	assert.Equal(t, 0, check.Used)

	// Fill the FREE daily allowance.
	limit := plan.ByName(plan.NameFree).SessionsPerDay.Value()
	for i := 0; i < limit; i++ {
		require.NoError(t, ledger.IncrementDailyChatCount(context.Background(), uow, userId))
	}

	check, err = ledger.ValidateChatCreation(context.Background(), uow, userId)
	require.NoError(t, err)
	assert.False(t, check.CanCreate)
	assert.Equal(t, limit, check.Used)
	assert.Equal(t, limit, check.Limit.Value())
}

func TestValidateChatCreationUnlimitedPlan(t *testing.T) {
	userId := uuid.New()
	uow := newFakeUow(&entity.SubscriptionRecord{PlanName: plan.NameProPlus, Active: true})
	uow.daily.counts[userId] = 100000

	check, err := NewLedger().ValidateChatCreation(context.Background(), uow, userId)
	require.NoError(t, err)
	assert.True(t, check.CanCreate)
	assert.True(t, check.Limit.IsUnlimited())
}

func TestValidateMessageLimitReadsSessionCount(t *testing.T) {
	uow := newFakeUow(&entity.SubscriptionRecord{PlanName: plan.NameFree, Active: true})
	ledger := NewLedger()
	limit := plan.ByName(plan.NameFree).QuestionsPerSession.Value()

	session := &entity.ChatSession{Id: uuid.New(), QuestionsCount: limit - 1}
	check, err := ledger.ValidateMessageLimit(context.Background(), uow, session, uuid.New())
	require.NoError(t, err)
	assert.True(t, check.CanSend)

	session.QuestionsCount = limit
	check, err = ledger.ValidateMessageLimit(context.Background(), uow, session, uuid.New())
	require.NoError(t, err)
	assert.False(t, check.CanSend)
	assert.Equal(t, limit, check.Used)
	assert.Equal(t, plan.NameFree, check.PlanName)
}

func TestTodayIsUTCMidnight(t *testing.T) {
	today := Today()
	assert.Equal(t, 0, today.Hour())
	assert.Equal(t, 0, today.Minute())
	assert.Equal(t, time.UTC, today.Location())
}
