package service

import (
	"context"
	"errors"

	"chatx-be/internal/dto"
	"chatx-be/internal/plan"
	"chatx-be/internal/quota"
	"chatx-be/internal/repository/specification"
	"chatx-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IPlanService interface {
	// Public, backs the pricing modal.
	GetPlans(ctx context.Context) ([]*dto.PlanResponse, error)

	// Per-user usage snapshot. Question counters are included only when a
	// session id is supplied.
	GetUsageStatus(ctx context.Context, userId uuid.UUID, sessionId *uuid.UUID) (*dto.UsageStatusResponse, error)
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
	ledger     *quota.Ledger
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory, ledger *quota.Ledger) IPlanService {
	return &planService{
		uowFactory: uowFactory,
		ledger:     ledger,
	}
}

func (s *planService) GetPlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	var res []*dto.PlanResponse
	for _, p := range plan.Purchasable() {
		res = append(res, &dto.PlanResponse{
			Name:        p.Name,
			DisplayName: p.DisplayName,
			Price:       p.Price,
			Features:    p.Features,
			Limits: dto.PlanLimitsDTO{
				QuestionsPerSession: limitToWire(p.QuestionsPerSession),
				SessionsPerDay:      limitToWire(p.SessionsPerDay),
			},
		})
	}
	return res, nil
}

func (s *planService) GetUsageStatus(ctx context.Context, userId uuid.UUID, sessionId *uuid.UUID) (*dto.UsageStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	p, err := s.ledger.ResolvePlan(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	creation, err := s.ledger.ValidateChatCreation(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	resetsAt := creation.ResetsAt
	res := &dto.UsageStatusResponse{
		Plan: dto.PlanInfo{
			Name:        p.Name,
			DisplayName: p.DisplayName,
		},
		SessionsToday: dto.UsageLimit{
			Used:     creation.Used,
			Limit:    limitToWire(creation.Limit),
			CanUse:   creation.CanCreate,
			ResetsAt: &resetsAt,
		},
		UpgradeAvailable: p.Name != plan.NameProPlus && p.Name != plan.NameCustom,
	}

	if sessionId != nil {
		session, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: *sessionId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, errors.New("session not found")
		}

		check, err := s.ledger.ValidateMessageLimit(ctx, uow, session, userId)
		if err != nil {
			return nil, err
		}
		res.Questions = &dto.UsageLimit{
			Used:   check.Used,
			Limit:  limitToWire(check.Limit),
			CanUse: check.CanSend,
		}
	}

	return res, nil
}

// limitToWire renders a limit for JSON, -1 meaning unlimited.
func limitToWire(l plan.Limit) int {
	if l.IsUnlimited() {
		return -1
	}
	return l.Value()
}
