package mapper

import (
	"time"

	"chatx-be/internal/entity"
	"chatx-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) SubscriptionToEntity(s *model.UserSubscription) *entity.SubscriptionRecord {
	if s == nil {
		return nil
	}
	return &entity.SubscriptionRecord{
		Id:                    s.Id,
		UserId:                s.UserId,
		PlanName:              s.PlanName,
		Active:                s.Active,
		PaymentStatus:         entity.PaymentStatus(s.PaymentStatus),
		MidtransTransactionId: s.MidtransTransactionId,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) SubscriptionToModel(s *entity.SubscriptionRecord) *model.UserSubscription {
	if s == nil {
		return nil
	}
	return &model.UserSubscription{
		Id:                    s.Id,
		UserId:                s.UserId,
		PlanName:              s.PlanName,
		Active:                s.Active,
		PaymentStatus:         string(s.PaymentStatus),
		MidtransTransactionId: s.MidtransTransactionId,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) DailyChatCreationToEntity(d *model.DailyChatCreation) *entity.DailyChatCreation {
	if d == nil {
		return nil
	}
	return &entity.DailyChatCreation{
		Id:        d.Id,
		UserId:    d.UserId,
		Date:      time.Time(d.Date),
		Count:     d.Count,
		UpdatedAt: d.UpdatedAt,
	}
}

func (m *SubscriptionMapper) DailyChatCreationToModel(d *entity.DailyChatCreation) *model.DailyChatCreation {
	if d == nil {
		return nil
	}
	return &model.DailyChatCreation{
		Id:        d.Id,
		UserId:    d.UserId,
		Date:      datatypes.Date(d.Date),
		Count:     d.Count,
		UpdatedAt: d.UpdatedAt,
	}
}
