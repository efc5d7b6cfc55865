package implementation

import (
	"context"
	"errors"
	"time"

	"chatx-be/internal/entity"
	"chatx-be/internal/mapper"
	"chatx-be/internal/model"
	"chatx-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailyChatCreationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewDailyChatCreationRepository(db *gorm.DB) contract.DailyChatCreationRepository {
	return &DailyChatCreationRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *DailyChatCreationRepositoryImpl) FindByUserAndDate(ctx context.Context, userId uuid.UUID, date time.Time) (*entity.DailyChatCreation, error) {
	var m model.DailyChatCreation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userId, date.Format("2006-01-02")).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.DailyChatCreationToEntity(&m), nil
}

// Increment relies on the (user_id, date) unique index: INSERT ... ON
// CONFLICT DO UPDATE count = count + 1 is a single statement, so two
// devices creating sessions at the same instant both land in the count.
func (r *DailyChatCreationRepositoryImpl) Increment(ctx context.Context, userId uuid.UUID, date time.Time) error {
	row := model.DailyChatCreation{
		UserId: userId,
		Date:   datatypes.Date(date),
		Count:  1,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      gorm.Expr("daily_chat_creation.count + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&row).Error
}

func (r *DailyChatCreationRepositoryImpl) DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.DailyChatCreation{}).Error
}
