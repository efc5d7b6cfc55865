package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"chatx-be/internal/entity"
	"chatx-be/internal/repository/specification"
	"chatx-be/internal/repository/unitofwork"
	"chatx-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.SubscriptionRepository())

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Transactional Session With Messages", func(t *testing.T) {
		ctx := context.Background()

		userId := uuid.New()
		user := &entity.User{
			Id:       userId,
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Integration Test User",
			Role:     "user",
			Status:   "active",
		}
		err := uow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)

		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		sessionId := uuid.New()
		session := &entity.ChatSession{
			Id:             sessionId,
			UserId:         userId,
			Title:          "New chat",
			IsDefaultTitle: true,
			CreatedAt:      time.Now(),
		}
		err = uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		msg := &entity.ChatMessage{
			Id:          uuid.New(),
			SessionId:   sessionId,
			UserId:      userId,
			Text:        "hello",
			MessageType: entity.MessageTypeText,
			CreatedAt:   time.Now(),
		}
		err = uow.ChatMessageRepository().Create(ctx, msg)
		assert.NoError(t, err)

		err = uow.ChatSessionRepository().IncrementQuestionsCount(ctx, sessionId)
		assert.NoError(t, err)

		found, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: sessionId},
			specification.UserOwnedBy{UserID: userId},
		)
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, 1, found.QuestionsCount)
		}

		// Rollback in defer leaves no rows behind.
	})

	t.Run("Daily Counter Upsert", func(t *testing.T) {
		ctx := context.Background()

		userId := uuid.New()
		user := &entity.User{
			Id:       userId,
			Email:    "test-counter-" + uuid.New().String() + "@example.com",
			FullName: "Counter Test User",
			Role:     "user",
			Status:   "active",
		}
		err := uow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)

		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
		err = uow.DailyChatCreationRepository().Increment(ctx, userId, day)
		assert.NoError(t, err)
		err = uow.DailyChatCreationRepository().Increment(ctx, userId, day)
		assert.NoError(t, err)

		counter, err := uow.DailyChatCreationRepository().FindByUserAndDate(ctx, userId, day)
		assert.NoError(t, err)
		if assert.NotNil(t, counter) {
			assert.Equal(t, 2, counter.Count)
		}
	})
}
