package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"chatx-be/internal/constant"
	"chatx-be/internal/dto"
	"chatx-be/internal/entity"
	"chatx-be/internal/pkg/logger"
	"chatx-be/internal/quota"
	"chatx-be/internal/repository/specification"
	"chatx-be/internal/repository/unitofwork"
	"chatx-be/internal/websocket"
	"chatx-be/pkg/bucket"
	"chatx-be/pkg/llm"
	"chatx-be/pkg/llm/stream"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// TopicTitleGenerate is the in-process topic for async title jobs.
const TopicTitleGenerate = "chat.title.generate"

// TitleJob is the payload published per session that still carries the
// default title after its first exchange.
type TitleJob struct {
	SessionId    uuid.UUID `json:"session_id"`
	UserId       uuid.UUID `json:"user_id"`
	FirstMessage string    `json:"first_message"`
}

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.MessageResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	SendImageMessage(ctx context.Context, userId uuid.UUID, req *dto.SendImageMessageRequest, file *multipart.FileHeader) (*dto.SendMessageResponse, error)
	StopGeneration(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	RenameSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.RenameSessionRequest) error
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	ledger         *quota.Ledger
	llmProvider    llm.LLMProvider
	hub            *websocket.Hub
	bucketService  bucket.BucketService
	titlePublisher message.Publisher
	logger         logger.ILogger

	// In-flight generations keyed by session id. StopGeneration cancels
	// through here; entries expire on their own if a stream dies without
	// cleanup.
	inflight *cache.Cache

	streamTimeout time.Duration
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	ledger *quota.Ledger,
	llmProvider llm.LLMProvider,
	hub *websocket.Hub,
	bucketService bucket.BucketService,
	titlePublisher message.Publisher,
	log logger.ILogger,
	streamTimeout time.Duration,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		ledger:         ledger,
		llmProvider:    llmProvider,
		hub:            hub,
		bucketService:  bucketService,
		titlePublisher: titlePublisher,
		logger:         log,
		inflight:       cache.New(10*time.Minute, 15*time.Minute),
		streamTimeout:  streamTimeout,
	}
}

// CreateSession opens a session under the daily quota. A rejected
// request writes nothing, not even the counter.
func (cs *chatService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	check, err := cs.ledger.ValidateChatCreation(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	if !check.CanCreate {
		return nil, &dto.LimitExceededError{
			LimitType:  dto.LimitTypeSessionsPerDay,
			Limit:      check.Limit.Value(),
			Used:       check.Used,
			ResetAfter: check.ResetsAt,
		}
	}

	now := time.Now()
	session := &entity.ChatSession{
		Id:             uuid.New(),
		UserId:         userId,
		Title:          constant.DefaultSessionTitle,
		IsDefaultTitle: true,
		QuestionsCount: 0,
		CreatedAt:      now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	if err := cs.ledger.IncrementDailyChatCount(ctx, uow, userId); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{
		Id:             session.Id,
		Title:          session.Title,
		IsDefaultTitle: session.IsDefaultTitle,
		CreatedAt:      session.CreatedAt,
	}, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.SessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, &dto.SessionResponse{
			Id:             s.Id,
			Title:          s.Title,
			IsDefaultTitle: s.IsDefaultTitle,
			QuestionsCount: s.QuestionsCount,
			CreatedAt:      s.CreatedAt,
			UpdatedAt:      s.UpdatedAt,
		})
	}
	return res, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.MessageResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, &dto.MessageResponse{
			Id:          m.Id,
			Text:        m.Text,
			MessageType: string(m.MessageType),
			FileURL:     m.FileURL,
			IsAI:        m.IsAI,
			CreatedAt:   m.CreatedAt,
		})
	}
	return res, nil
}

func (cs *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	return cs.send(ctx, userId, req.SessionId, req.Text, req.Text, entity.MessageTypeText, nil)
}

// SendImageMessage uploads the image before any row is written; an
// upload failure leaves the session untouched.
func (cs *chatService) SendImageMessage(ctx context.Context, userId uuid.UUID, req *dto.SendImageMessageRequest, file *multipart.FileHeader) (*dto.SendMessageResponse, error) {
	if file == nil {
		return nil, errors.New("image file is required")
	}
	if file.Size > 10*1024*1024 {
		return nil, errors.New("image too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	key := fmt.Sprintf("chat/%s/%s%s", req.SessionId, uuid.New().String(), ext)
	contentType := file.Header.Get("Content-Type")

	if err := cs.bucketService.UploadFile(ctx, key, contentType, src); err != nil {
		return nil, fmt.Errorf("image upload failed: %w", err)
	}
	fileURL := cs.bucketService.GetPublicURL(key)

	// The stored message keeps the raw caption, empty included; only the
	// model sees the placeholder prompt.
	prompt := req.Caption
	if prompt == "" {
		prompt = constant.ImageFallbackPrompt
	}

	return cs.send(ctx, userId, req.SessionId, req.Caption, prompt, entity.MessageTypeImage, &fileURL)
}

// send runs the full exchange: quota gate, user message persist, model
// stream, then the AI message and the question counter in one commit.
// text is what gets stored; prompt is the user turn the model sees. They
// differ only for caption-less image messages.
func (cs *chatService) send(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, text string, prompt string, msgType entity.MessageType, fileURL *string) (*dto.SendMessageResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := cs.verifySession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	check, err := cs.ledger.ValidateMessageLimit(ctx, uow, session, userId)
	if err != nil {
		return nil, err
	}
	if !check.CanSend {
		return nil, &dto.LimitExceededError{
			LimitType:  dto.LimitTypeQuestionsPerSession,
			Limit:      check.Limit.Value(),
			Used:       check.Used,
			ResetAfter: quota.Today().AddDate(0, 0, 1),
		}
	}

	history, err := cs.loadHistory(ctx, uow, sessionId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userMessage := &entity.ChatMessage{
		Id:          uuid.New(),
		SessionId:   sessionId,
		UserId:      userId,
		Text:        text,
		MessageType: msgType,
		FileURL:     fileURL,
		IsAI:        false,
		CreatedAt:   now,
	}

	// The user message is committed on its own so it survives a failed
	// generation.
	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, err
	}

	history = append(history, llm.Message{Role: constant.ChatRoleUser, Content: prompt})

	genCtx, cancel := context.WithCancel(ctx)
	cs.inflight.Set(sessionId.String(), cancel, cache.DefaultExpiration)
	defer func() {
		cancel()
		cs.inflight.Delete(sessionId.String())
	}()

	reply, err := stream.Collect(genCtx, cs.streamTimeout,
		func(accumulated string) {
			cs.hub.Send(userId, websocket.Frame{
				Type: websocket.FrameChatFragment,
				Data: websocket.ChatFragmentData{SessionId: sessionId, Text: accumulated},
			})
		},
		func(streamCtx context.Context, onFragment func(string)) error {
			return cs.llmProvider.ChatStream(streamCtx, history, llm.FragmentHandler(onFragment))
		},
	)
	if err != nil {
		reason := "generation failed"
		switch {
		case errors.Is(err, stream.ErrTimeout):
			reason = "generation timed out"
		case errors.Is(err, stream.ErrCanceled):
			reason = "generation stopped"
		}
		cs.hub.Send(userId, websocket.Frame{
			Type: websocket.FrameChatError,
			Data: websocket.ChatErrorData{SessionId: sessionId, Reason: reason},
		})
		cs.logger.Warn("Chat", "Stream aborted", map[string]interface{}{
			"session_id": sessionId,
			"error":      err,
		})
		return nil, err
	}

	aiMessage := &entity.ChatMessage{
		Id:          uuid.New(),
		SessionId:   sessionId,
		UserId:      userId,
		Text:        reply,
		MessageType: entity.MessageTypeText,
		IsAI:        true,
		CreatedAt:   time.Now(),
	}

	// AI message and counter move together or not at all.
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, aiMessage); err != nil {
		return nil, err
	}
	if err := uow.ChatSessionRepository().IncrementQuestionsCount(ctx, sessionId); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.hub.Send(userId, websocket.Frame{
		Type: websocket.FrameChatComplete,
		Data: websocket.ChatCompleteData{SessionId: sessionId, MessageId: aiMessage.Id, Text: reply},
	})

	if session.IsDefaultTitle {
		cs.enqueueTitleJob(sessionId, userId, prompt)
	}

	return &dto.SendMessageResponse{
		SessionId: sessionId,
		Title:     session.Title,
		Sent: &dto.MessageResponse{
			Id:          userMessage.Id,
			Text:        userMessage.Text,
			MessageType: string(userMessage.MessageType),
			FileURL:     userMessage.FileURL,
			IsAI:        false,
			CreatedAt:   userMessage.CreatedAt,
		},
		Reply: &dto.MessageResponse{
			Id:          aiMessage.Id,
			Text:        aiMessage.Text,
			MessageType: string(aiMessage.MessageType),
			IsAI:        true,
			CreatedAt:   aiMessage.CreatedAt,
		},
	}, nil
}

// StopGeneration cancels the in-flight stream for the session, if any.
// The partial reply is discarded, only the user message remains.
func (cs *chatService) StopGeneration(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if _, err := cs.verifySession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	v, ok := cs.inflight.Get(sessionId.String())
	if !ok {
		return errors.New("no generation in progress for this session")
	}
	if cancel, ok := v.(context.CancelFunc); ok {
		cancel()
	}
	cs.inflight.Delete(sessionId.String())
	return nil
}

func (cs *chatService) RenameSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.RenameSessionRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if _, err := cs.verifySession(ctx, uow, userId, sessionId); err != nil {
		return err
	}
	return uow.ChatSessionRepository().Rename(ctx, sessionId, req.Title)
}

// DeleteSession removes the session with its messages in one
// transaction; there is no partial delete.
func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if _, err := cs.verifySession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}

	return uow.Commit()
}

func (cs *chatService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New("session not found or access denied")
	}
	return session, nil
}

// loadHistory replays the newest ChatHistoryWindow messages in
// chronological order as provider-agnostic turns.
func (cs *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]llm.Message, error) {
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	if len(messages) > constant.ChatHistoryWindow {
		messages = messages[len(messages)-constant.ChatHistoryWindow:]
	}

	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		role := constant.ChatRoleUser
		if m.IsAI {
			role = constant.ChatRoleAssistant
		}
		content := m.Text
		if content == "" && m.MessageType == entity.MessageTypeImage {
			content = constant.ImageFallbackPrompt
		}
		history = append(history, llm.Message{Role: role, Content: content})
	}
	return history, nil
}

func (cs *chatService) enqueueTitleJob(sessionId, userId uuid.UUID, firstMessage string) {
	job := TitleJob{SessionId: sessionId, UserId: userId, FirstMessage: firstMessage}
	payload, err := json.Marshal(job)
	if err != nil {
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := cs.titlePublisher.Publish(TopicTitleGenerate, msg); err != nil {
		cs.logger.Warn("Chat", "Title job publish failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err,
		})
	}
}
