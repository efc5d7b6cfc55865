package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"chatx-be/internal/pkg/logger"
	"chatx-be/internal/repository/specification"
	"chatx-be/internal/repository/unitofwork"
	"chatx-be/internal/websocket"
	"chatx-be/pkg/llm"

	"chatx-be/internal/constant"

	"github.com/ThreeDotsLabs/watermill/message"
)

// TitleService consumes title jobs and renames sessions off the request
// path. Failures are logged and dropped; the session simply keeps its
// default title.
type TitleService struct {
	subscriber  message.Subscriber
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.LLMProvider
	hub         *websocket.Hub
	logger      logger.ILogger

	// Optional cheaper model for titles. Empty means the provider default.
	titleModel string
}

func NewTitleService(
	subscriber message.Subscriber,
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	hub *websocket.Hub,
	log logger.ILogger,
	titleModel string,
) *TitleService {
	return &TitleService{
		subscriber:  subscriber,
		uowFactory:  uowFactory,
		llmProvider: llmProvider,
		hub:         hub,
		logger:      log,
		titleModel:  titleModel,
	}
}

// Run blocks consuming title jobs until ctx is done.
func (s *TitleService) Run(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, TopicTitleGenerate)
	if err != nil {
		return err
	}

	for msg := range messages {
		s.handle(ctx, msg)
		msg.Ack()
	}
	return nil
}

func (s *TitleService) handle(ctx context.Context, msg *message.Message) {
	var job TitleJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		s.logger.Warn("Title", "Bad job payload", map[string]interface{}{"error": err})
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: job.SessionId})
	if err != nil || session == nil {
		return
	}
	// A manual rename or an earlier job already cleared the flag.
	if !session.IsDefaultTitle {
		return
	}

	prompt := fmt.Sprintf(constant.TitleGenerationPrompt, job.FirstMessage)
	opts := []llm.Option{llm.WithTemperature(0.3), llm.WithMaxTokens(32)}
	if s.titleModel != "" {
		opts = append(opts, llm.WithModel(s.titleModel))
	}
	title, err := s.llmProvider.Generate(ctx, prompt, opts...)
	if err != nil {
		s.logger.Warn("Title", "Generation failed", map[string]interface{}{
			"session_id": job.SessionId,
			"error":      err,
		})
		return
	}

	title = sanitizeTitle(title)
	if title == "" {
		return
	}

	if err := uow.ChatSessionRepository().Rename(ctx, job.SessionId, title); err != nil {
		s.logger.Warn("Title", "Rename failed", map[string]interface{}{
			"session_id": job.SessionId,
			"error":      err,
		})
		return
	}

	s.hub.Send(job.UserId, websocket.Frame{
		Type: websocket.FrameTitleUpdated,
		Data: websocket.TitleUpdatedData{SessionId: job.SessionId, Title: title},
	})
}

func sanitizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, `"'`)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)
	if len(title) > 120 {
		title = strings.TrimSpace(title[:120])
	}
	return title
}
