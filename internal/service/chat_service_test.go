package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"chatx-be/internal/constant"
	"chatx-be/internal/dto"
	"chatx-be/internal/entity"
	"chatx-be/internal/plan"
	"chatx-be/internal/quota"
	"chatx-be/internal/repository/contract"
	"chatx-be/internal/repository/specification"
	"chatx-be/internal/repository/unitofwork"
	"chatx-be/internal/websocket"
	"chatx-be/pkg/llm"
	"chatx-be/pkg/llm/stream"

	wmsg "github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatStore backs the fake repositories with one shared state so that
// transactional behavior is observable: writes issued between Begin and
// Commit are buffered and only applied on Commit.
type chatStore struct {
	mu sync.Mutex

	sessions   map[uuid.UUID]*entity.ChatSession
	messages   []*entity.ChatMessage
	subRecord  *entity.SubscriptionRecord
	dailyCount int

	inTx      bool
	pending   []func()
	commits   int
	rollbacks int

	subUpdates       int
	subDeactivations int

	failSessionDelete bool
}

func newChatStore() *chatStore {
	return &chatStore{
		sessions: map[uuid.UUID]*entity.ChatSession{},
		subRecord: &entity.SubscriptionRecord{
			PlanName:      plan.NameFree,
			Active:        true,
			PaymentStatus: entity.PaymentStatusPaid,
		},
	}
}

func (s *chatStore) write(op func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inTx {
		s.pending = append(s.pending, op)
		return
	}
	op()
}

func (s *chatStore) seedSession(userId uuid.UUID, questions int, defaultTitle bool) *entity.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &entity.ChatSession{
		Id:             uuid.New(),
		UserId:         userId,
		Title:          constant.DefaultSessionTitle,
		IsDefaultTitle: defaultTitle,
		QuestionsCount: questions,
		CreatedAt:      time.Now(),
	}
	if !defaultTitle {
		sess.Title = "Renamed already"
	}
	s.sessions[sess.Id] = sess
	return sess
}

func (s *chatStore) messagesFor(sessionId uuid.UUID) []*entity.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.ChatMessage
	for _, m := range s.messages {
		if m.SessionId == sessionId {
			out = append(out, m)
		}
	}
	return out
}

type fakeUow struct {
	store *chatStore
}

func (u *fakeUow) Begin(ctx context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.inTx = true
	return nil
}

func (u *fakeUow) Commit() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for _, op := range u.store.pending {
		op()
	}
	u.store.pending = nil
	u.store.inTx = false
	u.store.commits++
	return nil
}

func (u *fakeUow) Rollback() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if !u.store.inTx {
		return nil
	}
	u.store.pending = nil
	u.store.inTx = false
	u.store.rollbacks++
	return nil
}

func (u *fakeUow) UserRepository() contract.UserRepository { return nil }
func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeSessionRepo{store: u.store}
}
func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeMessageRepo{store: u.store}
}
func (u *fakeUow) SubscriptionRepository() contract.SubscriptionRepository {
	return &fakeSubRepo{store: u.store}
}
func (u *fakeUow) DailyChatCreationRepository() contract.DailyChatCreationRepository {
	return &fakeDailyRepo{store: u.store}
}

type fakeFactory struct {
	store *chatStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeSessionRepo struct {
	contract.ChatSessionRepository
	store *chatStore
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	c := *session
	r.store.write(func() { r.store.sessions[c.Id] = &c })
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var id, owner uuid.UUID
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			id = v.ID
		case specification.UserOwnedBy:
			owner = v.UserID
		}
	}
	sess, ok := r.store.sessions[id]
	if !ok {
		return nil, nil
	}
	if owner != uuid.Nil && sess.UserId != owner {
		return nil, nil
	}
	c := *sess
	return &c, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var owner uuid.UUID
	for _, s := range specs {
		if v, ok := s.(specification.UserOwnedBy); ok {
			owner = v.UserID
		}
	}
	var out []*entity.ChatSession
	for _, sess := range r.store.sessions {
		if owner == uuid.Nil || sess.UserId == owner {
			c := *sess
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) IncrementQuestionsCount(ctx context.Context, id uuid.UUID) error {
	r.store.write(func() {
		if sess, ok := r.store.sessions[id]; ok {
			sess.QuestionsCount++
		}
	})
	return nil
}

func (r *fakeSessionRepo) Rename(ctx context.Context, id uuid.UUID, title string) error {
	r.store.write(func() {
		if sess, ok := r.store.sessions[id]; ok {
			sess.Title = title
			sess.IsDefaultTitle = false
		}
	})
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.store.failSessionDelete {
		return errors.New("session delete failed")
	}
	r.store.write(func() { delete(r.store.sessions, id) })
	return nil
}

type fakeMessageRepo struct {
	contract.ChatMessageRepository
	store *chatStore
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	c := *message
	r.store.write(func() { r.store.messages = append(r.store.messages, &c) })
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var sessionId uuid.UUID
	for _, s := range specs {
		if v, ok := s.(specification.BySessionID); ok {
			sessionId = v.SessionID
		}
	}
	var out []*entity.ChatMessage
	for _, m := range r.store.messages {
		if sessionId == uuid.Nil || m.SessionId == sessionId {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.write(func() {
		kept := r.store.messages[:0]
		for _, m := range r.store.messages {
			if m.SessionId != sessionId {
				kept = append(kept, m)
			}
		}
		r.store.messages = kept
	})
	return nil
}

type fakeSubRepo struct {
	contract.SubscriptionRepository
	store *chatStore
}

func (r *fakeSubRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.subRecord == nil {
		return nil, nil
	}
	for _, s := range specs {
		if _, ok := s.(specification.ActiveOnly); ok && !r.store.subRecord.Active {
			return nil, nil
		}
	}
	c := *r.store.subRecord
	return &c, nil
}

func (r *fakeSubRepo) Create(ctx context.Context, record *entity.SubscriptionRecord) error {
	c := *record
	r.store.write(func() { r.store.subRecord = &c })
	return nil
}

func (r *fakeSubRepo) Update(ctx context.Context, record *entity.SubscriptionRecord) error {
	c := *record
	r.store.write(func() {
		r.store.subRecord = &c
		r.store.subUpdates++
	})
	return nil
}

func (r *fakeSubRepo) DeactivateAllByUserId(ctx context.Context, userId uuid.UUID) error {
	r.store.write(func() {
		if r.store.subRecord != nil && r.store.subRecord.UserId == userId {
			r.store.subRecord.Active = false
		}
		r.store.subDeactivations++
	})
	return nil
}

type fakeDailyRepo struct {
	contract.DailyChatCreationRepository
	store *chatStore
}

func (r *fakeDailyRepo) FindByUserAndDate(ctx context.Context, userId uuid.UUID, date time.Time) (*entity.DailyChatCreation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.dailyCount == 0 {
		return nil, nil
	}
	return &entity.DailyChatCreation{UserId: userId, Date: date, Count: r.store.dailyCount}, nil
}

func (r *fakeDailyRepo) Increment(ctx context.Context, userId uuid.UUID, date time.Time) error {
	r.store.write(func() { r.store.dailyCount++ })
	return nil
}

// scriptedLLM replays a fixed fragment sequence, or blocks on the
// context to simulate a long generation.
type scriptedLLM struct {
	fragments   []string
	err         error
	block       bool
	started     chan struct{}
	lastHistory []llm.Message
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return strings.Join(s.fragments, ""), s.err
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return strings.Join(s.fragments, ""), s.err
}

func (s *scriptedLLM) ChatStream(ctx context.Context, history []llm.Message, onFragment llm.FragmentHandler, options ...llm.Option) error {
	s.lastHistory = history
	if s.started != nil {
		close(s.started)
	}
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	for _, fr := range s.fragments {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		onFragment(fr)
	}
	return s.err
}

type fakeTitlePublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
}

func (f *fakeTitlePublisher) Publish(topic string, messages ...*wmsg.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range messages {
		f.topics = append(f.topics, topic)
		f.payloads = append(f.payloads, m.Payload)
	}
	return nil
}

func (f *fakeTitlePublisher) Close() error { return nil }

func (f *fakeTitlePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.topics)
}

type fakeBucket struct {
	uploaded []string
}

func (f *fakeBucket) UploadFile(ctx context.Context, key string, contentType string, r io.Reader) error {
	f.uploaded = append(f.uploaded, key)
	return nil
}

func (f *fakeBucket) GetPublicURL(key string) string {
	return "https://storage.example.com/" + key
}

func (f *fakeBucket) Delete(ctx context.Context, key string) error { return nil }

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type chatFixture struct {
	store  *chatStore
	pub    *fakeTitlePublisher
	bucket *fakeBucket
	svc    IChatService
}

func newChatFixture(llmStub *scriptedLLM, timeout time.Duration) *chatFixture {
	store := newChatStore()
	pub := &fakeTitlePublisher{}
	bucket := &fakeBucket{}
	hub := websocket.NewHub(nil, noopLogger{})
	svc := NewChatService(
		&fakeFactory{store: store},
		quota.NewLedger(),
		llmStub,
		hub,
		bucket,
		pub,
		noopLogger{},
		timeout,
	)
	return &chatFixture{store: store, pub: pub, bucket: bucket, svc: svc}
}

func TestCreateSessionCommitsSessionAndCounterTogether(t *testing.T) {
	fx := newChatFixture(&scriptedLLM{}, 0)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId

	res, err := fx.svc.CreateSession(context.Background(), userId)
	require.NoError(t, err)

	assert.Equal(t, constant.DefaultSessionTitle, res.Title)
	assert.True(t, res.IsDefaultTitle)

	assert.Len(t, fx.store.sessions, 1)
	assert.Equal(t, 1, fx.store.dailyCount)
	assert.Equal(t, 1, fx.store.commits)
}

func TestCreateSessionRejectedWritesNothing(t *testing.T) {
	fx := newChatFixture(&scriptedLLM{}, 0)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId
	fx.store.dailyCount = plan.ByName(plan.NameFree).SessionsPerDay.Value()

	_, err := fx.svc.CreateSession(context.Background(), userId)

	var limitErr *dto.LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, dto.LimitTypeSessionsPerDay, limitErr.LimitType)
	assert.Equal(t, plan.ByName(plan.NameFree).SessionsPerDay.Value(), limitErr.Used)

	assert.Empty(t, fx.store.sessions)
	assert.Equal(t, plan.ByName(plan.NameFree).SessionsPerDay.Value(), fx.store.dailyCount)
	assert.Equal(t, 0, fx.store.commits)
}

func TestSendMessagePersistsExchangeAndEnqueuesTitleJob(t *testing.T) {
	fx := newChatFixture(&scriptedLLM{fragments: []string{"Hel", "lo"}}, 0)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId
	sess := fx.store.seedSession(userId, 0, true)

	res, err := fx.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		SessionId: sess.Id,
		Text:      "hi there",
	})
	require.NoError(t, err)

	assert.Equal(t, "hi there", res.Sent.Text)
	assert.Equal(t, "Hello", res.Reply.Text)
	assert.True(t, res.Reply.IsAI)

	messages := fx.store.messagesFor(sess.Id)
	require.Len(t, messages, 2)
	assert.False(t, messages[0].IsAI)
	assert.True(t, messages[1].IsAI)

	fx.store.mu.Lock()
	assert.Equal(t, 1, fx.store.sessions[sess.Id].QuestionsCount)
	fx.store.mu.Unlock()
	assert.Equal(t, 1, fx.store.commits)

	require.Equal(t, 1, fx.pub.count())
	assert.Equal(t, TopicTitleGenerate, fx.pub.topics[0])
	var job TitleJob
	require.NoError(t, json.Unmarshal(fx.pub.payloads[0], &job))
	assert.Equal(t, sess.Id, job.SessionId)
	assert.Equal(t, "hi there", job.FirstMessage)
}

func TestSendMessageSkipsTitleJobForRenamedSession(t *testing.T) {
	fx := newChatFixture(&scriptedLLM{fragments: []string{"ok"}}, 0)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId
	sess := fx.store.seedSession(userId, 0, false)

	_, err := fx.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		SessionId: sess.Id,
		Text:      "second question",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, fx.pub.count())
}

func TestSendMessageQuotaRejectedWritesNothing(t *testing.T) {
	fx := newChatFixture(&scriptedLLM{fragments: []string{"never"}}, 0)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId
	limit := plan.ByName(plan.NameFree).QuestionsPerSession.Value()
	sess := fx.store.seedSession(userId, limit, true)

	_, err := fx.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		SessionId: sess.Id,
		Text:      "one too many",
	})

	var limitErr *dto.LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, dto.LimitTypeQuestionsPerSession, limitErr.LimitType)
	assert.Empty(t, fx.store.messagesFor(sess.Id))
}

func TestSendMessageUserMessageSurvivesFailedStream(t *testing.T) {
	fx := newChatFixture(&scriptedLLM{
		fragments: []string{"partial "},
		err:       errors.New("upstream closed"),
	}, 0)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId
	sess := fx.store.seedSession(userId, 0, true)

	_, err := fx.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		SessionId: sess.Id,
		Text:      "will fail",
	})
	require.Error(t, err)

	messages := fx.store.messagesFor(sess.Id)
	require.Len(t, messages, 1)
	assert.False(t, messages[0].IsAI)
	assert.Equal(t, "will fail", messages[0].Text)

	fx.store.mu.Lock()
	assert.Equal(t, 0, fx.store.sessions[sess.Id].QuestionsCount)
	fx.store.mu.Unlock()
	assert.Equal(t, 0, fx.store.commits)
	assert.Equal(t, 0, fx.pub.count())
}

func TestSendMessageTimeoutDiscardsPartial(t *testing.T) {
	fx := newChatFixture(&scriptedLLM{block: true}, 50*time.Millisecond)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId
	sess := fx.store.seedSession(userId, 0, true)

	_, err := fx.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		SessionId: sess.Id,
		Text:      "slow one",
	})
	require.ErrorIs(t, err, stream.ErrTimeout)

	messages := fx.store.messagesFor(sess.Id)
	require.Len(t, messages, 1)
	assert.False(t, messages[0].IsAI)
}

func TestStopGenerationCancelsInflightStream(t *testing.T) {
	llmStub := &scriptedLLM{block: true, started: make(chan struct{})}
	fx := newChatFixture(llmStub, 0)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId
	sess := fx.store.seedSession(userId, 0, true)

	done := make(chan error, 1)
	go func() {
		_, err := fx.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
			SessionId: sess.Id,
			Text:      "stop me",
		})
		done <- err
	}()

	select {
	case <-llmStub.started:
	case <-time.After(2 * time.Second):
		t.Fatal("stream never started")
	}

	require.NoError(t, fx.svc.StopGeneration(context.Background(), userId, sess.Id))

	select {
	case err := <-done:
		require.ErrorIs(t, err, stream.ErrCanceled)
	case <-time.After(2 * time.Second):
		t.Fatal("send never returned after stop")
	}

	// The partial reply is gone, only the user turn remains.
	messages := fx.store.messagesFor(sess.Id)
	require.Len(t, messages, 1)
	assert.False(t, messages[0].IsAI)
}

func TestStopGenerationWithoutInflightStream(t *testing.T) {
	fx := newChatFixture(&scriptedLLM{}, 0)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId
	sess := fx.store.seedSession(userId, 0, true)

	err := fx.svc.StopGeneration(context.Background(), userId, sess.Id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no generation in progress")
}

func TestDeleteSessionRemovesMessagesAndSession(t *testing.T) {
	fx := newChatFixture(&scriptedLLM{fragments: []string{"reply"}}, 0)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId
	sess := fx.store.seedSession(userId, 0, true)

	_, err := fx.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		SessionId: sess.Id,
		Text:      "hello",
	})
	require.NoError(t, err)

	require.NoError(t, fx.svc.DeleteSession(context.Background(), userId, sess.Id))

	assert.Empty(t, fx.store.messagesFor(sess.Id))
	fx.store.mu.Lock()
	_, exists := fx.store.sessions[sess.Id]
	fx.store.mu.Unlock()
	assert.False(t, exists)
}

func TestDeleteSessionAllOrNothing(t *testing.T) {
	fx := newChatFixture(&scriptedLLM{fragments: []string{"reply"}}, 0)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId
	sess := fx.store.seedSession(userId, 0, true)

	_, err := fx.svc.SendMessage(context.Background(), userId, &dto.SendMessageRequest{
		SessionId: sess.Id,
		Text:      "hello",
	})
	require.NoError(t, err)

	fx.store.failSessionDelete = true
	require.Error(t, fx.svc.DeleteSession(context.Background(), userId, sess.Id))

	// The message delete was buffered in the same transaction and must
	// have been rolled back with it.
	assert.Len(t, fx.store.messagesFor(sess.Id), 2)
	fx.store.mu.Lock()
	_, exists := fx.store.sessions[sess.Id]
	fx.store.mu.Unlock()
	assert.True(t, exists)
}

func TestSessionAccessDeniedForOtherUser(t *testing.T) {
	fx := newChatFixture(&scriptedLLM{fragments: []string{"reply"}}, 0)
	owner := uuid.New()
	intruder := uuid.New()
	fx.store.subRecord.UserId = intruder
	sess := fx.store.seedSession(owner, 0, true)

	_, err := fx.svc.SendMessage(context.Background(), intruder, &dto.SendMessageRequest{
		SessionId: sess.Id,
		Text:      "not mine",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = fx.svc.DeleteSession(context.Background(), intruder, sess.Id)
	require.Error(t, err)
}

func makeImageHeader(t *testing.T) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not really a png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["image"][0]
}

func TestSendImageMessageWithEmptyCaptionPersistsEmptyText(t *testing.T) {
	llmStub := &scriptedLLM{fragments: []string{"A photo."}}
	fx := newChatFixture(llmStub, 0)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId
	sess := fx.store.seedSession(userId, 0, true)

	res, err := fx.svc.SendImageMessage(context.Background(), userId, &dto.SendImageMessageRequest{
		SessionId: sess.Id,
	}, makeImageHeader(t))
	require.NoError(t, err)

	// The stored message keeps the empty caption; the placeholder is for
	// the model only.
	assert.Equal(t, string(entity.MessageTypeImage), res.Sent.MessageType)
	assert.Empty(t, res.Sent.Text)
	require.NotNil(t, res.Sent.FileURL)
	assert.Contains(t, *res.Sent.FileURL, "chat/"+sess.Id.String()+"/")

	messages := fx.store.messagesFor(sess.Id)
	require.Len(t, messages, 2)
	assert.Empty(t, messages[0].Text)
	assert.Equal(t, entity.MessageTypeImage, messages[0].MessageType)
	require.NotNil(t, messages[0].FileURL)

	require.NotEmpty(t, llmStub.lastHistory)
	lastTurn := llmStub.lastHistory[len(llmStub.lastHistory)-1]
	assert.Equal(t, constant.ChatRoleUser, lastTurn.Role)
	assert.Equal(t, constant.ImageFallbackPrompt, lastTurn.Content)

	require.Len(t, fx.bucket.uploaded, 1)
	assert.Contains(t, fx.bucket.uploaded[0], "chat/"+sess.Id.String()+"/")
}

func TestSendImageMessageWithCaptionPersistsCaption(t *testing.T) {
	llmStub := &scriptedLLM{fragments: []string{"Nice."}}
	fx := newChatFixture(llmStub, 0)
	userId := uuid.New()
	fx.store.subRecord.UserId = userId
	sess := fx.store.seedSession(userId, 0, true)

	res, err := fx.svc.SendImageMessage(context.Background(), userId, &dto.SendImageMessageRequest{
		SessionId: sess.Id,
		Caption:   "what breed is this dog?",
	}, makeImageHeader(t))
	require.NoError(t, err)

	assert.Equal(t, "what breed is this dog?", res.Sent.Text)
	lastTurn := llmStub.lastHistory[len(llmStub.lastHistory)-1]
	assert.Equal(t, "what breed is this dog?", lastTurn.Content)
}

func TestSendImageMessageRequiresFile(t *testing.T) {
	fx := newChatFixture(&scriptedLLM{}, 0)
	_, err := fx.svc.SendImageMessage(context.Background(), uuid.New(), &dto.SendImageMessageRequest{
		SessionId: uuid.New(),
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image file is required")
}
