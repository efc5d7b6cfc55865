package bootstrap

import (
	"context"
	"log"
	"time"

	"chatx-be/internal/config"
	"chatx-be/internal/controller"
	"chatx-be/internal/pkg/logger"
	"chatx-be/internal/pkg/mailer"
	"chatx-be/internal/quota"
	"chatx-be/internal/repository/unitofwork"
	"chatx-be/internal/service"
	"chatx-be/internal/websocket"
	"chatx-be/pkg/bucket"
	"chatx-be/pkg/llm/factory"

	pktNats "chatx-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	OAuthController   controller.IOAuthController
	UserController    controller.IUserController
	ChatController    controller.IChatController
	PaymentController controller.IPaymentController
	PlanController    controller.IPlanController

	// Background workers (main.go runs these)
	TitleService      *service.TitleService
	EventRelayService *service.EventRelayService

	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. In-process bus for title jobs
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. LLM provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.Provider,
		cfg.Ai.Model,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	bucketService, err := bucket.NewGCSBucketService(context.Background(), cfg.Storage.BucketName)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize GCS bucket: %v", err)
	}

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Domain services
	ledger := quota.NewLedger()

	authService := service.NewAuthService(uowFactory, emailService, natsPub)
	oauthService := service.NewOAuthService(uowFactory)
	userService := service.NewUserService(uowFactory, ledger, bucketService, natsPub)
	planService := service.NewPlanService(uowFactory, ledger)
	paymentService := service.NewPaymentService(uowFactory, natsPub)

	chatService := service.NewChatService(
		uowFactory,
		ledger,
		llmProvider,
		wsHub,
		bucketService,
		pubSub,
		sysLogger,
		time.Duration(cfg.Ai.StreamTimeoutSeconds)*time.Second,
	)

	titleService := service.NewTitleService(
		pubSub,
		uowFactory,
		llmProvider,
		wsHub,
		sysLogger,
		cfg.Ai.TitleModel,
	)

	var eventRelay *service.EventRelayService
	if natsSub != nil {
		eventRelay = service.NewEventRelayService(natsSub, wsHub, wsLogger)
	}

	return &Container{
		AuthController:    controller.NewAuthController(authService),
		OAuthController:   controller.NewOAuthController(oauthService),
		UserController:    controller.NewUserController(userService, planService),
		ChatController:    controller.NewChatController(chatService),
		PaymentController: controller.NewPaymentController(paymentService),
		PlanController:    controller.NewPlanController(planService),

		TitleService:      titleService,
		EventRelayService: eventRelay,
		WebSocketHub:      wsHub,
	}
}
