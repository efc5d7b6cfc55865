package main

import (
	"context"
	"log"

	"chatx-be/internal/bootstrap"
	"chatx-be/internal/config"
	"chatx-be/internal/server"
	"chatx-be/internal/tracer"
	"chatx-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// Tracing is opt-in via OTEL_ENABLED
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Workers
	go func() {
		log.Println("Background: Starting Title Worker...")
		if err := container.TitleService.Run(context.Background()); err != nil {
			log.Printf("Background Title Worker Error: %v", err)
		}
	}()

	if container.EventRelayService != nil {
		if err := container.EventRelayService.Start(); err != nil {
			log.Printf("Background Event Relay Error: %v", err)
		}
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
