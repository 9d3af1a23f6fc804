package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"taxihub/config"
	"taxihub/pkg/api"
	"taxihub/pkg/events"
	"taxihub/pkg/logger"
	"taxihub/pkg/notify"
	"taxihub/pkg/token"
	"taxihub/pkg/watch"
	"taxihub/service"
	"taxihub/storage/postgres"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	// 2. Initialize logger
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	// 3. Initialize storage (Postgres, runs migrations)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgStore, err := postgres.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pgStore.Close()

	// 4. Snapshot subscription hub, with redis fanout when configured
	hub := watch.NewHub(pgStore.Order(), log)
	if cfg.RedisHost != "" {
		hub.AttachRedis(cfg.RedisHost+":"+cfg.RedisPort, cfg.RedisPassword, "taxihub:orders:changed")
		log.Info("redis change fanout enabled")
	}
	go hub.Run(ctx)

	// 5. Optional collaborators
	var producer *events.KafkaProducer
	if cfg.KafkaBrokers != "" {
		producer = events.NewKafkaProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		defer producer.Close()
		log.Info("kafka order events enabled", logger.String("topic", cfg.KafkaTopic))
	}

	var announcer *notify.Announcer
	if cfg.TelegramBotToken != "" && cfg.DispatchChatID != 0 {
		announcer, err = notify.NewAnnouncer(cfg.TelegramBotToken, cfg.DispatchChatID, log)
		if err != nil {
			log.Error("failed to initialize telegram announcer", logger.Error(err))
			os.Exit(1)
		}
		log.Info("telegram dispatch announcements enabled")
	}

	// 6. Services and HTTP API
	tokens := token.NewService(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	svc := service.New(pgStore, service.Deps{
		Tokens:    tokens,
		Hub:       hub,
		Producer:  producer,
		Announcer: announcer,
		Pricing:   service.Pricing{BaseFare: cfg.BaseFare, Spread: cfg.FareSpread},
	}, log)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.AppPort),
		Handler: api.NewServer(svc, hub, tokens, log),
	}

	go func() {
		log.Info("taxihub listening", logger.Int("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", logger.Error(err))
			os.Exit(1)
		}
	}()

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", logger.Error(err))
	}
}
