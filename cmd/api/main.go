package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/XAKEP-CMEPTU/Coldfire-Site/internal/api/http"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/api/http/handlers"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/auth"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/config"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/events"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/observability"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/persistence"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/repository"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/service"
	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	chatCache := persistence.NewChatCache(redis, logger)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg.Auth, userRepo)
	moderationService := service.NewModerationService(service.ModerationDependencies{
		UserRepo:   userRepo,
		ChatRepo:   chatRepo,
		Dispatcher: dispatcher,
	})
	chatService := service.NewChatService(service.ChatDependencies{
		ChatRepo:   chatRepo,
		Moderation: moderationService,
		Cache:      chatCache,
		Dispatcher: dispatcher,
		MaxOpen:    cfg.Chat.MaxOpenPerUser,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	if pool != nil {
		if err := service.EnsureAdmins(ctx, cfg.Admin, cfg.Auth.BcryptCost, userRepo, logger); err != nil {
			logger.Fatal("failed to bootstrap admins", zap.Error(err))
		}
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Chats:          handlers.NewChatsHandler(chatService),
		Users:          handlers.NewUsersHandler(userRepo, moderationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
