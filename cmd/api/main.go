package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/grievance-service/internal/api/http"
	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/persistence"
	"github.com/spec-kit/grievance-service/internal/service"
	"github.com/spec-kit/grievance-service/internal/worker"
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

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("AUTH_JWT_SECRET must be set outside development", zap.String("env", cfg.App.Env))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := persistence.OpenBackend(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer backend.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher(logger)
	var publisher *events.RedisPublisher
	if redis != nil {
		publisher = events.NewRedisPublisher(redis.Client, redis.Channel)
	}
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(dispatcher, notifications, publisher)

	store := backend.Store
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	accounts := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:       store.Users,
		DepartmentRepo: store.Departments,
		TokenManager:   tokens,
	})
	grievances := service.NewGrievanceService(service.GrievanceDependencies{
		GrievanceRepo:  store.Grievances,
		DepartmentRepo: store.Departments,
		UserRepo:       store.Users,
		Dispatcher:     dispatcher,
	})
	departments := service.NewDepartmentService(service.DepartmentDependencies{
		DepartmentRepo: store.Departments,
		GrievanceRepo:  store.Grievances,
		UserRepo:       store.Users,
	})

	health := map[string]handlers.Pinger{cfg.Store.Driver: backend}
	if redis != nil {
		health["redis"] = redis
	}

	app := httptransport.NewServer(httptransport.ServerDependencies{
		ServiceName:      cfg.App.Name,
		Version:          cfg.App.Version,
		RequestTimeout:   cfg.App.RequestTimeout(),
		CORSAllowOrigins: cfg.App.CORSAllowOrigins,
		Logger:           logger,
		Metrics:          observability.NewMetrics(),
		Grievances:       grievances,
		Departments:      departments,
		Accounts:         accounts,
		Auth:             auth.NewAuthMiddleware(tokens, store.Users, auth.DefaultPolicy()),
		Health:           health,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
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
