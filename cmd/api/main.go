package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/assignment-service/internal/api/http"
	"github.com/spec-kit/assignment-service/internal/api/http/handlers"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/observability"
	"github.com/spec-kit/assignment-service/internal/persistence"
	"github.com/spec-kit/assignment-service/internal/repository"
	"github.com/spec-kit/assignment-service/internal/service"
	"github.com/spec-kit/assignment-service/internal/storage"
	"github.com/spec-kit/assignment-service/internal/worker"
)

// appContext holds everything built once at startup and shared by the handlers.
type appContext struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics

	postgres *persistence.Postgres
	redis    *persistence.Redis
	store    repository.Store
	files    storage.FileStore

	guard      *auth.AccessGuard
	dispatcher events.Dispatcher
}

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

	appCtx, err := newAppContext(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise application", zap.Error(err))
	}
	defer appCtx.close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	appCtx.guard = auth.NewAccessGuard(tokens)
	throttle := auth.NewLoginThrottle(appCtx.redis.Counters(), cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow(), logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		Store:      appCtx.store,
		Guard:      appCtx.guard,
		Tokens:     tokens,
		Throttle:   throttle,
		Dispatcher: appCtx.dispatcher,
	})
	userService := service.NewUserService(*cfg, appCtx.store)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		Store:      appCtx.store,
		Files:      appCtx.files,
		Dispatcher: appCtx.dispatcher,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(appCtx.dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)
	sweeperDone := worker.StartRevocationSweeper(ctx, appCtx.guard, cfg.Auth.RevocationSweepInterval(), logger)

	app := httptransport.NewApp(cfg.App.Name, cfg.Upload.MaxBytes, logger)
	httptransport.RegisterMiddlewares(app, logger, appCtx.metrics, cfg.App.RequestTimeout())

	var redisPinger handlers.Pinger
	if appCtx.redis != nil {
		redisPinger = appCtx.redis
	}
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, appCtx.store, redisPinger),
		Auth:        handlers.NewAuthHandler(authService),
		Users:       handlers.NewUsersHandler(userService),
		Assignments: handlers.NewAssignmentsHandler(assignmentService),
		Guard:       appCtx.guard,
		Policy:      auth.DefaultPolicy(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	<-sweeperDone
}

// newAppContext connects storage backends. Without a Postgres DSN the
// in-memory store is used.
func newAppContext(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*appContext, error) {
	appCtx := &appContext{
		cfg:        cfg,
		logger:     logger,
		metrics:    observability.NewMetrics(),
		dispatcher: events.NewInMemoryDispatcher(),
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	appCtx.postgres = pg

	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, persistence.DefaultMigrationsDir, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		appCtx.store = repository.NewPostgresStore(pool)
	} else {
		appCtx.store = repository.NewMemoryStore()
	}

	files, err := storage.NewLocalStore(cfg.Upload.Dir)
	if err != nil {
		pg.Close()
		return nil, err
	}
	appCtx.files = files

	appCtx.redis = persistence.NewRedis(cfg.Redis, logger)
	return appCtx, nil
}

func (a *appContext) close() {
	a.redis.Close()
	a.postgres.Close()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
