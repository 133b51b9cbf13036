package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	bbolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/config"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/oauth"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/internal/token"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/password"
	"github.com/fastygo/taskboard/repository"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
	"github.com/fastygo/taskboard/repository/postgres"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	sessionUC "github.com/fastygo/taskboard/usecase/session"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx := manager.Context(context.Background())

	var (
		users    repository.UserRepository
		tasks    repository.TaskRepository
		sessions repository.SessionRepository
		checks   []monitor.Check
		boltDB   *bbolt.DB
	)

	if cfg.UsesBolt() {
		boltDB, err = boltInfra.Open(cfg.Storage.BoltPath)
		if err != nil {
			zapLogger.Fatal("failed to open bolt store", zap.Error(err))
		}
		manager.Register("bolt", func(ctx context.Context) error {
			return boltDB.Close()
		})
		checks = append(checks, monitor.BoltCheck(boltDB))
	}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		checks = append(checks, monitor.PostgresCheck(pool))
		users = postgres.NewUserRepository(pool)
		tasks = postgres.NewTaskRepository(pool)
	case config.DriverBolt:
		users = boltRepo.NewUserRepository(boltDB)
		tasks = boltRepo.NewTaskRepository(boltDB)
	}

	switch cfg.Session.Store {
	case config.DriverRedis:
		redisClient, err := redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		checks = append(checks, monitor.RedisCheck(redisClient))
		sessions = redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)
	case config.DriverBolt:
		boltSessions := boltRepo.NewSessionRepository(boltDB, cfg.Session.TTL)
		sessions = boltSessions

		sweeper := services.NewSessionSweeper(boltSessions, cfg.Session.SweepInterval, zapLogger)
		sweeper.Start()
		manager.Register("session_sweeper", func(ctx context.Context) error {
			sweeper.Stop(ctx)
			return nil
		})
	}

	mon := monitor.New(checks, 0, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	identities := oauth.FixtureRegistry()
	if cfg.OAuth.Mode == config.OAuthModeLive {
		identities = oauth.LiveRegistry(
			oauth.Credentials(cfg.OAuth.Google),
			oauth.Credentials(cfg.OAuth.GitHub),
			nil,
		)
	} else {
		zapLogger.Warn("oauth providers running in fixture mode")
	}

	issuer, err := token.NewIssuer(cfg.JWTSecret(), cfg.JWT.Issuer)
	if err != nil {
		zapLogger.Fatal("token issuer", zap.Error(err))
	}

	authUseCase := authUC.New(users, password.NewBcrypt(cfg.Password.BcryptCost), identities, zapLogger)
	sessionUseCase := sessionUC.New(users, sessions, issuer, cfg.Session.TTL, zapLogger)
	taskUseCase := taskUC.New(tasks, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, sessionUseCase, ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.BearerAuth(sessionUseCase, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	manager.Go("http_server", func() error {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("sessions", cfg.Session.Store),
		)
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
	if err := manager.Err(); err != nil {
		zapLogger.Fatal("server stopped on error", zap.Error(err))
	}
}
