package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"quill-blog/internal/config"
	apphttp "quill-blog/internal/http"
	"quill-blog/internal/janitor"
	"quill-blog/internal/password"
	"quill-blog/internal/repository"
	"quill-blog/internal/repository/redis"
	"quill-blog/internal/repository/sqlite"
	"quill-blog/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger(cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath, err := sqlite.ParseDatabaseURL(cfg.Database.URL)
	if err != nil {
		logger.Fatalf("database url: %v", err)
	}
	db, err := sqlite.Open(dbPath)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(ctx, db, logger); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	sessions, closeSessions, err := buildSessionStore(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatalf("setup session store: %v", err)
	}
	defer closeSessions()

	userService := service.NewUserService(sqlite.NewUserRepository(db), sessions, service.UserServiceConfig{
		Policy: password.Policy{
			Scheme:     cfg.Auth.PasswordScheme,
			Iterations: cfg.Auth.PBKDF2Iterations,
			SaltLength: cfg.Auth.SaltLength,
		},
		SessionTTL:      cfg.Auth.SessionTTL,
		BootstrapAdmins: cfg.Auth.BootstrapAdmins,
		AdminEmails:     cfg.Auth.AdminEmails,
	})
	postService := service.NewPostService(sqlite.NewPostRepository(db))

	sweeper := janitor.New(janitor.Config{
		Interval: cfg.Session.SweepInterval,
		Logger:   logger,
	}, userService)
	if err := sweeper.Start(ctx); err != nil {
		logger.Fatalf("start session janitor: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, postService, logger, apphttp.Config{
		Secret:         cfg.Auth.Secret,
		CookieName:     cfg.Auth.CookieName,
		SecureCookies:  cfg.Auth.SecureCookies,
		LoginPerMinute: cfg.RateLimit.LoginPerMinute,
		LoginBurst:     cfg.RateLimit.LoginBurst,
		Metrics:        cfg.Metrics.Enabled,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	sweeper.Shutdown()

	logger.Info("bye")
}

func buildSessionStore(ctx context.Context, cfg config.Config, db *sql.DB, logger *logrus.Logger) (repository.SessionRepository, func(), error) {
	if cfg.Session.Store != config.SessionStoreRedis {
		logger.Info("storing sessions in sqlite")
		return sqlite.NewSessionRepository(db), func() {}, nil
	}

	client := redis.NewClient(cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Session.RedisAddr, err)
	}

	logger.Infof("storing sessions in redis at %s", cfg.Session.RedisAddr)
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warnf("close redis: %v", err)
		}
	}
	return redis.NewSessionRepository(client), closeFn, nil
}
