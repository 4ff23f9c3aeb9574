package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/addressbook/addressbook-go/internal/avatar"
	"github.com/addressbook/addressbook-go/internal/config"
	"github.com/addressbook/addressbook-go/internal/crypto"
	"github.com/addressbook/addressbook-go/internal/handler"
	"github.com/addressbook/addressbook-go/internal/logger"
	"github.com/addressbook/addressbook-go/internal/mail"
	"github.com/addressbook/addressbook-go/internal/middleware"
	"github.com/addressbook/addressbook-go/internal/repository"
	"github.com/addressbook/addressbook-go/internal/service"
)

func newServeCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on start")
	return cmd
}

func runServe(skipMigrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.Env, "addressbook-api")
	if err != nil {
		return err
	}
	defer log.Sync()
	for _, w := range cfg.Warnings {
		log.Warn("config", zap.String("warning", w))
	}

	ctx := context.Background()

	db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if !skipMigrate {
		if err := repository.Migrate(ctx, db, repository.MigrateUp); err != nil {
			return err
		}
	}

	tokens, err := crypto.NewTokenService(crypto.TokenConfig{
		Secret:     cfg.JWTSecret,
		Algorithm:  cfg.JWTAlgorithm,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		EmailTTL:   cfg.EmailTokenTTL,
	})
	if err != nil {
		return err
	}
	hasher := crypto.NewPasswordHasher(crypto.DefaultHashParams())

	dispatcher := mail.NewDispatcher(mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
	}), log, cfg.MailWorkers, cfg.MailQueue)

	uploader, err := avatar.NewS3Uploader(ctx, avatar.S3Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		return err
	}

	limiter, closeLimiter, err := newLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)

	router := handler.NewRouter(handler.Deps{
		Auth:            service.NewAuthService(userRepo, tokens, hasher, dispatcher, log),
		Users:           service.NewUserService(userRepo, uploader, log),
		Contacts:        service.NewContactService(contactRepo),
		Limiter:         limiter,
		RateLimitWindow: cfg.RateLimitWindow,
		Metrics:         middleware.NewMetrics("addressbook"),
		Logger:          log,
		BaseURL:         cfg.AppBaseURL,
		Ping:            db.PingContext,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return err
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced shutdown", zap.Error(err))
		return err
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn("mail queue not drained", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}

// newLimiter returns the shared Redis limiter when REDIS_ADDR is set and the
// in-process one otherwise.
func newLimiter(ctx context.Context, cfg config.Config, log *zap.Logger) (middleware.Limiter, func(), error) {
	if cfg.RedisAddr == "" {
		l := middleware.NewMemoryLimiter(cfg.RateLimitTimes, cfg.RateLimitWindow)
		return l, l.Stop, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}

	log.Info("rate limiter backed by redis", zap.String("addr", cfg.RedisAddr))
	return middleware.NewRedisLimiter(client, cfg.RateLimitTimes, cfg.RateLimitWindow), func() { client.Close() }, nil
}
