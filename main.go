package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ftechnology/backend/internal/client"
	"github.com/ftechnology/backend/internal/config"
	"github.com/ftechnology/backend/internal/db"
	"github.com/ftechnology/backend/internal/handler"
	"github.com/ftechnology/backend/internal/logging"
	"github.com/ftechnology/backend/internal/ratelimit"
	"github.com/ftechnology/backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Server.LogLevel)
	logger.Info("starting", "service", "ftechnology-backend", "addr", cfg.Server.Addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := db.NewPostgres(ctx)
	if err != nil {
		logger.Error("db_connect_failed", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.EnsureSchema(ctx); err != nil {
		logger.Error("schema_init_failed", "error", err)
		os.Exit(1)
	}

	hasher := service.NewPasswordHasher(runtime.GOMAXPROCS(0))

	issuer, err := service.NewTokenIssuer(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Error("auth_config_invalid", "error", err)
		os.Exit(1)
	}

	mailer := client.NewEmailClient(cfg.Email)
	if !mailer.IsConfigured() {
		logger.Warn("email_disabled", "reason", "RESEND_API_KEY not set")
	}

	resetManager := service.NewResetManager(pg, hasher)
	resolver := service.NewOAuthResolver(pg)

	authSvc, err := service.NewAuthService(pg, hasher, issuer, resetManager, resolver, mailer, logger, cfg.Auth)
	if err != nil {
		logger.Error("auth_config_invalid", "error", err)
		os.Exit(1)
	}
	usersSvc := service.NewUsersService(pg, hasher)

	var providers []client.OAuthProvider
	if google, err := client.NewGoogleProvider(ctx, cfg.OAuth); err != nil {
		logger.Warn("google_oauth_disabled", "reason", err)
	} else {
		providers = append(providers, google)
	}

	authHandler := handler.NewAuthHandler(authSvc, providers...)
	userHandler := handler.NewUserHandler(usersSvc)
	limiter := ratelimit.NewStore(ratelimit.DefaultTiers())

	requestTimeout, err := time.ParseDuration(cfg.Server.RequestTimeout)
	if err != nil {
		logger.Error("server_config_invalid", "error", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(cfg.Server, requestTimeout, pg, authSvc, authHandler, userHandler, limiter, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_listen_failed", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("started", "addr", cfg.Server.Addr)

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	}

	pg.Close()
	logger.Info("stopped")
}
