package handler

import (
	"log/slog"
	"time"

	"github.com/ftechnology/backend/internal/config"
	"github.com/ftechnology/backend/internal/db"
	"github.com/ftechnology/backend/internal/ratelimit"
	"github.com/ftechnology/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// NewRouter assembles the gin engine. Every /api route sits behind the
// coarse global tiers; credential-sensitive endpoints add their own tier.
func NewRouter(
	cfg config.ServerConfig,
	requestTimeout time.Duration,
	pg *db.Postgres,
	authSvc *service.AuthService,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	limiter *ratelimit.Store,
	logger *slog.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORSMiddleware(cfg.CORSOrigins, true))
	r.Use(RequestTimeoutMiddleware(requestTimeout))

	r.GET("/health", Health(pg))

	api := r.Group("/api")
	api.Use(RateLimitMiddleware(limiter, logger, "short", "medium", "long"))

	auth := api.Group("/auth")
	{
		auth.POST("/register", RateLimitMiddleware(limiter, logger, "register"), authHandler.Register)
		auth.POST("/login", RateLimitMiddleware(limiter, logger, "login"), authHandler.Login)
		auth.POST("/forgot-password", RateLimitMiddleware(limiter, logger, "forgot"), authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.GET("/me", AuthMiddleware(authSvc), authHandler.Me)
		auth.POST("/logout", AuthMiddleware(authSvc), authHandler.Logout)
		auth.GET("/oauth/:provider", authHandler.OAuthRedirect)
		auth.GET("/oauth/:provider/callback", authHandler.OAuthCallback)
	}

	users := api.Group("/users")
	users.Use(AuthMiddleware(authSvc))
	{
		users.GET("/me", authHandler.Me)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.PUT("/avatar", userHandler.UpdateAvatar)
		users.DELETE("/avatar", userHandler.RemoveAvatar)
		users.GET("/login-history", userHandler.LoginHistory)
		users.PUT("/change-password", userHandler.ChangePassword)
	}

	return r
}
