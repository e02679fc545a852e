package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	handlers "github.com/clipmarket/clipmarket/internal/adapter/handler/http"
	"github.com/clipmarket/clipmarket/internal/config"
	"github.com/clipmarket/clipmarket/internal/domain/model"
	"github.com/clipmarket/clipmarket/internal/infrastructure/database"
	"github.com/clipmarket/clipmarket/internal/metrics"
	"github.com/clipmarket/clipmarket/internal/middleware/auth"
	"github.com/clipmarket/clipmarket/internal/usecase"
)

// requestValidator plugs validator/v10 into echo's Validate call.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
	repos  *database.Repositories
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos *database.Repositories) *Server {
	e := echo.New()
	e.HideBanner = true

	// Initialize Stripe
	stripe.Key = cfg.Service.StripeSecretKey

	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config: cfg,
		logger: logger,
		echo:   e,
		repos:  repos,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Usecases
	settlementService := usecase.NewSettlementService(s.repos.Settlement, s.logger)
	purchaseUsecase := usecase.NewPurchaseUsecase(s.repos.Video, s.repos.Purchase, s.repos.Payment, usecase.NewStripeIntentClient(), s.logger)
	payoutService := usecase.NewPayoutService(s.repos.Payout, s.repos.User, s.repos.Video, s.logger)
	youtubeService := usecase.NewYouTubeService(s.repos.Channel, s.config.Service.YouTube.ClientID, s.config.Service.YouTube.ClientSecret, s.logger)

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(s.logger, s.config.Service.StripeWebhookSecret, s.repos.Webhook, settlementService)
	checkoutHandler := handlers.NewCheckoutHandler(s.logger, purchaseUsecase)
	videoHandler := handlers.NewVideoHandler(s.logger, s.repos.Video)
	userHandler := handlers.NewUserHandler(s.logger, s.repos.User)
	creatorHandler := handlers.NewCreatorHandler(s.logger, payoutService, youtubeService)
	adminHandler := handlers.NewAdminHandler(s.logger, s.repos.User, payoutService)

	// Webhook route (outside API versioning, signature-authenticated)
	s.echo.POST("/webhooks/payment", webhookHandler.HandleWebhook)

	jwtConfig := auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
		Users:  s.repos.User,
		SkipPaths: []string{
			"/health",
			"/metrics",
			"/webhooks/payment",
		},
	}

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Public routes. The detail route takes an optional token so owners and
	// admins can see unpublished videos.
	v1.GET("/videos", videoHandler.ListVideos)
	v1.GET("/videos/:id", videoHandler.GetVideo, auth.OptionalJWT(jwtConfig))

	// Protected routes (require JWT authentication)
	protected := v1.Group("", auth.JWTMiddleware(jwtConfig))

	protected.GET("/users/me", userHandler.GetMe)
	protected.GET("/users/me/stats", userHandler.GetMyStats)

	protected.POST("/videos/:id/checkout", checkoutHandler.CreateCheckout)
	protected.GET("/videos/:id/access", checkoutHandler.GetAccess)
	protected.GET("/purchases", checkoutHandler.ListPurchases)

	// Video management. Creation requires the creator role; updates,
	// deletion and visibility changes are checked per video (owner or admin).
	protected.POST("/videos", videoHandler.CreateVideo, auth.RequireRole(s.logger, model.RoleCreator))
	protected.PUT("/videos/:id", videoHandler.UpdateVideo)
	protected.DELETE("/videos/:id", videoHandler.DeleteVideo)
	protected.POST("/videos/:id/publish", videoHandler.PublishVideo)
	protected.POST("/videos/:id/unpublish", videoHandler.UnpublishVideo)

	// Creator routes
	creator := protected.Group("/creator", auth.RequireRole(s.logger, model.RoleCreator))
	creator.GET("/videos", videoHandler.ListMyVideos)
	creator.GET("/earnings", creatorHandler.GetEarnings)
	creator.POST("/channel", creatorHandler.LinkChannel)
	creator.GET("/channel", creatorHandler.GetChannel)

	// Admin routes
	admin := protected.Group("/admin", auth.RequireRole(s.logger, model.RoleAdmin))
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users/:id/disable", adminHandler.DisableUser)
	admin.POST("/users/:id/enable", adminHandler.EnableUser)
	admin.POST("/payouts", adminHandler.RecordPayout)
	admin.GET("/payouts", adminHandler.ListPayouts)
}
