// Package server assembles the HTTP API from the module handlers.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mathtutor/internal/config"
	"mathtutor/internal/middleware"
	"mathtutor/internal/modules/admin"
	"mathtutor/internal/modules/auth"
	"mathtutor/internal/modules/booking"
	"mathtutor/internal/modules/catalog"
	"mathtutor/internal/modules/events"
	"mathtutor/internal/modules/order"
	"mathtutor/internal/modules/payment"
	"mathtutor/internal/modules/question"
	"mathtutor/internal/modules/ranking"
	"mathtutor/internal/modules/review"
	"mathtutor/internal/modules/upload"
	"mathtutor/internal/pkg/clock"
	"mathtutor/internal/pkg/jwt"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/pkg/response"
	"mathtutor/internal/repository"
)

type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Log    *zap.Logger
	Clock  clock.Clock
	// Mailer defaults to the console mailer.
	Mailer auth.Mailer
}

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Orders *order.Service
	Hub    *events.Hub
	Tokens *jwt.Service
}

func New(d Deps) *Server {
	cfg := d.Config
	log := logger.OrNop(d.Log)
	clk := d.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	mailer := d.Mailer
	if mailer == nil {
		mailer = auth.NewConsoleMailer(cfg.MailerConsoleLog, log)
	}

	// Repositories
	userRepo := repository.NewUserRepository(d.DB)
	codeRepo := repository.NewVerificationCodeRepository(d.DB)
	slotRepo := repository.NewSlotRepository(d.DB)
	orderRepo := repository.NewOrderRepository(d.DB)
	reviewRepo := repository.NewReviewRepository(d.DB)
	statsRepo := repository.NewStatsRepository(d.DB)
	catalogRepo := repository.NewCatalogRepository(d.DB)
	uploadRepo := repository.NewUploadRepository(d.DB)

	tokens := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	hub := events.NewHub(log.Named("events"))

	// Services
	orderService := order.NewService(d.DB, clk, log.Named("order"), hub)
	authService := auth.NewService(userRepo, codeRepo, tokens, mailer, auth.Options{
		Tx:      auth.NewTransactor(d.DB),
		Pepper:  cfg.VerificationCodePepper,
		CodeTTL: cfg.VerifyCodeTTL,
		Clock:   clk,
		Log:     log.Named("auth"),
	})
	questionService := question.NewService(d.DB, userRepo, orderService, log.Named("question"))
	bookingService := booking.NewService(d.DB, slotRepo, orderService, log.Named("booking"))
	paymentService := payment.NewService(d.DB, orderService, cfg.PaymentBaseURL, log.Named("payment"))
	reviewService := review.NewService(reviewRepo, orderRepo, userRepo, clk, log.Named("review"))
	rankingService := ranking.NewService(statsRepo, userRepo, clk, log.Named("ranking"))
	catalogService := catalog.NewService(catalogRepo, clk, log.Named("catalog"))
	uploadService := upload.NewService(uploadRepo, cfg.UploadsDir, cfg.UploadsURLBase, clk, log.Named("upload"))
	adminService := admin.NewService(userRepo, orderService, clk, log.Named("admin"))

	// Handlers
	authHandler := auth.NewHandler(authService)
	questionHandler := question.NewHandler(questionService, orderService)
	bookingHandler := booking.NewHandler(bookingService, orderService)
	paymentHandler := payment.NewHandler(paymentService)
	reviewHandler := review.NewHandler(reviewService)
	rankingHandler := ranking.NewHandler(rankingService)
	catalogHandler := catalog.NewHandler(catalogService)
	uploadHandler := upload.NewHandler(uploadService)
	adminHandler := admin.NewHandler(adminService)
	eventsHandler := events.NewHandler(hub, tokens, userRepo, middleware.AllowedOrigins(cfg.CORSAllowedOrigins), log.Named("events"))

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.RequestLogger(log.Named("http")),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.Static(cfg.UploadsURLBase, uploadService.BaseDir())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		reviewHandler.RegisterRoutes(v1, nil)
		rankingHandler.RegisterRoutes(v1)
		eventsHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(tokens), middleware.RejectBanned(userRepo))
		{
			authHandler.RegisterProtectedRoutes(protected)
			questionHandler.RegisterRoutes(protected)
			bookings := bookingHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(bookings)
			reviewHandler.RegisterRoutes(nil, protected)
			catalogHandler.RegisterRoutes(protected)
			uploadHandler.RegisterRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			adminHandler.RegisterRoutes(adminGroup)
		}
	}

	return &Server{
		Engine: r,
		DB:     d.DB,
		Orders: orderService,
		Hub:    hub,
		Tokens: tokens,
	}
}
