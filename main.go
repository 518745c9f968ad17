package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/answjddnjs04/errand-app/internal/auth"
	"github.com/answjddnjs04/errand-app/internal/config"
	"github.com/answjddnjs04/errand-app/internal/db"
	"github.com/answjddnjs04/errand-app/internal/handlers"
	"github.com/answjddnjs04/errand-app/internal/logging"
	"github.com/answjddnjs04/errand-app/internal/middleware"
	"github.com/answjddnjs04/errand-app/internal/observability"
	"github.com/answjddnjs04/errand-app/internal/rabbitmq"
	"github.com/answjddnjs04/errand-app/internal/repositories"
	"github.com/answjddnjs04/errand-app/internal/telemetry"
)

const serviceName = "errand-app"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(cfg.DBDSN, logger)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTLPEndpoint, serviceName, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AuditExchange, logger)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, cfg.AuditRoutingKey, serviceName, cfg.Environment, logger)

	userRepo := repositories.NewUserRepo(database)
	sessionRepo := repositories.NewSessionRepo(database)
	errandRepo := repositories.NewErrandRepo(database)
	chatRepo := repositories.NewChatRepo(database)

	errandHandler := handlers.NewErrandHandler(errandRepo, audit, logger)
	chatHandler := handlers.NewChatHandler(chatRepo, audit, logger)
	profileHandler := handlers.NewProfileHandler(userRepo, logger)
	kakao := auth.NewHandler(auth.Config{
		ClientID:      cfg.KakaoClientID,
		ClientSecret:  cfg.KakaoClientSecret,
		RedirectURL:   cfg.KakaoRedirectURL,
		CookieName:    cfg.SessionCookieName,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.SecureCookies,
	}, userRepo, sessionRepo, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.RequestLogger(logger))
	router.Use(observability.HTTPMetricsMiddleware())

	requireAuth := middleware.RequireAuth(sessionRepo, cfg.SessionCookieName)
	optionalAuth := middleware.OptionalAuth(sessionRepo, cfg.SessionCookieName)

	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/api/login", kakao.Login)
	router.GET("/api/auth/kakao/callback", kakao.Callback)
	router.GET("/api/logout", kakao.Logout)

	router.GET("/api/auth/user", requireAuth, profileHandler.GetMe)
	router.PATCH("/api/profile", requireAuth, profileHandler.Update)

	router.GET("/api/errands", optionalAuth, errandHandler.List)
	router.GET("/api/errands/:id", optionalAuth, errandHandler.Get)
	router.POST("/api/errands", requireAuth, errandHandler.Create)
	router.PATCH("/api/errands/:id/accept", requireAuth, errandHandler.Accept)
	router.GET("/api/my-errands", requireAuth, errandHandler.ListMine)

	router.GET("/api/chat-rooms", requireAuth, chatHandler.ListRooms)
	router.GET("/api/chat-rooms/:id/messages", requireAuth, chatHandler.ListMessages)
	router.POST("/api/chat-rooms/:id/messages", requireAuth, chatHandler.PostMessage)

	handlers.RegisterDebugRoutes(router, audit, cfg.EnableDebugRoutes)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
