package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/visitrack/backend/config"
	"github.com/visitrack/backend/internal/access"
	"github.com/visitrack/backend/internal/auth"
	"github.com/visitrack/backend/internal/badges"
	"github.com/visitrack/backend/internal/dataset"
	"github.com/visitrack/backend/internal/entrylog"
	"github.com/visitrack/backend/internal/events"
	"github.com/visitrack/backend/internal/forms"
	"github.com/visitrack/backend/internal/importer"
	"github.com/visitrack/backend/internal/messages"
	"github.com/visitrack/backend/internal/middleware"
	"github.com/visitrack/backend/internal/models"
	"github.com/visitrack/backend/internal/reports"
	"github.com/visitrack/backend/internal/users"
	"github.com/visitrack/backend/internal/visitors"
	"github.com/visitrack/backend/pkg/database"
	"github.com/visitrack/backend/pkg/queue"
	redisclient "github.com/visitrack/backend/pkg/redis"
	"github.com/visitrack/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	// Redis backs the badge-email queue. The API stays up without it;
	// registration then skips the confirmation email.
	var jobs *queue.Queue
	if rdb, err := redisclient.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger); err != nil {
		logger.Warn("redis unavailable, badge emails disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		jobs = queue.NewQueue(rdb.Client, logger)
	}

	var s3 *storage.S3
	if cfg.AWS.Region != "" {
		s3, err = storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			BadgesBucket:         cfg.AWS.BadgesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 unavailable, badge artwork disabled", zap.Error(err))
			s3 = nil
		}
	} else {
		logger.Warn("AWS_REGION not set, badge artwork disabled")
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	authRepo := auth.NewRepository(pool)
	userRepo := users.NewRepository(pool)
	eventRepo := events.NewRepository(pool)
	formRepo := forms.NewRepository(pool)
	badgeRepo := badges.NewRepository(pool)
	visitorRepo := visitors.NewRepository(pool)
	datasetRepo := dataset.NewRepository(pool)
	entryLogRepo := entrylog.NewRepository(pool)
	messageRepo := messages.NewRepository(pool)
	reportRepo := reports.NewRepository(pool)

	authHandler := auth.NewHandler(authRepo, jwtService, logger)
	userHandler := users.NewHandler(userRepo, authRepo, logger)
	eventHandler := events.NewHandler(eventRepo, logger)
	formHandler := forms.NewHandler(formRepo, eventRepo, logger)
	badgeHandler := badges.NewHandler(badgeRepo, eventRepo, s3, logger)
	visitorHandler := visitors.NewHandler(visitorRepo, eventRepo, formRepo, messageRepo, jobs, logger)
	datasetHandler := dataset.NewHandler(datasetRepo, logger)
	importHandler := importer.NewHandler(datasetRepo, cfg.Import, logger)
	entryLogHandler := entrylog.NewHandler(entryLogRepo, logger)
	messageHandler := messages.NewHandler(messageRepo, jobs, logger)
	reportHandler := reports.NewHandler(reportRepo, logger)

	router := newRouter(cfg, logger, jwtService, authRepo,
		authHandler, userHandler, eventHandler, formHandler, badgeHandler,
		visitorHandler, datasetHandler, importHandler, entryLogHandler,
		messageHandler, reportHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newRouter(cfg *config.Config, logger *zap.Logger, jwtService *auth.JWTService,
	accessSrc middleware.AccessSource,
	authHandler *auth.Handler, userHandler *users.Handler, eventHandler *events.Handler,
	formHandler *forms.Handler, badgeHandler *badges.Handler, visitorHandler *visitors.Handler,
	datasetHandler *dataset.Handler, importHandler *importer.Handler,
	entryLogHandler *entrylog.Handler, messageHandler *messages.Handler,
	reportHandler *reports.Handler) *gin.Engine {

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public surface: tenant signup, login and form-driven event registration.
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/events/:id/register", visitorHandler.Register)

	authed := api.Group("", middleware.JWT(jwtService))

	page := func(p access.Page) gin.HandlerFunc {
		return middleware.RequirePage(accessSrc, p)
	}

	usersGroup := authed.Group("/users", page(access.PageSetting), middleware.RequireRole(string(models.RoleAdmin)))
	{
		usersGroup.GET("", userHandler.List)
		usersGroup.POST("", userHandler.Create)
		usersGroup.PUT("/:id/page-access", userHandler.UpdatePageAccess)
		usersGroup.PUT("/:id/active", userHandler.SetActive)
		usersGroup.POST("/backfill-page-access", userHandler.BackfillPageAccess)
	}

	eventsGroup := authed.Group("/events", page(access.PageEvents))
	{
		eventsGroup.GET("", eventHandler.List)
		eventsGroup.POST("", eventHandler.Create)
		eventsGroup.GET("/:id", eventHandler.GetByID)
		eventsGroup.PUT("/:id", eventHandler.Update)
		eventsGroup.DELETE("/:id", eventHandler.Delete)
	}

	formsGroup := authed.Group("/forms", page(access.PageFormBuilder))
	{
		formsGroup.GET("", formHandler.List)
		formsGroup.POST("", formHandler.Create)
		formsGroup.GET("/:id", formHandler.GetByID)
		formsGroup.PUT("/:id", formHandler.Update)
		formsGroup.DELETE("/:id", formHandler.Delete)
	}

	badgesGroup := authed.Group("/badges", page(access.PageBadgeManagement))
	{
		badgesGroup.GET("", badgeHandler.List)
		badgesGroup.POST("", badgeHandler.Create)
		badgesGroup.GET("/:id", badgeHandler.GetByID)
		badgesGroup.PUT("/:id", badgeHandler.Update)
		badgesGroup.DELETE("/:id", badgeHandler.Delete)
		badgesGroup.POST("/:id/image", badgeHandler.UploadImage)
		badgesGroup.GET("/:id/image-url", badgeHandler.ImageURL)
	}

	visitorsGroup := authed.Group("/visitors", page(access.PageVisitors))
	{
		visitorsGroup.GET("", visitorHandler.List)
		visitorsGroup.GET("/:id", visitorHandler.GetByID)
		visitorsGroup.GET("/:id/qr", visitorHandler.QRImage)
		visitorsGroup.POST("/:id/checkin", visitorHandler.CheckIn)
	}

	authed.POST("/checkin/qr", page(access.PageScanner), visitorHandler.CheckInQR)

	datasetGroup := authed.Group("/visitor-dataset", page(access.PageVisitors))
	{
		datasetGroup.GET("", datasetHandler.Get)
		datasetGroup.POST("", datasetHandler.Upsert)
		datasetGroup.POST("/import", importHandler.Preview)
		datasetGroup.POST("/import-confirm", importHandler.Confirm)
	}

	authed.GET("/entry-log", page(access.PageEntryLog), entryLogHandler.List)

	messagesGroup := authed.Group("/messages", page(access.PageMessages))
	{
		messagesGroup.GET("", messageHandler.List)
		messagesGroup.POST("/resend", messageHandler.Resend)
	}

	authed.GET("/profile", page(access.PageProfile), userHandler.Profile)

	authed.GET("/reports/summary", page(access.PageReports), reportHandler.Summary)

	return router
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		os.Exit(1)
	}
	return logger
}
