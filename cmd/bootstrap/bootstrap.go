package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"service-marketplace/config"
	"service-marketplace/internal/authz"
	deliveryHttp "service-marketplace/internal/delivery/http"
	"service-marketplace/internal/delivery/http/handler"
	"service-marketplace/internal/delivery/http/middleware"
	"service-marketplace/internal/infrastructure/cache"
	"service-marketplace/internal/infrastructure/database"
	"service-marketplace/internal/infrastructure/geocoding"
	"service-marketplace/internal/infrastructure/messaging"
	"service-marketplace/internal/repository"
	"service-marketplace/internal/service"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/jwt"
	"service-marketplace/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	log        *logrus.Logger
	dispatcher *service.NotificationDispatcher
	locker     *service.BookingLocker
	rabbitMQ   *messaging.RabbitMQPublisher
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	app.log = setupLogger(cfg.App.LogLevel)
	app.log.Info("Configuration loaded successfully")

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(cfg.DB, app.log); err != nil {
			return nil, err
		}
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, app.log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, app.log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize notification transport
	var publisher service.Publisher = service.NewLogPublisher(app.log)
	if cfg.Notification.RabbitMQURL != "" {
		rabbitMQ, err := messaging.NewRabbitMQPublisher(cfg.Notification.RabbitMQURL, cfg.Notification.Exchange, app.log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		app.rabbitMQ = rabbitMQ
		publisher = rabbitMQ
		app.log.Info("RabbitMQ connected successfully")
	} else {
		app.log.Warn("RABBITMQ_URL not set, notifications will only be logged")
	}
	app.dispatcher = service.NewNotificationDispatcher(publisher, app.log, cfg.Notification.QueueSize)
	app.locker = service.NewBookingLocker(app.log)

	// Initialize all layers
	app.Server = app.initializeServer(cfg, db, redisClient)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

func newGeocoder(cfg config.MapsConfig, redisClient *redis.Client, log *logrus.Logger) geocoding.Geocoder {
	if cfg.APIKey == "" {
		log.Warn("MAPS_API_KEY not set, provider addresses will not be geocoded")
		return geocoding.NoopGeocoder{}
	}
	return geocoding.NewGoogleGeocoder(cfg.APIKey, redisClient, log)
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *http.Server {
	log := app.log

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	providerRepo := repository.NewProviderRepository()
	serviceRepo := repository.NewServiceRepository()
	bookingRepo := repository.NewBookingRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	tokenStore := service.NewRedisTokenStore(redisClient)
	tokenIssuer := usecase.NewTokenIssuer(log, jwtService, tokenStore)
	geocoder := newGeocoder(cfg.Maps, redisClient, log)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, roleRepo, jwtService, tokenStore, tokenIssuer, auditService)
	userUsecase := usecase.NewUserUsecase(db, log, userRepo, providerRepo, tokenStore, auditService)
	providerUsecase := usecase.NewProviderUsecase(db, log, providerRepo, userRepo, roleRepo, bookingRepo, geocoder, tokenStore, tokenIssuer, auditService, app.dispatcher)
	serviceUsecase := usecase.NewServiceUsecase(db, log, serviceRepo, providerRepo, auditService)
	bookingUsecase := usecase.NewBookingUsecase(db, log, bookingRepo, providerRepo, serviceRepo, auditService, authz.NewBookingGuard(), app.locker, app.dispatcher)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, log)
	userHandler := handler.NewUserHandler(userUsecase, customValidator, log)
	providerHandler := handler.NewProviderHandler(providerUsecase, customValidator, log)
	serviceHandler := handler.NewServiceHandler(serviceUsecase, customValidator, log)
	bookingHandler := handler.NewBookingHandler(bookingUsecase, customValidator, log)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, log)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins)

	// Initialize router
	router := deliveryHttp.NewRouter(authHandler, userHandler, providerHandler, serviceHandler, bookingHandler, auditLogHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.log.Infof("Server starting on port %s", app.Config.App.Port)
		app.log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.log.Info("Server shutdown complete")
}

// Close stops background workers, then closes connections. The dispatcher
// drains its queue before the broker connection goes away.
func (app *App) Close() {
	if app.dispatcher != nil {
		app.dispatcher.Stop()
	}
	if app.locker != nil {
		app.locker.Stop()
	}

	if app.rabbitMQ != nil {
		if err := app.rabbitMQ.Close(); err != nil {
			app.log.Warnf("Failed to close RabbitMQ connection: %v", err)
		}
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
