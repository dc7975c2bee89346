package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifeledger-backend-go/internal/api"
	"lifeledger-backend-go/internal/checkout"
	"lifeledger-backend-go/internal/config"
	"lifeledger-backend-go/internal/core"
	"lifeledger-backend-go/internal/db"
	"lifeledger-backend-go/internal/middleware"
	"lifeledger-backend-go/pkg/cache"
	"lifeledger-backend-go/pkg/messagequeue"
)

func main() {
	// --- 1. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	// --- 2. Initialize Logger (Zap) ---
	var zapLogger *zap.Logger
	if strings.ToLower(appConfig.GinMode) == "release" {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Configuration loaded", zap.String("store", appConfig.StoreDriver), zap.String("ginMode", appConfig.GinMode))

	// --- 3. Initialize Firebase Admin SDK and the selected store ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()

	if !appConfig.FirebaseAuthEnabled() {
		zapLogger.Warn("No Firebase project or credentials configured; ID token verification relies on Application Default Credentials")
	}
	fb, err := db.NewFirebaseClients(initCtx, appConfig, zapLogger, appConfig.StoreDriver == config.StoreFirestore)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	store, err := db.NewStore(initCtx, appConfig, fb, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize store", zap.Error(err))
	}

	// --- 4. Optional feed cache and event queue ---
	var feedStore cache.Cache = cache.Noop{}
	if appConfig.RedisAddr != "" {
		rc, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to Redis", zap.Error(err))
		}
		feedStore = rc
	} else {
		zapLogger.Info("REDIS_ADDR not set, feed cache disabled")
	}

	var mq messagequeue.MessageQueue = messagequeue.Noop{}
	if appConfig.RabbitMQURL != "" {
		rmq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL}, zapLogger)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
		}
		mq = rmq
	} else {
		zapLogger.Info("RABBITMQ_URL not set, domain events disabled")
	}
	events := core.NewEventPublisher(mq, appConfig.EventsQueue, zapLogger)

	// --- 5. Initialize Services ---
	userService := core.NewUserService(store.Users, zapLogger)
	lessonService := core.NewLessonService(store.Lessons, store.Users, userService, feedStore, appConfig.CacheTTL, events, zapLogger)
	reportService := core.NewReportService(store.Reports, store.Lessons, events, zapLogger)
	billingService := core.NewBillingService(
		checkout.NewStripeGateway(appConfig.StripeSecretKey, zapLogger),
		store.Users,
		store.Payments,
		core.DefaultPremiumOffer(appConfig.PremiumCurrency, appConfig.PremiumPriceMinorUnits, appConfig.StripeDomain),
		events,
		zapLogger,
	)

	// --- 6. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))
	if appConfig.ClientURL == "" {
		zapLogger.Warn("CLIENT_URL is not configured, CORS allows every origin")
	}

	api.SetupRoutes(router, zapLogger, fb.Auth, api.Services{
		Users:   userService,
		Lessons: lessonService,
		Reports: reportService,
		Billing: billingService,
	})

	// --- 7. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 8. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), appConfig.ShutdownTimeout)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		zapLogger.Warn("Error closing store", zap.Error(err))
	}
	if err := feedStore.Close(); err != nil {
		zapLogger.Warn("Error closing cache", zap.Error(err))
	}
	if err := mq.Close(); err != nil {
		zapLogger.Warn("Error closing message queue", zap.Error(err))
	}
	if err := fb.Close(); err != nil {
		zapLogger.Warn("Error closing Firestore client", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
