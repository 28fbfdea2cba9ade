package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gurukul-labs/gurukul/api/audit"
	"github.com/gurukul-labs/gurukul/api/cache"
	"github.com/gurukul-labs/gurukul/api/config"
	"github.com/gurukul-labs/gurukul/api/controller"
	"github.com/gurukul-labs/gurukul/api/db"
	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/router"
	"github.com/gurukul-labs/gurukul/api/service"
	"github.com/gurukul-labs/gurukul/api/util"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	logger.InitLogger(config.GetString("log.dir"), config.GetString("log.level"))
	defer logger.Sync()

	if err := db.InitPostgres(); err != nil {
		logger.Fatal("Failed to initialize Postgres", zap.Error(err))
	}
	defer db.ClosePostgres()

	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)

	// Cache tiers are built here and injected; nothing else constructs one.
	caches := cache.NewCaches(
		cacheTierConfig("query"),
		cacheTierConfig("stats"),
		cacheTierConfig("public"),
	)
	defer caches.Close()

	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	validationUtil := util.NewValidationUtil()
	notificationService := util.NewNotificationService()

	services := service.InitializeServices(
		db.DB,
		caches,
		auditService,
		validationUtil,
		notificationService,
		eventBus,
		db.RedisLocker{},
	)
	controllers := controller.InitializeControllers(services, caches)

	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(
		controllers,
		config.GetString("auth.jwtSecret"),
		config.GetInt("ratelimit.requests"),
		config.GetDuration("ratelimit.window"),
	)

	server := &http.Server{
		Addr:    ":" + config.GetString("server.port"),
		Handler: engine,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func cacheTierConfig(tier string) cache.Config {
	return cache.Config{
		TTL:           config.GetDuration("cache." + tier + ".ttl"),
		MaxEntries:    config.GetInt("cache." + tier + ".maxEntries"),
		SweepInterval: config.GetDuration("cache." + tier + ".sweepInterval"),
	}
}
