package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/Payphone-Digital/bilemo/config"
	"github.com/Payphone-Digital/bilemo/internal/handler"
	"github.com/Payphone-Digital/bilemo/internal/middleware"
	"github.com/Payphone-Digital/bilemo/internal/repository"
	"github.com/Payphone-Digital/bilemo/internal/router"
	"github.com/Payphone-Digital/bilemo/internal/service"
	"github.com/Payphone-Digital/bilemo/pkg/cache"
	"github.com/Payphone-Digital/bilemo/pkg/database"
	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"github.com/Payphone-Digital/bilemo/pkg/metrics"
	"github.com/Payphone-Digital/bilemo/pkg/redis"
	"github.com/Payphone-Digital/bilemo/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize Zap logger
	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("pagination_offset_mode", config.Pagination.OffsetMode.String()),
	)

	validation.UseJSONFieldNames()

	db, err := database.NewPostgresDB(database.FromAppConfig(config))
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	if config.Seed.Enabled {
		admin := database.SuperAdmin{
			Username: config.Seed.SuperAdminUsername,
			Password: config.Seed.SuperAdminPassword,
			Email:    config.Seed.SuperAdminEmail,
		}
		if err := database.Seed(db, admin); err != nil {
			logger.GetLogger().Error("Failed to seed database", zap.Error(err))
		} else {
			logger.GetLogger().Info("Database seeded successfully")
		}
	}
	if config.Seed.Fixtures {
		if err := database.SeedFixtures(db); err != nil {
			logger.GetLogger().Error("Failed to load fixtures", zap.Error(err))
		}
	}

	// Metrics
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	if sqlDB, err := db.DB(); err == nil {
		if err := appMetrics.RegisterDBStats(sqlDB); err != nil {
			logger.GetLogger().Warn("Failed to register database metrics", zap.Error(err))
		}
	}

	// Cache: Redis when enabled and reachable, in-process otherwise
	var redisClient redis.Client
	var cacheService *service.CacheService
	if config.Redis.Enabled {
		redisClient, err = redis.NewClient(config)
		if err != nil {
			logger.GetLogger().Warn("Redis unavailable, falling back to in-memory cache", zap.Error(err))
			redisClient = nil
		}
	}
	if redisClient != nil {
		defer redisClient.Close()
		cacheService = service.NewRedisCacheService(redisClient, config.Cache.TTL)
	} else {
		memCache := cache.NewCache(time.Minute)
		defer memCache.Stop()
		cacheService = service.NewMemoryCacheService(memCache, config.Cache.TTL)
	}

	// Repositories
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	pages := service.NewPageSettings(config.Pagination)
	jwtService := service.NewJWTService(config.JWT)
	authService := service.NewAuthService(userRepo, jwtService)
	clientService := service.NewClientService(clientRepo, cacheService, pages)
	productService := service.NewProductService(productRepo, cacheService, pages)
	userService := service.NewUserService(userRepo, clientRepo, pages)

	r := router.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewClientHandler(clientService),
		handler.NewProductHandler(productService),
		handler.NewUserHandler(userService),
		handler.NewHealthHandler(db, redisClient),

		middleware.NewJWTMiddleware(authService),
		appMetrics,
		config,
	).SetupRoutes()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(config.Jobs.TokenCleanupSchedule, func() {
		cleanupExpiredTokens(authService)
	}); err != nil {
		logger.GetLogger().Fatal("Failed to schedule refresh token cleanup",
			zap.String("schedule", config.Jobs.TokenCleanupSchedule),
			zap.Error(err),
		)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:    ":" + config.App.Port,
		Handler: r,
	}

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().Error("Server forced to shutdown", zap.Error(err))
	}
}

// cleanupExpiredTokens clears refresh tokens past their expiry
func cleanupExpiredTokens(authService *service.AuthService) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cleaned, err := authService.CleanupExpiredTokens(ctx)
	if err != nil {
		logger.GetLogger().Warn("Refresh token cleanup failed", zap.Error(err))
		return
	}
	logger.GetLogger().Info("Refresh token cleanup finished", zap.Int64("cleaned_count", cleaned))
}
