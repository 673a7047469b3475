package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lk2023060901/trendpulse-backend/internal/analysis/biz"
	"github.com/lk2023060901/trendpulse-backend/internal/analysis/data"
	"github.com/lk2023060901/trendpulse-backend/internal/analysis/service"
	"github.com/lk2023060901/trendpulse-backend/internal/conf"
	"github.com/lk2023060901/trendpulse-backend/internal/pkg/logger"
	"github.com/lk2023060901/trendpulse-backend/internal/pkg/redis"
	"github.com/lk2023060901/trendpulse-backend/internal/server"
	"github.com/lk2023060901/trendpulse-backend/internal/trends/provider"
)

var (
	configFile = flag.String("config", "", "config file path, empty runs on defaults and environment")
)

func main() {
	flag.Parse()

	// Optional .env for local development
	_ = godotenv.Load()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize global logger
	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// Optional Redis: cache and rate limiter degrade away without it
	var redisClient *redis.Client
	resultCache := data.NewNoopResultCache()
	if config.Redis.Enabled {
		redisConfig := redis.DefaultConfig()
		redisConfig.Addr = config.Redis.Addr
		redisConfig.Username = config.Redis.Username
		redisConfig.Password = config.Redis.Password
		redisConfig.DB = config.Redis.DB
		redisConfig.PoolSize = config.Redis.PoolSize

		redisClient, err = redis.New(redisConfig, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()

		resultCache = data.NewRedisResultCache(redisClient, config.Cache.TTL)
	}

	// Initialize trend provider
	factory := provider.NewFactory()
	trendProvider, err := factory.Create(config.Provider.ToProviderConfig())
	if err != nil {
		log.Fatal("failed to create trend provider", zap.Error(err))
	}

	log.Info("trend provider ready",
		zap.String("provider", string(trendProvider.GetID())),
		zap.Bool("cache", config.Redis.Enabled))

	// Initialize use case and service
	analyzer := biz.NewTrendAnalyzer(trendProvider, resultCache, log)
	trendService := service.NewTrendService(analyzer, log.Logger)

	// Initialize server
	httpServer := server.NewHTTPServer(config, log, trendService, redisClient)

	// Start server in goroutine
	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
