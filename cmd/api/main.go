package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fekuna/omnipos-pricing-service/config"
	"github.com/fekuna/omnipos-pricing-service/internal/app"
	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	lotListenerPkg "github.com/fekuna/omnipos-pricing-service/internal/lot/listener"
	"github.com/fekuna/omnipos-pricing-service/internal/notify"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/database"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/search"
	pricingUCPkg "github.com/fekuna/omnipos-pricing-service/internal/pricing/usecase"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		appLogger.Fatal("Invalid APP_TIMEZONE", zap.String("timezone", cfg.Server.Timezone), zap.Error(err))
	}

	// 3. Connect to Database
	db, err := app.OpenDB(cfg)
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to database", zap.String("driver", db.DriverName()))

	if err := database.Migrate(context.Background(), db); err != nil {
		appLogger.Fatal("Could not apply schema", zap.Error(err))
	}

	publishers := []notify.Publisher{}

	// 4. Initialize Redis
	var redisClient *cache.RedisClient
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		publishers = append(publishers, notify.NewRedisPublisher(redisClient.Client))
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 5. Initialize Kafka
	var weighingConsumer *broker.KafkaConsumer
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.EventsTopic,
		})
		defer producer.Close()
		publishers = append(publishers, notify.NewKafkaPublisher(producer))

		weighingConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.WeighingTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer weighingConsumer.Close()
		appLogger.Info("Connected to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("events_topic", cfg.Kafka.EventsTopic),
			zap.String("weighing_topic", cfg.Kafka.WeighingTopic),
		)
	}

	// 6. Initialize Elasticsearch
	var esClient *search.Client
	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err = search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, board indexing disabled", zap.Error(err))
			esClient = nil
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
			if err := pricingUCPkg.EnsureBoardIndex(context.Background(), esClient); err != nil {
				appLogger.Warn("Could not create price board index", zap.Error(err))
			}
		}
	}

	// 7. Initialize UseCases
	ucs := app.NewUseCases(app.Infra{
		DB:       db,
		Cache:    redisClient,
		ES:       esClient,
		Notifier: notify.NewFanout(publishers...),
		Location: loc,
	}, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 8. Start Listeners
	if weighingConsumer != nil {
		weighingListener := lotListenerPkg.NewWeighingListener(weighingConsumer, ucs.Lot, appLogger)
		go weighingListener.Start(ctx)
	}

	// 9. HTTP Server
	router := gin.New()
	router.Use(gin.Recovery(), auth.ActorMiddleware())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	ucs.RegisterRoutes(router.Group("/api/v1"), appLogger)

	httpServer := &http.Server{
		Addr:    normalizePort(cfg.Server.HTTPPort),
		Handler: router,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 10. gRPC Server for health checks
	port := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", port)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", port), zap.Error(err))
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", port))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
