package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RishiKendai/overlap/internal/api"
	"github.com/RishiKendai/overlap/internal/cache"
	"github.com/RishiKendai/overlap/internal/canonical"
	"github.com/RishiKendai/overlap/internal/config"
	"github.com/RishiKendai/overlap/internal/configs/env"
	"github.com/RishiKendai/overlap/internal/infra/mongo"
	redisInfra "github.com/RishiKendai/overlap/internal/infra/redis"
	"github.com/RishiKendai/overlap/internal/logger"
	"github.com/RishiKendai/overlap/internal/metrics"
	"github.com/RishiKendai/overlap/internal/plagiarism"
	"github.com/RishiKendai/overlap/internal/preprocess"
	"github.com/RishiKendai/overlap/internal/repository"
	"github.com/RishiKendai/overlap/internal/stream"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("algorithm", string(cfg.DefaultAlgorithm)).Int("shingleSize", cfg.ShingleSize).Msg("Starting overlap server")

	metrics.InitPrometheus()
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := api.StartServer(metricsMux, cfg.MetricsPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(context.Background())

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	mongoRepo := repository.NewMongoRepository(mongoClient)
	documentsRepo := repository.NewDocumentsRepository(mongoRepo)
	reportsRepo := repository.NewReportsRepository(mongoRepo)
	if err := documentsRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure indexes")
	}

	canon, err := newCanonicalizer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create canonicalizer")
	}

	resultCache := cache.New(redisClient.Client, cfg.ResultCacheTTL)
	ingestSvc := preprocess.NewService(canon, documentsRepo, resultCache)

	if cfg.CorpusSeedFile != "" {
		if err := importSeed(ctx, ingestSvc, cfg.CorpusSeedFile); err != nil {
			log.Fatal().Err(err).Str("file", cfg.CorpusSeedFile).Msg("Failed to import corpus seed")
		}
	}

	workerPool := plagiarism.NewWorkerPool(ctx, cfg.MaxConcurrentChecks)
	defer workerPool.Close()

	checkSvc := plagiarism.NewService(
		plagiarism.ServiceConfig{
			ShingleSize:      cfg.ShingleSize,
			DefaultAlgorithm: cfg.DefaultAlgorithm,
			AlphabetSize:     cfg.AlphabetSize,
			Workers:          cfg.SearchWorkers,
			UnitTimeout:      cfg.UnitTimeout,
			CheckTimeout:     cfg.CheckTimeout,
		},
		canon,
		documentsRepo,
		reportsRepo,
		resultCache,
		plagiarism.NewStatusStore(redisClient.Client),
		workerPool,
	)

	// Redis stream consumer for corpus ingestion
	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey)
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		ingestSvc,
		retryHandler,
		cfg.StreamRetentionDuration,
	)

	consumerCtx, consumerCancel := context.WithCancel(ctx)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Str("consumer_name", consumerName).Msg("Redis consumer started")

	router := api.SetupRoutes(cfg, checkSvc, ingestSvc)
	srv := api.StartServer(router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down HTTP server")
	}

	consumerCancel()
	<-consumerDone

	if err := api.ShutdownServer(metricsServer, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}

func newCanonicalizer(cfg *config.Config) (canonical.Canonicalizer, error) {
	if cfg.Canonicalizer == config.CanonicalizerRemote {
		log.Info().Str("url", cfg.CanonicalizerURL).Msg("Using remote canonicalizer")
		return preprocess.NewRemoteCanonicalizer(cfg.CanonicalizerURL, cfg.CanonicalizerAPIKey, cfg.StemLanguage), nil
	}
	return canonical.NewPipeline(cfg.StemLanguage)
}

func importSeed(ctx context.Context, svc *preprocess.Service, path string) error {
	docs, err := repository.LoadSeedFile(path)
	if err != nil {
		return err
	}
	imported, skipped, err := svc.ImportSeed(ctx, docs)
	if err != nil {
		return err
	}
	log.Info().Str("file", path).Int("imported", imported).Int("skipped", skipped).Msg("Corpus seed imported")
	return nil
}
