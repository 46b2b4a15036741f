package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/ueba/internal/application"
	"github.com/turtacn/ueba/internal/config"
	"github.com/turtacn/ueba/internal/detector/baseline"
	"github.com/turtacn/ueba/internal/detector/feature"
	"github.com/turtacn/ueba/internal/detector/rules"
	"github.com/turtacn/ueba/internal/domain/repository"
	"github.com/turtacn/ueba/internal/domain/service"
	"github.com/turtacn/ueba/internal/infrastructure/alert"
	"github.com/turtacn/ueba/internal/infrastructure/modelstore"
	"github.com/turtacn/ueba/internal/infrastructure/monitoring"
	filerepo "github.com/turtacn/ueba/internal/infrastructure/persistence/file"
	"github.com/turtacn/ueba/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/ueba/internal/infrastructure/persistence/redis"
	"github.com/turtacn/ueba/internal/infrastructure/ratelimit"
	httpiface "github.com/turtacn/ueba/internal/interfaces/http"
	"github.com/turtacn/ueba/internal/interfaces/http/handlers"
)

func main() {
	startupLogger, _ := monitoring.NewZapLogger(&config.LogConfig{Level: "info", Format: "json"})

	cfg, err := config.LoadConfig(startupLogger)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	ctx := context.Background()

	tracing, err := monitoring.NewTracingManager(cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize tracing", err)
	}

	var db *postgres.DBConnection
	if cfg.Database.Enabled {
		db, err = postgres.NewDBConnection(&cfg.Database, appLogger)
		if err != nil {
			appLogger.Fatal(ctx, "failed to connect to database", err)
		}
		defer db.Close()
	}

	var redisConn *redis.Connection
	if cfg.Redis.Enabled {
		redisConn, err = redis.NewConnection(&cfg.Redis, appLogger)
		if err != nil {
			appLogger.Fatal(ctx, "failed to connect to redis", err)
		}
		defer redisConn.Close()
	}

	// Model artifacts are immutable for the process lifetime; a load failure
	// means the deployment is broken and startup must stop.
	var baselineRepo repository.BaselineRepository
	var personalityRepo repository.PersonalityRepository
	if cfg.Models.Source == "postgres" {
		baselineRepo = postgres.NewBaselineRepository(db)
		personalityRepo = postgres.NewPersonalityRepository(db)
	} else {
		baselineRepo = filerepo.NewBaselineRepository(cfg.Models.Baselines, feature.BaselineColumns())
		personalityRepo = filerepo.NewPersonalityRepository(cfg.Models.Personality)
	}
	store, err := modelstore.Load(ctx, cfg.Models, baselineRepo, personalityRepo, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to load model artifacts", err)
	}

	metrics := monitoring.NewMetrics()

	scoringSvc, err := application.NewScoringService(
		store.Forest,
		store.Markov,
		baseline.NewDetector(store.Baselines, feature.BaselineColumns()),
		rules.NewEngine(cfg.Rules),
		store.Personalities,
		cfg.Ensemble,
		appLogger,
	)
	if err != nil {
		appLogger.Fatal(ctx, "failed to build scoring service", err)
	}
	personalitySvc := application.NewPersonalityService(store.Personalities)

	var alertSvc service.AlertService
	var throttle service.AlertThrottle
	if cfg.Alerting.Enabled {
		producer := alert.NewKafkaProducer(cfg.Alerting, appLogger)
		defer producer.Close()
		alertSvc = producer
		if redisConn != nil {
			throttle = ratelimit.NewRedisThrottle(redisConn)
		} else {
			throttle = ratelimit.NewMemoryThrottle()
		}
	}
	dispatcher := application.NewAlertDispatcher(
		alertSvc,
		throttle,
		time.Duration(cfg.Alerting.SuppressionSeconds)*time.Second,
		metrics,
		appLogger,
	)

	healthHandler := handlers.NewHealthHandler(store)
	if db != nil {
		healthHandler.RegisterCheck("postgres", db.Ping)
	}
	if redisConn != nil {
		healthHandler.RegisterCheck("redis", redisConn.Ping)
	}

	router := httpiface.NewRouter(
		cfg,
		appLogger,
		metrics,
		tracing,
		handlers.NewAnalyzeHandler(scoringSvc, dispatcher, metrics, appLogger),
		handlers.NewPersonalityHandler(personalitySvc),
		healthHandler,
	)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info(ctx, "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := router.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "http shutdown failed", err)
		}
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "tracing shutdown failed", err)
		}
	}()

	if err := router.Start(); err != nil {
		appLogger.Fatal(ctx, "http server failed", err)
	}
}
