package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"fire-base/api/router"
	"fire-base/config"
	"fire-base/db"
	_ "fire-base/docs"
	"fire-base/eventbus"
	"fire-base/feeder"
	"fire-base/gateway"
	"fire-base/kvstore"
	"fire-base/logger"
	"fire-base/metrics"
	"fire-base/parser"
	"fire-base/repositories"
	"fire-base/services"
	"fire-base/store"
)

const (
	headlinesPerFeed = 5
	headlinesTTL     = 30 * time.Minute
	shutdownTimeout  = 10 * time.Second
)

// @title           FIRE Tribe Base API
// @version         1.0
// @description     Idea management for financial independence: brainstorm, coach and track FIRE ideas with Gemini.
// @BasePath        /api/v1
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: cfg.Logging.Service,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, ping, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Log.Errorf("failed to open %s storage: %v", cfg.Storage.Backend, err)
		os.Exit(1)
	}
	defer closeStorage()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	publisher := newPublisher(ctx, cfg.Kafka)
	defer publisher.Close()

	eventObserver := services.NewEventObserver(publisher, cfg.Kafka.Topic, m)
	st := store.New(
		repositories.NewIdeaRepository(kv, cfg.Storage.IdeasKey),
		store.WithObserver(m),
		store.WithObserver(eventObserver),
	)
	// 로드 실패는 치명적이지 않다. 빈 목록과 에러 알림으로 시작한다.
	if err := st.Init(ctx); err != nil {
		logger.Log.Warnf("starting with an empty collection: %v", err)
	}
	m.RegisterIdeaCount(func() int { return len(st.Ideas()) })

	quota := gateway.NewQuotaLimiter(cfg.AIQuota)
	gw := gateway.New(cfg.Gemini,
		gateway.WithQuota(quota),
		gateway.WithRecorder(m),
	)
	creds := services.NewCredentialService(
		repositories.NewCredentialRepository(kv, cfg.Storage.CredentialKey),
		config.EnvCredential,
		gw,
	)

	r := router.New(router.Deps{
		Store:          st,
		Ideas:          services.NewIdeaService(st, gw, creds, parser.NewEnricher(cfg.SourceEnrichment)),
		Credentials:    creds,
		Suggestions:    services.NewSuggestionService(feeder.NewInspiration(cfg.InspirationFeeds, headlinesPerFeed, headlinesTTL)),
		Quota:          quota,
		HTTPMetrics:    m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Ping:           ping,
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
	}).Handler(r)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("starting api server on %s (storage=%s)", cfg.Server.Addr, cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("api server error: %v", err)
			cancel()
		}
	}()

	// Graceful shutdown 설정
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Log.Info("received shutdown signal, shutting down api server...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("api server shutdown error: %v", err)
	}
	// 남은 이벤트를 발행한 뒤 publisher 를 닫는다.
	if err := eventObserver.Close(shutdownCtx); err != nil {
		logger.Log.Warnf("idea events not fully flushed: %v", err)
	}
	logger.Log.Info("api server stopped")
}

// openStorage returns the key-value backend selected by storage.backend along
// with a health check and a cleanup func.
func openStorage(ctx context.Context, cfg config.AppConfig) (kvstore.Store, func(context.Context) error, func(), error) {
	noop := func() {}
	switch cfg.Storage.Backend {
	case "memory":
		return kvstore.NewMemory(), nil, noop, nil
	case "file":
		path := cfg.Storage.FilePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(config.GetBasePath(), path)
		}
		kv, err := kvstore.NewFile(path)
		if err != nil {
			return nil, nil, noop, err
		}
		return kv, nil, noop, nil
	case "mongo":
		if err := db.InitMongo(ctx, cfg.Mongo); err != nil {
			return nil, nil, noop, err
		}
		ping := func(ctx context.Context) error { return db.Client().Ping(ctx, nil) }
		closeFn := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.CloseMongo(closeCtx); err != nil {
				logger.Log.Warnf("mongo disconnect: %v", err)
			}
		}
		return kvstore.NewMongo(db.Database()), ping, closeFn, nil
	case "redis":
		client, err := db.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, noop, err
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		closeFn := func() { _ = client.Close() }
		return kvstore.NewRedis(client, "firebase:"), ping, closeFn, nil
	}
	return nil, nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// newPublisher connects to Kafka when brokers are configured. Without brokers,
// or when the producer cannot be created, events are dropped.
func newPublisher(ctx context.Context, cfg config.KafkaConfig) eventbus.Publisher {
	if cfg.Brokers == "" {
		logger.Log.Info("kafka brokers not configured; idea events are disabled")
		return eventbus.NoopPublisher{}
	}
	if err := eventbus.EnsureTopic(ctx, cfg.Brokers, cfg.Topic, 3); err != nil {
		logger.Log.Warnf("failed to ensure kafka topic %s: %v", cfg.Topic, err)
	}
	pub, err := eventbus.NewKafkaPublisher(cfg.Brokers)
	if err != nil {
		logger.Log.Errorf("failed to create kafka publisher: %v", err)
		return eventbus.NoopPublisher{}
	}
	return pub
}
