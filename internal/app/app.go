package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/checkout/internal/health"
	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/checkout/internal/service/order"
	"github.com/vladislavdragonenkov/checkout/internal/service/outbox"
	"github.com/vladislavdragonenkov/checkout/internal/service/stock"
	"github.com/vladislavdragonenkov/checkout/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/checkout/internal/version"
)

// Config описывает минимальные настройки запуска приложения.
type Config struct {
	HTTPAddr      string
	MetricsAddr   string
	PostgresDSN   string
	KafkaBrokers  string
	StockStrategy string
}

// DefaultConfig возвращает базовые адреса API и HTTP-метрик.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:      ":8080",
		MetricsAddr:   ":9090",
		StockStrategy: StockStrategySnapshot,
	}
}

// Допустимые значения Config.StockStrategy.
const (
	StockStrategySnapshot = "snapshot"
	StockStrategyGuarded  = "guarded"
)

func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close(logger)

	// Инициализация Kafka producer (опционально)
	kafkaProducer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		logger.WithError(err).Warn("kafka is unavailable, outbox events will stay pending")
	}
	defer closeKafka(kafkaProducer, logger)

	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicOrderEvents)
		dlqPublisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
		worker := outbox.NewWorker(
			deps.OutboxRepo,
			publisher,
			outbox.WithDLQPublisher(dlqPublisher),
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		)
		go worker.Run(ctx)
	}

	strategy, err := buildStockStrategy(cfg.StockStrategy, deps)
	if err != nil {
		return err
	}

	creation := order.NewCreationService(
		deps.Directory,
		deps.Catalog,
		deps.Orders,
		order.WithLogger(logger.WithField("component", "order-creation")),
		order.WithStrategy(strategy),
		order.WithOutbox(deps.OutboxRepo),
	)

	// HTTP Health checks
	healthHandler := healthcheck.NewHandler(version.String())
	if deps.Store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return deps.Store.Ping(pingCtx)
		}))
	}
	if kafkaProducer != nil {
		// Недоступный Kafka не блокирует готовность: события копятся в outbox.
		healthHandler.RegisterChecker("kafka", healthcheck.NewDegradedChecker("kafka", kafkaProducer.Ping))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	mux := http.NewServeMux()
	httpapi.NewHandler(creation, deps.Orders, logger.WithField("component", "http-api")).Register(mux)

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// buildStockStrategy выбирает способ списания остатков по конфигурации.
func buildStockStrategy(name string, deps *Dependencies) (stock.Strategy, error) {
	switch name {
	case "", StockStrategySnapshot:
		return stock.NewSnapshotStrategy(deps.Catalog), nil
	case StockStrategyGuarded:
		return stock.NewGuardedStrategy(deps.Catalog), nil
	default:
		return nil, errors.New("unsupported stock strategy: " + name)
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
