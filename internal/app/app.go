package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/shopcore/internal/health"
	"github.com/vladislavdragonenkov/shopcore/internal/httpx"
	"github.com/vladislavdragonenkov/shopcore/internal/metrics"
	"github.com/vladislavdragonenkov/shopcore/internal/service/analytics"
	"github.com/vladislavdragonenkov/shopcore/internal/service/checkout"
	"github.com/vladislavdragonenkov/shopcore/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run собирает сервис из конфигурации и обслуживает запросы до отмены
// контекста. API и метрики слушают на отдельных адресах.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	logger.Info(version.String())

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	var coordinator *checkout.Coordinator
	if deps.KafkaProducer != nil {
		coordinator = checkout.NewCoordinatorWithKafka(deps.Checkout, deps.KafkaProducer, logger.WithField("component", "checkout"))
	} else {
		coordinator = checkout.NewCoordinator(deps.Checkout, logger.WithField("component", "checkout"))
	}
	aggregator := analytics.NewAggregator(deps.Analytics, logger.WithField("component", "analytics"))

	healthHandler := health.NewHandler(version.String())
	deps.RegisterHealthCheckers(healthHandler)

	handler := httpx.NewHandler(
		coordinator,
		aggregator,
		deps.Customers,
		deps.Products,
		deps.Orders,
		logger.WithField("component", "http"),
	)
	router := httpx.NewRouter(handler, healthHandler, metrics.NewHTTPMetrics())

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(healthHandler)}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Infof("API сервер слушает %s", cfg.HTTPAddr)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.Infof("метрики доступны по адресу %s/metrics", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("получен сигнал остановки, останавливаем серверы")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// metricsMux собирает служебный сервер: метрики Prometheus и health-пробы.
func metricsMux(healthHandler *health.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", health.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	return mux
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http server shutdown with error")
	}
}
