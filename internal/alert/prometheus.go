package alert

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"rabbitmq-guard/internal/client"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// PrometheusExporter exposes the monitor's self-metrics over HTTP.
type PrometheusExporter struct {
	server  *http.Server
	metrics *client.Metrics
	logger  *logrus.Logger
	port    string
}

// NewPrometheusExporter builds an exporter around its own registry so the
// monitor's metrics never collide with a default-registry user.
func NewPrometheusExporter(port string, metrics *client.Metrics, logger *logrus.Logger) (*PrometheusExporter, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	if err := registry.Register(metrics); err != nil {
		return nil, fmt.Errorf("failed to register guard metrics: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	return &PrometheusExporter{
		server:  server,
		metrics: metrics,
		logger:  logger,
		port:    port,
	}, nil
}

// Start serves metrics until ctx is cancelled, then shuts down gracefully.
func (e *PrometheusExporter) Start(ctx context.Context) error {
	e.logger.Infof("Starting Prometheus exporter on port %s", e.port)
	e.logger.Infof("Metrics available at: http://localhost:%s/metrics", e.port)

	go func() {
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.logger.Errorf("Prometheus exporter error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e.logger.Info("Shutting down Prometheus exporter...")
	return e.server.Shutdown(shutdownCtx)
}

// GetMetrics returns the metrics instance registered with this exporter.
func (e *PrometheusExporter) GetMetrics() *client.Metrics {
	return e.metrics
}
