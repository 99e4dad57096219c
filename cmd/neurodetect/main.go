package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"neurodetect/internal/api"
	"neurodetect/internal/cfg"
	"neurodetect/internal/classify"
	"neurodetect/internal/common"
	"neurodetect/internal/metrics"
	"neurodetect/internal/service"
	"neurodetect/internal/storage"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env load failed")
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize components
	m := metrics.New()
	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	qda, tabnet := initializeClassifiers(c, m)

	analyzer := service.NewAnalyzer(common.SamplingRate, qda, tabnet, service.Options{
		Store:      store,
		Metrics:    m,
		UseCleaned: c.UseCleanedSignal,
		Timeout:    c.PredictTimeout,
	})

	// Start metrics server
	startMetricsServer(ctx, c)

	// Start API server
	server := api.NewServer(analyzer, store, api.Config{
		Port:           c.ListenPort,
		UploadDir:      c.UploadDir,
		MaxUploadBytes: c.MaxUploadBytes,
	})
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("API server failed")
			cancel()
		}
	}()

	waitForShutdown(ctx, cancel, server)
}

// initializeStorage opens the analysis store, continuing without persistence
// when it is unavailable.
func initializeStorage(c cfg.Settings) *storage.Store {
	if err := os.MkdirAll(c.DataPath, 0o750); err != nil {
		log.Warn().Err(err).Msg("data path unavailable, continuing without persistence")
		return nil
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("storage initialization failed, continuing without persistence")
		return nil
	}
	return store
}

// initializeClassifiers loads both models. A model that fails to load stays
// in the pipeline and reports itself unavailable per prediction.
func initializeClassifiers(c cfg.Settings, m *metrics.Metrics) (*classify.Classifier, *classify.Classifier) {
	sink := metrics.NewSink(m)

	qdaParams, qdaErr := classify.LoadModelParams(c.QDAModelPath)
	tabnetParams, tabnetErr := classify.LoadModelParams(c.TabNetModelPath)

	var unavailable float64
	if qdaErr != nil {
		unavailable++
	}
	if tabnetErr != nil {
		unavailable++
	}
	m.ModelsUnavailable.Set(unavailable)

	qda := classify.NewClassifier("QDA", classify.QDAThresholds(), qdaParams, qdaErr, sink)
	tabnet := classify.NewClassifier("TabNet", classify.TabNetThresholds(), tabnetParams, tabnetErr, sink)
	return qda, tabnet
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(ctx context.Context, c cfg.Settings) {
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", c.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			if err := server.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

// waitForShutdown waits for shutdown signals and drains the API server.
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, server *api.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("API server shutdown timed out")
	}
}
