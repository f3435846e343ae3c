package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nrgchamp/distilltwin/internal/config"
	"nrgchamp/distilltwin/internal/httpapi"
	"nrgchamp/distilltwin/internal/logging"
	"nrgchamp/distilltwin/internal/telemetry"
)

func main() {
	cfg := config.LoadEnv()
	log, logFile := logging.Init(cfg.LogDir)
	if logFile != nil {
		defer logFile.Close()
	}

	log.Info("starting distilltwin engine", slog.String("httpBind", cfg.HTTPBind))

	metrics := httpapi.NewMetrics()
	summaries := telemetry.NewSummaryPublisher(cfg.KafkaBrokers, cfg.SummaryTopic, log)
	events := telemetry.NewEventBridge(cfg.MQTTBroker, cfg.MQTTTopicPref, log)

	srv := httpapi.New(log, metrics, summaries, events, cfg.MaxConcurrentRuns)
	httpSrv := &http.Server{
		Addr:    cfg.HTTPBind,
		Handler: srv.Handler(),
	}
	metricsSrv := &http.Server{
		Addr:    cfg.MetricsBind,
		Handler: metrics.Handler(),
	}

	go func() {
		log.Info("http server listening", slog.String("addr", cfg.HTTPBind))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			os.Exit(1)
		}
	}()
	go func() {
		log.Info("metrics server listening", slog.String("addr", cfg.MetricsBind))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "err", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	_ = summaries.Close()
	events.Close()
	log.Info("bye")
}
