package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-admin/internal/backend"
	"github.com/jwalitptl/dental-admin/internal/config"
	"github.com/jwalitptl/dental-admin/internal/worker"
	"github.com/jwalitptl/dental-admin/pkg/logger"
	"github.com/jwalitptl/dental-admin/pkg/mailer"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

// metricsPortOffset puts the worker's /metrics next to the API port
const metricsPortOffset = 1

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	lg := logger.Setup(cfg.LoggerConfig())
	loc, _ := cfg.Location()

	if cfg.Secrets.ServiceToken == "" {
		log.Fatal().Msg("DENTAL_BACKEND_SERVICE_TOKEN is required to list appointments without a user session")
	}

	registry := prometheus.NewRegistry()
	m := metrics.New("dental_worker", registry)
	runs := promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "dental_worker",
		Name:      "reminder_messages_total",
		Help:      "Reminder outcomes per run",
	}, []string{"outcome"})

	client, err := backend.NewClient(backend.Config{
		BaseURL:      cfg.Backend.BaseURL,
		Timeout:      cfg.Backend.Timeout,
		MaxFailures:  cfg.Backend.MaxFailures,
		OpenTimeout:  cfg.Backend.OpenTimeout,
		ServiceToken: cfg.Secrets.ServiceToken,
		Location:     loc,
	}, lg, backend.WithMetrics(m))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create backend client")
	}

	reminders := worker.NewReminderWorker(client, mailer.New(cfg.SMTP, lg), worker.ReminderConfig{
		Schedule:    cfg.Reminder.Schedule,
		CountryCode: cfg.Reminder.CountryCode,
		ClinicName:  cfg.Reminder.ClinicName,
		Location:    loc,
	}, lg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.Reminder.Schedule, func() {
		start := time.Now()
		sum, err := reminders.Run(ctx)
		if err != nil {
			runs.WithLabelValues("error").Inc()
			lg.Error().Err(err).Msg("reminder run failed")
			return
		}
		runs.WithLabelValues("emailed").Add(float64(sum.Emailed))
		runs.WithLabelValues("link").Add(float64(sum.Links))
		runs.WithLabelValues("skipped").Add(float64(sum.Skipped))
		runs.WithLabelValues("failed").Add(float64(sum.Failed))
		lg.Info().Dur("took", time.Since(start)).Msg("reminder run finished")
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Reminder.Schedule).Msg("invalid reminder schedule")
	}
	c.Start()
	lg.Info().Str("schedule", cfg.Reminder.Schedule).Msg("reminder worker started")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port+metricsPortOffset),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info().Msg("shutting down worker...")

	cancel()
	stopped := c.Stop()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	select {
	case <-stopped.Done():
	case <-shutdownCtx.Done():
		lg.Warn().Msg("reminder run still in progress at shutdown")
	}
	_ = srv.Shutdown(shutdownCtx)

	lg.Info().Msg("worker exited properly")
}
