package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-admin/internal/backend"
	"github.com/jwalitptl/dental-admin/internal/config"
	"github.com/jwalitptl/dental-admin/internal/handler"
	actionHandler "github.com/jwalitptl/dental-admin/internal/handler/action"
	activityHandler "github.com/jwalitptl/dental-admin/internal/handler/activity"
	authHandler "github.com/jwalitptl/dental-admin/internal/handler/auth"
	bookingHandler "github.com/jwalitptl/dental-admin/internal/handler/booking"
	budgetHandler "github.com/jwalitptl/dental-admin/internal/handler/budget"
	calendarHandler "github.com/jwalitptl/dental-admin/internal/handler/calendar"
	eventsHandler "github.com/jwalitptl/dental-admin/internal/handler/events"
	healthHandler "github.com/jwalitptl/dental-admin/internal/handler/health"
	patientHandler "github.com/jwalitptl/dental-admin/internal/handler/patient"
	rescheduleHandler "github.com/jwalitptl/dental-admin/internal/handler/reschedule"
	staffHandler "github.com/jwalitptl/dental-admin/internal/handler/staff"
	"github.com/jwalitptl/dental-admin/internal/middleware"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/repository/memory"
	"github.com/jwalitptl/dental-admin/internal/repository/postgres"
	"github.com/jwalitptl/dental-admin/internal/router"
	actionService "github.com/jwalitptl/dental-admin/internal/service/action"
	activityService "github.com/jwalitptl/dental-admin/internal/service/activity"
	authService "github.com/jwalitptl/dental-admin/internal/service/auth"
	bookingService "github.com/jwalitptl/dental-admin/internal/service/booking"
	budgetService "github.com/jwalitptl/dental-admin/internal/service/budget"
	calendarService "github.com/jwalitptl/dental-admin/internal/service/calendar"
	patientService "github.com/jwalitptl/dental-admin/internal/service/patient"
	rescheduleService "github.com/jwalitptl/dental-admin/internal/service/reschedule"
	staffService "github.com/jwalitptl/dental-admin/internal/service/staff"
	"github.com/jwalitptl/dental-admin/pkg/logger"
	"github.com/jwalitptl/dental-admin/pkg/mailer"
	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/jwalitptl/dental-admin/pkg/messaging/redis"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
	"github.com/jwalitptl/dental-admin/pkg/session"
	"github.com/jwalitptl/dental-admin/pkg/validator"
)

const activityRingSize = 1000

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	lg := logger.Setup(cfg.LoggerConfig())

	loc, _ := cfg.Location()
	calendarWindow, _ := cfg.Hours.CalendarWindow()
	rescheduleWindow, _ := cfg.Hours.RescheduleWindow()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("dental_admin", registry)

	ctx := context.Background()
	checks := map[string]healthHandler.Check{}

	// Local activity log: postgres when a DSN is configured, memory otherwise
	activityRepo, db := openActivityStore(ctx, cfg, lg)
	if db != nil {
		defer db.Close()
		checks["database"] = db.PingContext
	}

	broker := openBroker(cfg, lg)
	defer broker.Close()

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

	codec, err := session.NewCodec(cfg.Secrets.SessionSecret, session.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
		Domain:     cfg.Session.Domain,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session codec")
	}

	v := validator.New()
	sender := mailer.New(cfg.SMTP, lg)

	// Services
	activitySvc := activityService.NewService(activityRepo, lg)
	authSvc := authService.NewService(client, codec, activitySvc, lg)
	calendarSvc := calendarService.NewService(client, calendarWindow, loc, broker, m, activitySvc, lg)
	rescheduleSvc := rescheduleService.NewService(client, calendarSvc, rescheduleWindow, loc, m, activitySvc, lg)
	actionSvc := actionService.NewService(calendarSvc, rescheduleSvc, cfg.Reminder.CountryCode, cfg.Reminder.ClinicName, m, lg)
	bookingSvc := bookingService.NewService(bookingService.Config{
		Services:   cfg.Booking.Services,
		Latency:    cfg.Booking.Latency,
		Window:     rescheduleWindow,
		Location:   loc,
		ClinicName: cfg.Reminder.ClinicName,
	}, client, v, sender, broker, m, lg)
	patientSvc := patientService.NewService(openPatientStore(cfg, client, lg), activitySvc, lg)
	staffSvc := staffService.NewService(client.Staff(), v, activitySvc, lg)
	budgetSvc := budgetService.NewService(client, budgetService.PDFOptions{
		ClinicName: cfg.PDF.ClinicName,
		LogoPath:   cfg.PDF.LogoPath,
		Currency:   cfg.PDF.Currency,
		Compress:   true,
	}, m, activitySvc, lg)

	// Public endpoints that accept credentials or create records share a
	// per-client limiter
	limit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		limit = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   cfg.RateLimit.RequestsPerSecond,
			Burst: cfg.RateLimit.Burst,
		}).RateLimit()
	}

	auth := authHandler.NewHandler(authSvc, codec, v, limit)
	gate := middleware.NewGate(codec, middleware.GateConfig{
		LoginPath: cfg.Gate.LoginPath,
		HomePath:  cfg.Gate.HomePath,
		Protected: cfg.Gate.ProtectedPrefix,
	})

	r := router.NewRouter(gate, router.Handlers{
		Public: []handler.Registrar{
			healthHandler.NewHandler(registry, checks),
			auth,
			bookingHandler.NewHandler(bookingSvc, limit),
		},
		App: []handler.Registrar{
			handler.RegistrarFunc(auth.RegisterAppRoutes),
			calendarHandler.NewHandler(calendarSvc, loc),
			actionHandler.NewHandler(actionSvc),
			rescheduleHandler.NewHandler(rescheduleSvc),
			patientHandler.NewHandler(patientSvc),
			staffHandler.NewHandler(staffSvc),
			budgetHandler.NewHandler(budgetSvc),
			activityHandler.NewHandler(activitySvc),
			eventsHandler.NewHandler(broker, calendarSvc, lg),
		},
	}, router.RouterConfig{
		Mode:          cfg.Server.Mode,
		CORSConfig:    middleware.DefaultCORSConfig(cfg.CORS.AllowedOrigins...),
		Security:      middleware.DefaultSecurityConfig(cfg.Session.Secure),
		StaticDir:     cfg.StaticDir,
		MetricsPrefix: "dental_admin_http",
		Registerer:    registry,
	})
	r.Setup()

	// WriteTimeout stays 0 by default so the event stream is not cut
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		lg.Info().Int("port", cfg.Server.Port).Str("backend", cfg.Backend.BaseURL).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("server forced to shutdown")
	}

	lg.Info().Msg("server exited properly")
}

func openActivityStore(ctx context.Context, cfg *config.Config, lg zerolog.Logger) (repository.ActivityRepository, *sqlx.DB) {
	if cfg.Secrets.DatabaseDSN == "" {
		lg.Info().Int("capacity", activityRingSize).Msg("activity log kept in memory")
		return memory.NewActivityRing(activityRingSize), nil
	}

	db, err := postgres.NewDB(ctx, cfg.Secrets.DatabaseDSN, postgres.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	return postgres.NewActivityRepository(postgres.NewBaseRepository(db)), db
}

func openPatientStore(cfg *config.Config, client *backend.Client, lg zerolog.Logger) repository.PatientRepository {
	if cfg.Patients.Store != config.PatientStoreMemory {
		return client.Patients()
	}
	var seed []*model.Patient
	if cfg.Patients.Demo {
		seed = memory.DemoPatients()
	}
	lg.Warn().Int("seeded", len(seed)).Msg("patients kept in memory, changes are lost on restart")
	return memory.NewPatientStore(seed...)
}

func openBroker(cfg *config.Config, lg zerolog.Logger) messaging.Broker {
	if cfg.Redis.URL == "" {
		lg.Info().Msg("redis not configured, using in-process broker")
		return messaging.NewLocalBroker()
	}
	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), lg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	return broker
}
