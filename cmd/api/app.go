package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/health-api/internal/config"
	"github.com/jwalitptl/health-api/internal/email"
	analysishandler "github.com/jwalitptl/health-api/internal/handler/analysis"
	audithandler "github.com/jwalitptl/health-api/internal/handler/audit"
	authhandler "github.com/jwalitptl/health-api/internal/handler/auth"
	exporthandler "github.com/jwalitptl/health-api/internal/handler/export"
	"github.com/jwalitptl/health-api/internal/handler/health"
	"github.com/jwalitptl/health-api/internal/handler/insights"
	"github.com/jwalitptl/health-api/internal/handler/prometheus"
	"github.com/jwalitptl/health-api/internal/handler/records"
	reportshandler "github.com/jwalitptl/health-api/internal/handler/reports"
	"github.com/jwalitptl/health-api/internal/middleware"
	"github.com/jwalitptl/health-api/internal/report"
	"github.com/jwalitptl/health-api/internal/repository"
	"github.com/jwalitptl/health-api/internal/repository/filestore"
	"github.com/jwalitptl/health-api/internal/repository/postgres"
	"github.com/jwalitptl/health-api/internal/router"
	"github.com/jwalitptl/health-api/internal/service/analysis"
	"github.com/jwalitptl/health-api/internal/service/audit"
	authsvc "github.com/jwalitptl/health-api/internal/service/auth"
	"github.com/jwalitptl/health-api/internal/service/export"
	reportsvc "github.com/jwalitptl/health-api/internal/service/report"
	"github.com/jwalitptl/health-api/internal/service/snapshot"
	"github.com/jwalitptl/health-api/pkg/analyzer"
	"github.com/jwalitptl/health-api/pkg/auth"
	"github.com/jwalitptl/health-api/pkg/logger"
	"github.com/jwalitptl/health-api/pkg/messaging"
	"github.com/jwalitptl/health-api/pkg/messaging/redis"
	"github.com/jwalitptl/health-api/pkg/metrics"
)

// app holds everything the server needs and what must be released on exit.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	prom      *prometheus.Handler
	metrics   *metrics.Metrics
	files     *filestore.Store
	snapshots *snapshot.Service
	reports   *report.Store
	db        *sqlx.DB
	broker    messaging.Broker
	auditor   *audit.AuditLogger
	reportSvc *reportsvc.Service
}

func newLogger(cfg *config.Config) *logger.Logger {
	level, _ := logger.ParseLevel(cfg.Log.Level)
	log := logger.NewLogger(&logger.Config{Level: level, JSON: cfg.Log.JSON})
	log.SetGlobal()
	return log
}

// newCore wires the read side: record store, aggregator and report store.
// It needs no network.
func newCore(cfg *config.Config, log *logger.Logger) *app {
	prom := prometheus.New(cfg.Metrics.Namespace)
	m := metrics.NewMetrics(cfg.Metrics.Namespace, prom.Registry())

	files := filestore.New(filestore.Config{
		DataDir:       cfg.Data.Dir,
		LabRoots:      cfg.Data.LabRoots,
		LabCategories: cfg.Data.LabCategories,
	}, log, m)

	return &app{
		cfg:       cfg,
		log:       log,
		prom:      prom,
		metrics:   m,
		files:     files,
		snapshots: snapshot.NewService(files, log),
		reports:   report.NewStore(cfg.Reports.OutputDir, log),
	}
}

// connect opens the optional database and broker.
func (a *app) connect(ctx context.Context) error {
	if a.cfg.Database.DSN != "" {
		db, err := postgres.NewDB(ctx, postgres.Config{
			DSN:             a.cfg.Database.DSN,
			MaxOpenConns:    a.cfg.Database.MaxOpenConns,
			MaxIdleConns:    a.cfg.Database.MaxIdleConns,
			ConnMaxLifetime: a.cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return fmt.Errorf("failed to migrate audit schema: %w", err)
		}
		a.db = db
	}

	if a.cfg.Redis.URL != "" {
		broker, err := redis.NewRedisBroker(ctx, redisConfig(a.cfg), *a.log.Zerolog())
		if err != nil {
			return err
		}
		a.broker = broker
	}
	return nil
}

func redisConfig(cfg *config.Config) redis.Config {
	return redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}
}

func (a *app) auditService() *audit.Service {
	var repo repository.AuditRepository
	if a.db != nil {
		repo = postgres.NewAuditRepository(postgres.NewBaseRepository(a.db))
	}
	return audit.NewService(repo, a.metrics)
}

// router assembles the HTTP surface.
func (a *app) router() (*router.Router, error) {
	cfg := a.cfg
	auditSvc := a.auditService()
	a.auditor = audit.NewAuditLogger(auditSvc, a.log)

	client := analyzer.NewAnthropicClient(analyzer.AnthropicConfig{
		APIKey:          cfg.Analysis.APIKey,
		BaseURL:         cfg.Analysis.BaseURL,
		Model:           cfg.Analysis.Model,
		MaxTokens:       cfg.Analysis.MaxTokens,
		Timeout:         cfg.Analysis.Timeout,
		BreakerFailures: cfg.Analysis.BreakerFailures,
	}, a.log)
	if !client.Configured() {
		a.log.Warn(nil, "ANTHROPIC_API_KEY is not set; analysis and report generation will fail")
	}
	analysisSvc := analysis.NewService(a.snapshots, client, a.metrics, a.log, cfg.Analysis.Timeout)

	// With a broker the worker delivers mail; otherwise the API does.
	var publisher messaging.Publisher = messaging.NopPublisher{}
	var mailer email.Service = email.NewService(smtpConfig(cfg))
	if a.broker != nil {
		publisher = messaging.NewPublisher(a.broker, cfg.Redis.ChannelPrefix)
		mailer = email.Disabled{}
	}
	a.reportSvc = reportsvc.NewService(analysisSvc, a.reports, publisher, mailer, a.metrics, a.log)

	checks := map[string]health.Pinger{"records": a.files}
	if a.db != nil {
		checks["database"] = auditSvc
	}
	if p, ok := a.broker.(health.Pinger); ok {
		checks["redis"] = p
	}

	handlers := router.Handlers{
		Health:   health.NewHandler(checks),
		Records:  records.NewHandler(a.snapshots, a.auditor),
		Insights: insights.NewHandler(a.snapshots, a.auditor),
		Analysis: analysishandler.NewHandler(analysisSvc, a.auditor),
		Reports:  reportshandler.NewHandler(a.reportSvc, a.auditor),
		Export:   exporthandler.NewHandler(export.NewService(a.snapshots, a.metrics, a.log), a.auditor),
		Audit:    audithandler.NewHandler(auditSvc),
	}

	var authMW *middleware.AuthMiddleware
	if cfg.Auth.Enabled {
		jwtSvc, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWTExpiry())
		if err != nil {
			return nil, fmt.Errorf("failed to create token service: %w", err)
		}
		svc := authsvc.NewService(cfg.Auth.PasswordHash, jwtSvc, a.log)
		handlers.Auth = authhandler.NewHandler(svc, a.auditor)
		authMW = middleware.NewAuthMiddleware(svc)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	var rl *middleware.RateLimiterConfig
	if cfg.RateLimit.Enabled {
		c := middleware.DefaultRateLimiterConfig()
		c.Rate = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		c.Burst = cfg.RateLimit.Burst
		rl = &c
	}

	var prom *prometheus.Handler
	if cfg.Metrics.Enabled {
		prom = a.prom
	}

	r := router.NewRouter(authMW, prom, handlers, router.RouterConfig{
		Timeout:      cfg.ServerTimeout(),
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		CORSConfig:   cors,
		RateLimit:    rl,
	})
	r.Setup()
	return r, nil
}

func smtpConfig(cfg *config.Config) email.Config {
	return email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
	}
}

// close waits for background work and releases connections.
func (a *app) close() {
	if a.reportSvc != nil {
		a.reportSvc.Wait()
	}
	if a.auditor != nil {
		a.auditor.Wait()
	}
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.log.Warn(err, "failed to close broker")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(err, "failed to close database")
		}
	}
}
