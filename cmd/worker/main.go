package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/health-api/internal/config"
	"github.com/jwalitptl/health-api/internal/email"
	"github.com/jwalitptl/health-api/internal/handler/health"
	"github.com/jwalitptl/health-api/internal/handler/prometheus"
	"github.com/jwalitptl/health-api/internal/middleware"
	"github.com/jwalitptl/health-api/internal/repository"
	"github.com/jwalitptl/health-api/internal/repository/postgres"
	"github.com/jwalitptl/health-api/internal/service/audit"
	"github.com/jwalitptl/health-api/internal/worker"
	"github.com/jwalitptl/health-api/pkg/logger"
	"github.com/jwalitptl/health-api/pkg/messaging"
	"github.com/jwalitptl/health-api/pkg/messaging/redis"
	"github.com/jwalitptl/health-api/pkg/metrics"
)

func main() {
	var configPath string
	rootCmd := &cobra.Command{
		Use:          "health-worker",
		Short:        "Deliver generated reports and prune the audit log",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default ./config.yaml)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	level, _ := logger.ParseLevel(cfg.Log.Level)
	log := logger.NewLogger(&logger.Config{Level: level, JSON: cfg.Log.JSON})
	log.SetGlobal()

	prom := prometheus.New(cfg.Metrics.Namespace)
	m := metrics.NewMetrics(cfg.Metrics.Namespace, prom.Registry())
	workerMetrics := worker.NewWorkerMetrics(cfg.Metrics.Namespace, prom.Registry())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]health.Pinger{}

	var repo repository.AuditRepository
	var db *sqlx.DB
	if cfg.Database.DSN != "" {
		db, err = postgres.NewDB(ctx, postgres.Config{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		repo = postgres.NewAuditRepository(postgres.NewBaseRepository(db))
	}
	auditSvc := audit.NewService(repo, m)
	if auditSvc.Enabled() {
		checks["database"] = auditSvc
	}

	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redis.NewRedisBroker(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, *log.Zerolog())
		if err != nil {
			return err
		}
		defer broker.Close()
		if p, ok := broker.(health.Pinger); ok {
			checks["redis"] = p
		}
	}

	if broker == nil && !auditSvc.Enabled() {
		return errors.New("nothing to do: neither redis.url nor database.dsn is configured")
	}

	var wg sync.WaitGroup

	if auditSvc.Enabled() {
		cleanup := worker.NewAuditCleanupWorker(auditSvc, log, cfg.Audit.RetentionDays, cfg.Audit.CleanupInterval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			cleanup.Start(ctx)
		}()
	}

	if broker != nil {
		mailer := email.NewService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			To:       cfg.SMTP.To,
		})
		if !mailer.Enabled() {
			log.Warn(nil, "smtp is not configured; report events will only be audited")
		}
		events := worker.NewReportEventWorker(broker, cfg.Redis.ChannelPrefix, mailer, auditSvc, log, workerMetrics)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := events.Start(ctx); err != nil {
				log.Error(err, "report event worker stopped")
				cancel()
			}
		}()
	}

	// Health and metrics endpoints
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.Recovery())
	health.NewHandler(checks).RegisterRoutes(engine.Group(""))
	engine.GET("/metrics", prom.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "health server failed")
		}
	}()

	log.Info("worker started", "port", cfg.Worker.Port, "events", broker != nil, "audit_cleanup", auditSvc.Enabled())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Info("shutting down worker...")
	cancel()
	wg.Wait()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}
