package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grantflow/internal/collaborator/drafting"
	"grantflow/internal/collaborator/extraction"
	"grantflow/internal/collaborator/ocr"
	"grantflow/internal/dossier/cache"
	"grantflow/internal/dossier/handler"
	"grantflow/internal/dossier/metrics"
	dossierservice "grantflow/internal/dossier/service"
	dossierstore "grantflow/internal/dossier/store"
	"grantflow/internal/platform/blob"
	"grantflow/internal/platform/config"
	"grantflow/internal/platform/httpserver"
	"grantflow/internal/platform/logger"
	"grantflow/internal/platform/middleware"
	platformredis "grantflow/internal/platform/redis"
	audit "grantflow/pkg/platform/audit"
	"grantflow/pkg/platform/audit/publisher"
	auditmemory "grantflow/pkg/platform/audit/store/memory"
	auditpostgres "grantflow/pkg/platform/audit/store/postgres"
)

// main wires dependencies and owns the server lifecycle. Every external
// system is optional: without Postgres, Redis, or Kafka the process runs on
// in-memory stores, which is the development and test setup.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var dossiers dossierstore.Store = dossierstore.NewInMemoryStore()
	var auditStore audit.Store = auditmemory.NewInMemoryStore()
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pgStore := dossierstore.NewPostgres(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Error("failed to ensure dossier schema", "error", err)
			os.Exit(1)
		}
		dossiers = pgStore

		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open audit database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pgAudit := auditpostgres.New(db)
		if err := pgAudit.EnsureSchema(ctx); err != nil {
			log.Error("failed to ensure audit schema", "error", err)
			os.Exit(1)
		}
		auditStore = pgAudit
		log.Info("using postgres stores")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	publisherOpts := []publisher.Option{publisher.WithAsyncBuffer(1024)}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := publisher.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		publisherOpts = append(publisherOpts, publisher.WithSink(sink))
		log.Info("audit events forwarded to kafka", "topic", cfg.Kafka.AuditTopic)
	}
	auditPublisher := publisher.NewPublisher(auditStore, publisherOpts...)
	defer auditPublisher.Close()

	serviceOpts := []dossierservice.Option{
		dossierservice.WithLogger(log),
		dossierservice.WithMetrics(metrics.New()),
		dossierservice.WithAuditPublisher(auditPublisher),
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		serviceOpts = append(serviceOpts, dossierservice.WithReportCache(
			cache.New(redisClient.Client, config.ReportCacheTTL)))
		log.Info("report cache enabled")
	}

	if url := cfg.Collaborators.ExtractionURL; url != "" {
		serviceOpts = append(serviceOpts, dossierservice.WithExtractor(extraction.NewClient(url)))
	}
	if url := cfg.Collaborators.OCRURL; url != "" {
		serviceOpts = append(serviceOpts, dossierservice.WithOCRProcessor(ocr.NewClient(url)))
	}
	if url := cfg.Collaborators.DraftingURL; url != "" {
		serviceOpts = append(serviceOpts, dossierservice.WithDrafter(drafting.NewClient(url)))
	}

	svc := dossierservice.New(dossiers, blob.NewInMemoryStore(), serviceOpts...)

	router := chi.NewRouter()
	router.Use(middleware.RequestMeta)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	auditHandler := handler.NewAudit(auditPublisher)
	router.Route("/api/v2", func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.JWTSigningKey, log))
		handler.New(svc, log).Register(r)
		handler.NewCatalog().Register(r)
		auditHandler.Register(r)
	})
	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.AdminToken, log))
		auditHandler.RegisterAdmin(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting grantflow", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
