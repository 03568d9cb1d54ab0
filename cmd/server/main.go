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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"pinky/internal/jwt_token"
	"pinky/internal/platform/config"
	"pinky/internal/platform/httpserver"
	"pinky/internal/platform/logger"
	"pinky/internal/platform/metrics"
	"pinky/internal/platform/middleware"
	"pinky/internal/platform/postgres"
	"pinky/internal/platform/redis"
	pointHandler "pinky/internal/point/handler"
	pointService "pinky/internal/point/service"
	ledgerStore "pinky/internal/point/store/ledger"
	policyStore "pinky/internal/point/store/policy"
	promiseHandler "pinky/internal/promise/handler"
	"pinky/internal/promise/ports"
	promiseService "pinky/internal/promise/service"
	"pinky/internal/promise/sharecache"
	evaluationStore "pinky/internal/promise/store/evaluation"
	guestStore "pinky/internal/promise/store/guest"
	promiseStore "pinky/internal/promise/store/promise"
	shareStore "pinky/internal/promise/store/share"
	userHandler "pinky/internal/user/handler"
	userService "pinky/internal/user/service"
	userStore "pinky/internal/user/store"
	"pinky/pkg/platform/audit"
	"pinky/pkg/platform/audit/publisher"
)

// main wires the stores, services, and HTTP surface. Business logic lives in
// the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(db, cfg.MigrationsPath); err != nil {
		return err
	}

	cache, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	var auditor audit.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := publisher.NewKafka(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafka.Close(flushCtx); err != nil {
				log.Warn("audit publisher close failed", "error", err)
			}
		}()
		auditor = kafka
	} else {
		log.Warn("no kafka brokers configured, audit events stay in process")
		auditor = publisher.NewMemory()
	}

	m := metrics.New()
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "pinky")

	users := userStore.NewPostgres(db)
	promises := promiseStore.NewPostgres(db)
	guests := guestStore.NewPostgres(db)
	policies := policyStore.NewPostgres(db)
	ledger := ledgerStore.NewPostgres(db)
	evaluations := evaluationStore.NewPostgres(db)

	var shares ports.ShareStore = shareStore.NewPostgres(db)
	if cache != nil {
		shares = sharecache.New(shares, cache.Client, log)
	}

	promiseSvc, err := promiseService.New(promises, shares, guests, evaluations, users,
		promiseService.WithLogger(log),
		promiseService.WithMetrics(m),
		promiseService.WithAuditPublisher(auditor),
	)
	if err != nil {
		return err
	}
	pointSvc, err := pointService.New(policies, ledger, users,
		pointService.WithLogger(log),
		pointService.WithMetrics(m),
		pointService.WithAuditPublisher(auditor),
	)
	if err != nil {
		return err
	}
	userSvc, err := userService.New(users, jwtService, userService.WithLogger(log))
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Device)
	router.Use(middleware.Latency(m))

	promiseHandler.New(promiseSvc, log, jwtService, cfg.ShareBaseURL).Register(router)
	pointHandler.New(pointSvc, log, cfg.AdminTokenHash).Register(router)
	userHandler.New(userSvc, log, jwtService).Register(router)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting pinky", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
