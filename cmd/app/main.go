package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"wordmate-subscription/internal/config"
	pg "wordmate-subscription/internal/infra/db/postgres"
	"wordmate-subscription/internal/infra/i18n"
	"wordmate-subscription/internal/infra/logging"
	"wordmate-subscription/internal/infra/mail"
	"wordmate-subscription/internal/infra/metrics"
	red "wordmate-subscription/internal/infra/redis"
	"wordmate-subscription/internal/infra/sched"
	"wordmate-subscription/internal/infra/web"
	"wordmate-subscription/internal/usecase"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted PII)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if cfg.Database.Migrate {
		if err := pg.Migrate(ctx, pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	// ---- Redis (optional; locking and rate limiting degrade without it) ----
	var (
		locker  usecase.Locker
		limiter web.AttemptLimiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		locker = red.NewLocker(redisClient)
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; redemption lock and rate limit disabled")
	}

	// ---- Repositories ----
	orderRepo := pg.NewOrderRepo(pool)
	codeRepo := pg.NewCodeRepo(pool)
	planRepo := pg.NewPlanRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- Adapters ----
	mailer := mail.NewMailer(cfg.SMTP, logger)

	// ---- Use cases ----
	orderUC := usecase.NewOrderUseCase(orderRepo, codeRepo, planRepo, mailer, txm, cfg.Redemption.CodeTTL, logger, cfg.Runtime.Dev)
	redeemUC := usecase.NewRedemptionUseCase(codeRepo, planRepo, subRepo, txm, locker, cfg.Redemption.LockTTL, logger)

	// ---- i18n ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Server.Locale)
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}

	// ---- Background workers ----
	worker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryInterval, cfg.Orders.PendingTTL, orderUC, logger)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("expiry worker stopped")
		}
	}()

	// ---- HTTP server ----
	server := web.NewServer(
		orderUC, redeemUC,
		cfg.Admin.Key, cfg.Auth.JWTSecret,
		limiter, cfg.Redemption.AttemptLimit, cfg.Redemption.AttemptWin,
		tr, logger,
	)
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(),
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
