package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SignalBoard/internal/cache"
	"SignalBoard/internal/collector"
	"SignalBoard/internal/config"
	"SignalBoard/internal/dashboard"
	"SignalBoard/internal/logger"
	"SignalBoard/internal/metrics"
	"SignalBoard/internal/notifier"
	"SignalBoard/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		slog.Error("signalboard exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log := logger.Init("signalboard", logger.ParseLevel(cfg.Log.Level))
	log.Info("signalboard starting", "provider", cfg.DataSource.Provider, "cache", cfg.Cache.Backend)

	m := metrics.NewMetrics(nil)

	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "rest":
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}

	store, err := cache.Open(cache.Config{
		Backend:    cfg.Cache.Backend,
		SQLitePath: cfg.Cache.SQLitePath,
		RedisAddr:  cfg.Cache.RedisAddr,
		RedisPass:  cfg.Cache.RedisPass,
		RedisDB:    cfg.Cache.RedisDB,
	})
	if err != nil {
		log.Warn("init bar cache failed, caching disabled", "backend", cfg.Cache.Backend, "error", err)
		store = cache.NewNoop()
	}
	defer store.Close()

	col := collector.NewCollector(collector.NewCachedFetcher(fetcher, store, cfg.Cache.TTL, m), m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Auth.Password == "" {
		log.Warn("auth.password is not set, the dashboard API will refuse logins")
	}
	srv := dashboard.NewServer(col, m, dashboard.Options{
		Password:   cfg.Auth.Password,
		TOTPSecret: cfg.Auth.TOTPSecret,
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     log,
	})
	httpSrv := srv.HTTPServer(cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	errCh := make(chan error, 1)
	go func() {
		log.Info("dashboard listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Info("telegram not configured, signals are logged only")
	}

	sched := scheduler.NewScheduler(ctx, col, sender, cfg.Watch.Items, m)
	if len(cfg.Watch.Items) > 0 {
		if err := sched.Register(cfg.Watch.Cron); err != nil {
			return err
		}
	}
	if p, ok := store.(scheduler.Purger); ok {
		if err := sched.RegisterPurge("0 30 3 * * *", p); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, scanning watch list now")
		go sched.ScanAll(ctx)
	}

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping")
	case err := <-errCh:
		return fmt.Errorf("dashboard server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown dashboard: %w", err)
	}
	log.Info("signalboard stopped")
	return nil
}
