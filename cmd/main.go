package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/dm-service/config"
	"github.com/cwrk-planet/dm-service/internal/notify"
	"github.com/cwrk-planet/dm-service/internal/pg"
	pgrepo "github.com/cwrk-planet/dm-service/internal/repository/postgres"
	"github.com/cwrk-planet/dm-service/internal/security"
	"github.com/cwrk-planet/dm-service/internal/service"
	httpx "github.com/cwrk-planet/dm-service/internal/transport/http"
	"github.com/cwrk-planet/dm-service/internal/transport/ws"
	"github.com/cwrk-planet/dm-service/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting dm-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	pool, err := pg.NewPool(ctx, pg.Config{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MinConns:        cfg.Postgres.MinConns,
		ApplicationName: cfg.Logging.Service,
	})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// --- redis (очередь оффлайн-уведомлений) ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	queue, err := notify.NewRedisQueue(rdb, cfg.Redis.QueueKey)
	if err != nil {
		log.Fatalf("notify queue: %v", err)
	}
	notifier := notify.NewAsyncNotifier(queue, 5*time.Second)

	// --- repos ---
	userRepo := pgrepo.NewUserRepoFromPool(pool)
	msgRepo := pgrepo.NewMessageRepoFromPool(pool)

	// --- services ---
	signer := security.NewJWTSigner([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.AccessTTL(), cfg.ClockSkew())
	passPolicy := security.BcryptConfig{Cost: cfg.Auth.BcryptCost, MinLength: cfg.Auth.PasswordMinLength}

	authSvc := service.NewAuthService(userRepo, signer, nil)
	userSvc := service.NewUserService(userRepo, passPolicy, nil)
	msgSvc := service.NewMessageService(msgRepo, userRepo, nil)

	// --- WS registry & relay ---
	registry := ws.NewRegistry()
	relay := ws.NewRelay(registry, authSvc, userSvc, msgSvc, notifier)
	relay.SetPingInterval(cfg.PingInterval())
	relay.SetPersistTimeout(cfg.PersistTimeout())

	// --- HTTP ---
	handler := httpx.NewHandler(authSvc, userSvc, msgSvc)
	router := httpx.NewRouter(handler, authSvc, relay, cfg.HTTP.AllowedOrigins)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- notification worker ---
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()

	sender := notify.NewTelegramSender(cfg.Telegram.BotToken)
	worker := notify.NewWorker(queue, sender)
	go worker.Run(workerCtx)

	// --- run server ---
	errCh := make(chan error, 1)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopWorker()
	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
