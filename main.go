// Package main runs the society payment settlement API.
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

	"github.com/labstack/echo/v4"

	"societypay/app/echoServer"
	authctrl "societypay/app/echoServer/controller/auth"
	ledgerctrl "societypay/app/echoServer/controller/ledger"
	orderctrl "societypay/app/echoServer/controller/order"
	paymentctrl "societypay/app/echoServer/controller/payment"
	"societypay/app/echoServer/validation"
	"societypay/config"
	billrepo "societypay/repository/bill"
	"societypay/repository/cache"
	"societypay/repository/events"
	gatewayrepo "societypay/repository/gateway"
	ledgerrepo "societypay/repository/ledger"
	memberrepo "societypay/repository/member"
	orderrepo "societypay/repository/order"
	authsvc "societypay/service/auth"
	ordersvc "societypay/service/order"
	paymentsvc "societypay/service/payment"
	"societypay/service/settlement"
	"societypay/service/sweep"
	"societypay/util/database"
	"societypay/util/httpx"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	level := slog.LevelInfo
	if cfg.Env == "dev" {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	// optional infra
	ledgerCache := cache.Noop()
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Warn("redis unavailable, ledger cache disabled", "addr", cfg.Redis.Addr, "err", err)
		} else {
			defer rdb.Close()
			ledgerCache = cache.NewRedis(rdb)
		}
	}
	publisher := events.Noop()
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.SettledTopic)
		if err != nil {
			log.Warn("kafka unavailable, settled events disabled", "brokers", cfg.Kafka.Brokers, "err", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	// repos
	br := billrepo.New(db)
	or := orderrepo.New(db)
	lr := ledgerrepo.New(db)
	mr := memberrepo.New(db)
	gw := gatewayrepo.NewHTTP(cfg.Gateway.BaseURL, cfg.Gateway.UserToken, httpx.Client())

	// services
	engine := settlement.New(db, br, mr, lr, log,
		settlement.WithCache(ledgerCache),
		settlement.WithPublisher(publisher),
	)
	as := authsvc.New(mr, cfg.JWTSecret, authsvc.DefaultTokenTTL)
	osv := ordersvc.New(br, or, gw, cfg.Gateway.RedirectURL, log)
	ps := paymentsvc.New(gw, engine, lr, ledgerCache, cfg.Gateway.WebhookToken, log)

	// sweep
	sched := sweep.NewCron(log)
	if _, err := sweep.Schedule(sched, cfg.Sweep.Schedule, sweep.New(or, ps, cfg.Sweep.MaxAge, log), log); err != nil {
		log.Error("bad sweep schedule", "schedule", cfg.Sweep.Schedule, "err", err)
		os.Exit(1)
	}
	sched.Start()

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e, log)
	e.Validator = validation.New()
	e.GET("/health", echoServer.Health)

	echoServer.Register(e, echoServer.C{
		Auth:      &authctrl.Controller{Svc: as, Log: log},
		Order:     &orderctrl.Controller{Svc: osv, Log: log},
		Payment:   &paymentctrl.Controller{Svc: ps, Log: log},
		Ledger:    &ledgerctrl.Controller{Svc: ps, Log: log},
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	log.Info("starting server", "port", port, "env", cfg.Env)

	go func() {
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
	<-sched.Stop().Done()
	log.Info("server stopped")
}
