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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/sweethome/internal/config"
	"github.com/Skotchmaster/sweethome/internal/db"
	"github.com/Skotchmaster/sweethome/internal/events"
	"github.com/Skotchmaster/sweethome/internal/handlers"
	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/metrics"
	"github.com/Skotchmaster/sweethome/internal/middleware/auth"
	"github.com/Skotchmaster/sweethome/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/sweethome/internal/middleware/logging"
	"github.com/Skotchmaster/sweethome/internal/mykafka"
	"github.com/Skotchmaster/sweethome/internal/realtime"
	"github.com/Skotchmaster/sweethome/internal/repo"
	"github.com/Skotchmaster/sweethome/internal/search"
	"github.com/Skotchmaster/sweethome/internal/service"
	"github.com/Skotchmaster/sweethome/internal/store"
	httpserver "github.com/Skotchmaster/sweethome/internal/transport/http"
)

type publisher interface {
	service.Publisher
	Close() error
}

func main() {
	cfg := config.Load(".env")

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	ctx := logging.IntoContext(context.Background(), logger)

	gdb, err := db.Open(ctx, cfg.StoreDSN)
	if err != nil {
		logger.Error("db_init_failed", "error", err)
		os.Exit(1)
	}

	bus := events.NewBus()
	for _, kind := range events.Kinds {
		if err := bus.Subscribe(kind, func(e events.Event) {
			metrics.StorefrontEvents.WithLabelValues(string(e.Kind)).Inc()
			logger.Debug("storefront_event", "kind", e.Kind, "client_id", e.Scope, "item_id", e.ItemID, "count", e.Count)
		}); err != nil {
			logger.Error("event_subscribe_failed", "kind", kind, "error", err)
			os.Exit(1)
		}
	}

	var prod publisher = mykafka.NopProducer{}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka_init_failed", "error", err)
			os.Exit(1)
		}
		prod = p
		logger.Info("kafka producer ready", "brokers", cfg.KafkaBrokers)
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := realtime.NewHub(logger)
	go hub.Run(hubCtx)

	orders := &service.OrderService{Repo: repo.NewFileRepo(cfg.DataDir), Publisher: prod, Live: hub}
	if cfg.ESURL != "" {
		es, err := search.NewClient(search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unreachable", "error", err)
		} else {
			orders.Indexer = &search.ESIndexer{ES: es, Index: cfg.ESIndex}
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), metrics.Middleware(), loggingmw.RequestLogger(logger), middleware.CORS())
	if cfg.StaticDir != "" {
		e.Static("/", cfg.StaticDir)
	}

	deps := httpserver.Deps{
		DB:           gdb,
		OrderHandler: &handlers.OrderHandler{Svc: orders},
		ChatHandler:  &handlers.ChatHandler{Svc: &service.ChatService{Repo: orders.Repo, Publisher: prod, Live: hub}},
		StorefrontHandler: &handlers.StorefrontHandler{
			Store:     &store.GormStore{DB: gdb},
			Bus:       bus,
			JWTSecret: cfg.AdminJWTSecret,
			Locks:     &store.Locks{},
		},
		Admin: &auth.AdminMiddleware{JWTSecret: cfg.AdminJWTSecret},
		Live:  hub,
	}
	if len(cfg.AdminJWTSecret) == 0 {
		logger.Warn("admin_routes_open", "reason", "ADMIN_JWT_SECRET not set")
	} else {
		deps.CSRF = csrf.Middleware(csrf.DefaultConfig())
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "data_dir", cfg.DataDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	go func() {
		<-quit
		logger.Warn("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	stopHub()

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db_close_failed", "error", err)
		}
	} else {
		logger.Error("db_handle_failed", "error", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka_close_failed", "error", err)
	}

	logger.Info("shutdown complete")
}
