package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"procurement/db"
	"procurement/db/migrations"
	"procurement/internal/ai"
	"procurement/internal/config"
	"procurement/internal/handlers"
	"procurement/internal/lifecycle"
	"procurement/internal/notify"
	"procurement/pkg/logger"
	"procurement/pkg/metrics"

	_ "github.com/lib/pq"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logg, err := logger.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Cannot create logger: %v", err)
	}
	defer logg.Sync()
	cfg.LogConfig(logg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(ctx, cfg.Database.ConnString, db.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logg.Fatal("Cannot connect to DB", zap.Error(err))
	}
	defer dbConn.Close()

	if err := migrations.Run(dbConn.DB); err != nil {
		logg.Fatal("Migrations failed", zap.Error(err))
	}

	store := db.NewStorage(dbConn)
	mc := metrics.NewCollector()

	if cfg.AI.APIKey == "" {
		logg.Warn("GEMINI_API_KEY is not set, AI requests will fail")
	}
	gen, err := ai.NewGeminiGenerator(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Temperature)
	if err != nil {
		logg.Fatal("Cannot create AI client", zap.Error(err))
	}
	adapter := ai.NewAdapter(gen, logg.Named("ai"), mc, ai.Options{
		Timeout:           cfg.AI.Timeout,
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
	})

	smtpCfg := notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Timeout:  cfg.SMTP.Timeout,
	}
	if !smtpCfg.Configured() {
		logg.Warn("SMTP is not configured, RFP emails will fail")
	}
	transport := notify.NewSMTPTransport(smtpCfg)
	mailer := notify.NewMailer(transport, logg.Named("mail"))

	manager := lifecycle.NewManager(store, adapter, mailer, logg.Named("lifecycle"), mc, lifecycle.Options{
		DispatchConcurrency: cfg.Dispatch.Concurrency,
	})

	h := handlers.NewHandler(manager, logg.Named("http"), mc, handlers.Options{
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		SMTP:         transport.Config(),
		DB:           store,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handlers.NewRouter(h, cfg.Server.FrontendURL),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("Starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logg.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("Graceful shutdown failed", zap.Error(err))
	}
}
