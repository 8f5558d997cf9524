package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/NordCoder/Authly/internal/config/welcome-worker"
	"github.com/NordCoder/Authly/internal/domain/event"
	"github.com/NordCoder/Authly/internal/obs"
	kafkarepo "github.com/NordCoder/Authly/internal/repository/kafka"
	"github.com/NordCoder/Authly/internal/service/welcome"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/welcome-worker.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(obs.LogConfig{Level: cfg.LogLevel, App: "authly/welcome-worker"})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	l.Info("starting welcome-worker",
		zap.Strings("brokers", cfg.In.Brokers),
		zap.String("group_id", cfg.In.GroupID),
		zap.String("metrics_addr", cfg.Server.MetricsAddr),
		zap.String("smtp_addr", cfg.SMTP.Addr),
	)

	otelCloser, err := obs.SetupOTel(rootCtx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Warn("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(context.Context) error { return nil }, l)

	mailer := welcome.NewMailer(cfg.SMTP).WithLogger(l)
	handler := welcome.NewHandler(mailer, l)

	dispatcher := kafkarepo.NewDispatcher(&kafkarepo.DispatcherConfig{
		Brokers:       cfg.In.Brokers,
		GroupID:       cfg.In.GroupID,
		FromBeginning: cfg.In.FromBeginning,
		Logger:        l,
	}).RegisterHandler(event.TopicUserCreated, kafkarepo.JSONHandler(handler.HandleUserCreated))

	errCh := make(chan error, 1)
	go func() { errCh <- dispatcher.Run(rootCtx) }()

	var runErr error
	select {
	case <-rootCtx.Done():
		l.Info("shutdown signal")
	case runErr = <-errCh:
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			l.Error("dispatcher error", zap.Error(runErr))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
