package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/payalert-labs/payalert/internal/config"
	"github.com/payalert-labs/payalert/internal/pushclient"
	"github.com/payalert-labs/payalert/internal/scheduler"
	"github.com/payalert-labs/payalert/internal/server"
	"github.com/payalert-labs/payalert/internal/service"
	"github.com/payalert-labs/payalert/internal/storage/bolt"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	store, err := bolt.New(cfg.Storage.Path)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer store.Close()

	var push service.PushSender
	if cfg.PushConfigured() {
		client, err := pushclient.New(cfg.Push.Subject, cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Push.TTL, cfg.Push.RequestTimeout)
		if err != nil {
			logger.Fatalf("init push client: %v", err)
		}
		push = client
	} else {
		logger.Warn("VAPID keys not configured, reminder delivery disabled")
	}

	paymentSvc := service.NewPaymentService(store)
	subSvc := service.NewSubscriptionService(store)
	dispatchSvc := service.NewDispatchService(store, push, logger, cfg.Reminder.WindowDays)
	logSvc := service.NewNotificationLogService(store)
	authSvc := service.NewAuthService(cfg)

	if cfg.Cron.Enabled && push != nil {
		sched, err := scheduler.New(cfg, dispatchSvc, logger)
		if err != nil {
			logger.Fatalf("init scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := server.New(cfg, store, paymentSvc, subSvc, dispatchSvc, logSvc, authSvc, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatalf("server stopped: %v", err)
		}
	}()

	waitForSignal()
	logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.WriteTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("shutdown error: %v", err)
	}
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
