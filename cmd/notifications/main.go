package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamestore/config"
	"gamestore/internal/broker"
	"gamestore/internal/service"
	"gamestore/internal/util"
	"gamestore/internal/worker"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting notifications service")

	tp, err := util.InitTracer("notifications-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	busClient := broker.NewClient(broker.Config{
		URL:                cfg.Rabbit.URL,
		ReconnectInterval:  cfg.Rabbit.ReconnectInterval,
		Prefetch:           cfg.Rabbit.Prefetch,
		AckDelay:           cfg.Rabbit.AckDelay,
		DeadLetterExchange: cfg.Rabbit.DeadLetterExchange,
	})
	defer busClient.Close()

	topo := broker.Topology{
		Exchange:            cfg.Bus.Exchange,
		PaymentQueue:        cfg.Bus.PaymentQueue,
		NotificationQueue:   cfg.Bus.NotificationQueue,
		OrderPlacedKey:      cfg.Bus.OrderPlacedKey,
		PaymentProcessedKey: cfg.Bus.PaymentProcessedKey,
		UserCreatedKey:      cfg.Bus.UserCreatedKey,
	}

	notifier := service.NewNotificationService(service.NewLogEmailSender())

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	notificationWorker := worker.NewNotificationWorker(busClient, topo, notifier)
	if err := notificationWorker.Start(workerCtx); err != nil {
		log.Fatalf("Failed to start notification worker: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down notifications service...")
	workerCancel()
	log.Println("Notifications service exited")
}
