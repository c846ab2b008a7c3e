package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamestore/config"
	"gamestore/internal/api"
	"gamestore/internal/broker"
	"gamestore/internal/redisclient"
	"gamestore/internal/service"
	"gamestore/internal/store"
	"gamestore/internal/util"
	"gamestore/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting catalog service")

	tp, err := util.InitTracer("catalog-service", cfg.Observ.JaegerEndpoint)
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

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

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
	eventPublisher := broker.NewEventPublisher(busClient, topo)

	purchaseService := service.NewPurchaseService(db, redisClient, eventPublisher, cfg.Business.PurchaseStatusTTL)
	galleryService := service.NewGalleryService(db)
	sagaOrchestrator := service.NewSagaOrchestrator(db, redisClient, redisClient, cfg.Business.PurchaseStatusTTL)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	resultWorker := worker.NewPaymentResultWorker(busClient, topo, sagaOrchestrator)
	if err := resultWorker.Start(workerCtx); err != nil {
		log.Fatalf("Failed to start payment result worker: %v", err)
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(purchaseService, galleryService, db)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()

	log.Println("Server exited")
}
