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

	"fulfillment-service/config"
	"fulfillment-service/internal/api"
	"fulfillment-service/internal/broker"
	"fulfillment-service/internal/gateway"
	"fulfillment-service/internal/redisclient"
	"fulfillment-service/internal/store"
	"fulfillment-service/internal/usecase"
	"fulfillment-service/internal/util"
	"fulfillment-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting fulfillment service")

	tp, err := util.InitTracer("fulfillment-service", cfg.Observ.JaegerEndpoint)
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

	cartTTL := time.Duration(cfg.Business.CartTTLSeconds) * time.Second
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cartTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	products := db.Products()
	orders := db.Orders()
	payments := db.Payments()
	events := db.Events()

	provider := gateway.NewSimulatedProvider(cfg.Business.PaymentSuccessRate)

	addItem := usecase.NewAddItemToCart(products, redisClient)
	createOrder := usecase.NewCreateOrderFromCart(redisClient, products, orders, eventPublisher, redisClient)
	processPayment := usecase.NewProcessPayment(orders, payments, provider, eventPublisher)
	cancelOrder := usecase.NewCancelOrder(orders, products, eventPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
	compWorker := worker.NewCompensationWorker(consumer, cancelOrder, events)
	go func() {
		if err := compWorker.Start(workerCtx); err != nil {
			log.Printf("Compensation worker error: %v", err)
		}
	}()

	expiryWorker := worker.NewExpiryWorker(orders, cancelOrder, cfg.Business.OrderTimeoutSeconds)
	go func() {
		if err := expiryWorker.Start(workerCtx); err != nil {
			log.Printf("Expiry worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(addItem, createOrder, processPayment, cancelOrder, redisClient, orders, payments)
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
	compWorker.Stop()

	log.Println("Server exited")
}
