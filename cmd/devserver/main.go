package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/app"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/devapi"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/feed"
)

func main() {
	_ = godotenv.Load()
	log.Println("[DEVSERVER] Starting storefront dev server...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 1. Seed the in-memory catalog
	state := devapi.NewState()
	devapi.Seed(state)
	log.Println("[DEVSERVER] Catalog seeded")

	// 2. Connect to Redis (live feed transport)
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb, err := app.ConnectRedisWithRetry(redisAddr, 5)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	transport := feed.NewRedisTransport(rdb, logger)

	// 3. Event sinks: Redis always, Kafka when a broker is configured
	sink := devapi.MultiSink{transport}
	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		kt := feed.NewKafkaTransport(broker, "devserver")
		defer kt.Close()
		sink = append(sink, kt)
		log.Printf("[DEVSERVER] Mirroring events to Kafka at %s", broker)
	}

	publisher := devapi.NewFeedPublisher(state, sink, logger)

	// 4. HTTP routes
	r := gin.Default()
	devapi.RegisterRoutes(r, devapi.NewHandler(state, publisher, logger))

	// 5. Feed command bridge
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := devapi.NewBridge(state, transport, logger)
	go func() {
		if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[DEVSERVER] Bridge stopped: %v", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[DEVSERVER] Listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[DEVSERVER] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[DEVSERVER] Forced shutdown: %v", err)
	}
	log.Println("[DEVSERVER] Stopped")
}
