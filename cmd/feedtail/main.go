// feedtail tails the mirrored order event topic. Useful to confirm the dev
// server is publishing while poking the API with the shop CLI.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/feed"
)

func main() {
	_ = godotenv.Load()
	log.Println("[FEEDTAIL] Starting feed tail...")

	broker := os.Getenv("KAFKA_BROKER")
	if broker == "" {
		broker = "localhost:9092"
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   feed.KafkaEventsTopic,
		GroupID: "feedtail-group",
	})
	defer reader.Close()
	log.Println("[FEEDTAIL] Kafka reader initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumeMessages(ctx, reader)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[FEEDTAIL] Shutting down...")
	cancel()
	log.Println("[FEEDTAIL] Stopped")
}

func consumeMessages(ctx context.Context, reader *kafka.Reader) {
	log.Println("[FEEDTAIL] Started consuming messages")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[FEEDTAIL] Error fetching message: %v", err)
			continue
		}

		eventType := getHeader(msg.Headers, "event_type")
		log.Printf("[FEEDTAIL] %s %s", eventType, string(msg.Value))

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Printf("[FEEDTAIL] Error committing message: %v", err)
		}
	}
}

func getHeader(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
