// Package app assembles the client engine: every store and service is
// constructed exactly once here and handed to callers by reference. There
// is no ambient shared state; anything that needs the cart gets the cart.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/cart"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/catalog"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/feed"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/gateway"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/order"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/review"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/session"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/storage"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/wishlist"
)

type Config struct {
	APIURL      string
	StateFile   string
	RedisAddr   string
	KafkaBroker string
	FeedDriver  string // "redis" (default) or "kafka"
}

// ConfigFromEnv reads configuration the same way every binary does:
// environment with inline defaults. Callers load .env beforehand.
func ConfigFromEnv() Config {
	stateFile := os.Getenv("SHOPFRONT_STATE_FILE")
	if stateFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		stateFile = filepath.Join(home, ".shopfront", "state.json")
	}

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8000"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	return Config{
		APIURL:      apiURL,
		StateFile:   stateFile,
		RedisAddr:   redisAddr,
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		FeedDriver:  os.Getenv("FEED_DRIVER"),
	}
}

// Engine is the assembled client: one instance per process.
type Engine struct {
	Storage  storage.Store
	Session  *session.Session
	Cart     *cart.Store
	Catalog  *catalog.Resolver
	Orders   *order.Manager
	Wishlist *wishlist.Store
	Reviews  *review.Store
	Feed     *feed.Client

	logger *zap.Logger
}

// BuildEngine wires the full dependency graph. The feed transport is
// lazy-connected: construction succeeds without a reachable broker, the
// first Watch call surfaces the failure.
func BuildEngine(cfg Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := storage.OpenFile(cfg.StateFile)
	if err != nil {
		return nil, fmt.Errorf("opening state file: %w", err)
	}

	sess := session.New(store, logger)
	cartStore := cart.NewStore(store, logger)

	api := gateway.NewClient(cfg.APIURL, http.DefaultClient, sess, logger)
	resolver := catalog.NewResolver(api, logger)

	orders := order.NewManager(order.Deps{
		API:      api,
		Cart:     cartStore,
		Resolver: resolver,
		Logger:   logger,
	})

	var transport feed.Transport
	if cfg.FeedDriver == "kafka" {
		if cfg.KafkaBroker == "" {
			return nil, fmt.Errorf("FEED_DRIVER=kafka needs KAFKA_BROKER")
		}
		transport = feed.NewKafkaTransport(cfg.KafkaBroker, "shopfront-client")
	} else {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		transport = feed.NewRedisTransport(rdb, logger)
	}

	return &Engine{
		Storage:  store,
		Session:  sess,
		Cart:     cartStore,
		Catalog:  resolver,
		Orders:   orders,
		Wishlist: wishlist.NewStore(api, resolver, logger),
		Reviews:  review.NewStore(api, logger),
		Feed:     feed.NewClient(transport, logger),
		logger:   logger.Named("engine"),
	}, nil
}

// User builds the submitting identity from the stored session token.
func (e *Engine) User() (order.User, error) {
	claims, err := e.Session.Claims()
	if err != nil {
		return order.User{}, err
	}
	return order.User{ID: claims.Subject, Email: claims.Email}, nil
}

// ConnectRedisWithRetry pings Redis until it answers or attempts run out.
func ConnectRedisWithRetry(addr string, maxRetries int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	for i := 1; i <= maxRetries; i++ {
		ctx := context.Background()
		if err := rdb.Ping(ctx).Err(); err == nil {
			log.Println("Connected to Redis")
			return rdb, nil
		}

		log.Printf("Redis retry %d/%d failed", i, maxRetries)
		time.Sleep(5 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect redis")
}
