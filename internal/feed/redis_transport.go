package feed

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis channel names. Events are published one channel per event name;
// commands share a single channel with the command name in the envelope.
const (
	redisCommandChannel = "shopfront.commands"
	redisEventPrefix    = "shopfront.events."
)

// CommandEnvelope is how a command travels over the command channel.
type CommandEnvelope struct {
	Command string          `json:"command"`
	Payload json.RawMessage `json:"payload"`
}

// RedisTransport carries the live feed over Redis pub/sub. It is the
// default transport and the one the dev server bridges.
type RedisTransport struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisTransport(rdb *redis.Client, logger *zap.Logger) *RedisTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisTransport{
		rdb:    rdb,
		logger: logger.Named("feed.redis"),
	}
}

func EventChannel(event string) string {
	return redisEventPrefix + event
}

func (t *RedisTransport) Emit(ctx context.Context, command string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env, err := json.Marshal(CommandEnvelope{Command: command, Payload: raw})
	if err != nil {
		return err
	}
	return t.rdb.Publish(ctx, redisCommandChannel, env).Err()
}

// Listen subscribes to one Redis channel per event name and pumps messages
// until ctx ends. The subscription is closed on every exit path; there is
// no way to leak a listener past its scope.
func (t *RedisTransport) Listen(ctx context.Context, events ...string) (<-chan Event, error) {
	channels := make([]string, len(events))
	names := make(map[string]string, len(events))
	for i, ev := range events {
		channels[i] = EventChannel(ev)
		names[channels[i]] = ev
	}

	pubsub := t.rdb.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan Event)
	msgs := pubsub.Channel()

	go func() {
		defer close(out)
		defer func() {
			if err := pubsub.Close(); err != nil {
				t.logger.Warn("closing feed subscription failed", zap.Error(err))
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				ev := Event{
					Name:    names[msg.Channel],
					Payload: []byte(msg.Payload),
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// ListenCommands is the server side of the command channel, used by the
// dev server's feed bridge.
func (t *RedisTransport) ListenCommands(ctx context.Context) (<-chan CommandEnvelope, error) {
	pubsub := t.rdb.Subscribe(ctx, redisCommandChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan CommandEnvelope)
	msgs := pubsub.Channel()

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var env CommandEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					t.logger.Warn("dropping undecodable command", zap.Error(err))
					continue
				}
				select {
				case out <- env:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// PublishEvent pushes a named event; the server side of Listen.
func (t *RedisTransport) PublishEvent(ctx context.Context, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return t.rdb.Publish(ctx, EventChannel(event), raw).Err()
}
