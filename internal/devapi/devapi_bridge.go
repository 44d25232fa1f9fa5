package devapi

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/feed"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/order"
)

// EventSink is the transport half the publisher needs: push one named
// event. Both feed transports satisfy it.
type EventSink interface {
	PublishEvent(ctx context.Context, event string, payload any) error
}

// FeedPublisher fans every order mutation out to the live feed: the
// per-order update event, plus a refresh of the default listing page, the
// same pair a change-stream watcher would push.
type FeedPublisher struct {
	state  *State
	sink   EventSink
	logger *zap.Logger
}

func NewFeedPublisher(state *State, sink EventSink, logger *zap.Logger) *FeedPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedPublisher{
		state:  state,
		sink:   sink,
		logger: logger.Named("devapi.publisher"),
	}
}

func (p *FeedPublisher) OrderUpdated(ctx context.Context, o order.Order) {
	if err := p.sink.PublishEvent(ctx, feed.EventOrderUpdated, o); err != nil {
		p.logger.Warn("publishing order update failed",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}

	listing := p.state.Listing(feed.Query{Page: 1})
	if err := p.sink.PublishEvent(ctx, feed.EventOrders, listing); err != nil {
		p.logger.Warn("publishing listing refresh failed", zap.Error(err))
	}
}

// MultiSink fans one event out to several transports (Redis for live
// subscribers, Kafka for the durable event stream).
type MultiSink []EventSink

func (m MultiSink) PublishEvent(ctx context.Context, event string, payload any) error {
	var errs []error
	for _, sink := range m {
		if err := sink.PublishEvent(ctx, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopPublisher drops everything; for tests that only exercise REST.
type NopPublisher struct{}

func (NopPublisher) OrderUpdated(context.Context, order.Order) {}

// Bridge answers feed commands against the in-memory state: it is the
// server side of the subscription channel the engine's feed client talks
// to.
type Bridge struct {
	state     *State
	transport *feed.RedisTransport
	logger    *zap.Logger
}

func NewBridge(state *State, transport *feed.RedisTransport, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		state:     state,
		transport: transport,
		logger:    logger.Named("devapi.bridge"),
	}
}

// Run consumes commands until ctx ends.
func (b *Bridge) Run(ctx context.Context) error {
	commands, err := b.transport.ListenCommands(ctx)
	if err != nil {
		return err
	}

	b.logger.Info("feed bridge started")

	for cmd := range commands {
		switch cmd.Command {
		case feed.CommandGetOrderDetails:
			b.handleOrderDetails(ctx, cmd.Payload)
		case feed.CommandGetOrders:
			b.handleOrders(ctx, cmd.Payload)
		default:
			b.logger.Debug("ignoring unknown command", zap.String("command", cmd.Command))
		}
	}
	return ctx.Err()
}

func (b *Bridge) handleOrderDetails(ctx context.Context, payload []byte) {
	var req struct {
		UserID  string `json:"userId"`
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		b.logger.Warn("undecodable get_order_details command", zap.Error(err))
		return
	}

	o, err := b.state.Order(req.OrderID)
	if err != nil {
		b.logger.Debug("get_order_details for unknown order",
			zap.String("order_id", req.OrderID),
		)
		return
	}

	if err := b.transport.PublishEvent(ctx, feed.EventOrderDetails, o); err != nil {
		b.logger.Warn("publishing order details failed", zap.Error(err))
	}
}

func (b *Bridge) handleOrders(ctx context.Context, payload []byte) {
	var q feed.Query
	if err := json.Unmarshal(payload, &q); err != nil {
		b.logger.Warn("undecodable get_orders command", zap.Error(err))
		return
	}

	listing := b.state.Listing(q)
	if err := b.transport.PublishEvent(ctx, feed.EventOrders, listing); err != nil {
		b.logger.Warn("publishing listing failed", zap.Error(err))
	}
}
