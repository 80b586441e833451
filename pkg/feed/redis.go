package feed

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Vjossaab/commercify-client/pkg/enums"
	"github.com/Vjossaab/commercify-client/pkg/logger"
	"github.com/Vjossaab/commercify-client/pkg/metrics"
)

// Pub/sub channels published by the inventory relay. Each channel carries
// the bare event payload, no envelope.
const (
	ChannelStockUpdates   = "stock_updates"
	ChannelProductUpdates = "product_updates"
)

// Subscriber is the slice of the redis client the feed needs.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (*goredis.PubSub, error)
}

// RedisSource consumes the relay's pub/sub channels directly, skipping the
// websocket hop. Reconnection is the redis client's business; the source
// only maps channels to event names.
type RedisSource struct {
	dispatcher

	pubsub *goredis.PubSub
	logg   *logger.Logger
	mets   *metrics.ReconcileMetrics
	done   chan struct{}
}

// NewRedisSource subscribes to the inventory channels and starts dispatch.
func NewRedisSource(ctx context.Context, client Subscriber, logg *logger.Logger, mets *metrics.ReconcileMetrics) (*RedisSource, error) {
	pubsub, err := client.Subscribe(ctx, ChannelStockUpdates, ChannelProductUpdates)
	if err != nil {
		return nil, fmt.Errorf("subscribing to inventory channels: %w", err)
	}

	s := &RedisSource{
		pubsub: pubsub,
		logg:   logg,
		mets:   mets,
		done:   make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// Subscribe registers a handler for an event name.
func (s *RedisSource) Subscribe(event enums.FeedEvent, handler Handler) (Unsubscribe, error) {
	return s.subscribe(event, handler)
}

// Close shuts the subscription down. Idempotent.
func (s *RedisSource) Close() error {
	if !s.markClosed() {
		return nil
	}
	err := s.pubsub.Close()
	<-s.done
	return err
}

func (s *RedisSource) run() {
	defer close(s.done)

	for msg := range s.pubsub.Channel() {
		event, ok := eventForChannel(msg.Channel)
		if !ok {
			s.mets.IncDropped(msg.Channel, metrics.DropReasonUnknown)
			continue
		}
		s.dispatch(event, json.RawMessage(msg.Payload))
	}
}

func eventForChannel(channel string) (enums.FeedEvent, bool) {
	switch channel {
	case ChannelStockUpdates:
		return enums.FeedEventStockUpdate, true
	case ChannelProductUpdates:
		return enums.FeedEventProductUpdate, true
	}
	return "", false
}
