package watch

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"taxihub/pkg/logger"
)

// redisBridge fans order-change signals out across processes. The payload is
// just the sender id; receivers re-query their own subscriptions, so no order
// data crosses the wire.
type redisBridge struct {
	client  *redis.Client
	channel string
	selfID  string
	log     logger.ILogger
}

// AttachRedis wires a redis pub/sub bridge into the hub. Must be called
// before Run.
func (h *Hub) AttachRedis(addr, password, channel string) {
	h.remote = &redisBridge{
		client:  redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		channel: channel,
		selfID:  uuid.NewString(),
		log:     h.log,
	}
}

// Run blocks consuming remote change signals until ctx is cancelled. It is a
// no-op when no redis bridge is attached.
func (h *Hub) Run(ctx context.Context) {
	if h.remote == nil {
		<-ctx.Done()
		return
	}

	sub := h.remote.client.Subscribe(ctx, h.remote.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Local changes already refreshed synchronously.
			if msg.Payload == h.remote.selfID {
				continue
			}
			h.refresh(ctx)
		}
	}
}

func (b *redisBridge) publish(ctx context.Context) {
	if err := b.client.Publish(ctx, b.channel, b.selfID).Err(); err != nil {
		b.log.Warning("failed to publish order change signal", logger.Error(err))
	}
}
