package realtime

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// DefaultBridgeChannel is the redis pub/sub channel shared by all
// instances behind the load balancer.
const DefaultBridgeChannel = "realtime:events"

// bridgeFrame is the cross-instance envelope: the room plus the exact
// event that will be fanned out locally.
type bridgeFrame struct {
	Room    string          `json:"room"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBridge extends the hub across instances. Broadcast publishes to a
// redis channel; every instance (including the publisher) delivers to its
// local hub from the subscription loop, so a given socket sees each event
// exactly once no matter which instance produced it.
type RedisBridge struct {
	hub     *Hub
	rdb     *redis.Client
	channel string
	log     *logrus.Logger
}

func NewRedisBridge(hub *Hub, rdb *redis.Client, channel string, log *logrus.Logger) *RedisBridge {
	if channel == "" {
		channel = DefaultBridgeChannel
	}
	return &RedisBridge{hub: hub, rdb: rdb, channel: channel, log: log}
}

// Broadcast implements the publisher contract. If redis is unreachable the
// event is delivered locally so a single-instance deployment keeps working
// through a redis outage.
func (b *RedisBridge) Broadcast(room, event string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		b.log.WithError(err).WithField("event", event).Error("failed to encode bridge payload")
		return
	}
	frame, err := json.Marshal(bridgeFrame{Room: room, Event: event, Payload: raw})
	if err != nil {
		b.log.WithError(err).WithField("event", event).Error("failed to encode bridge frame")
		return
	}
	if err := b.rdb.Publish(context.Background(), b.channel, frame).Err(); err != nil {
		b.log.WithError(err).Warn("redis publish failed, delivering locally")
		b.hub.Broadcast(room, event, json.RawMessage(raw))
	}
}

// Run subscribes and replays frames into the local hub until ctx ends.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.rdb.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var frame bridgeFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				b.log.WithError(err).Warn("dropping malformed bridge frame")
				continue
			}
			b.hub.Broadcast(frame.Room, frame.Event, frame.Payload)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
