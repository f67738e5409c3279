package chathub

import (
	"context"
	"encoding/json"
	"time"

	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// EventsChannel is the Redis channel dashboard events travel on.
const EventsChannel = "complaints:events"

const publishTimeout = 3 * time.Second

// Publisher notifies dashboard subscribers. Publish is fire-and-forget.
type Publisher interface {
	Publish(ctx context.Context, name string, payload any)
}

// RedisPublisher sends events through Redis so that every instance's hub
// receives them. When Redis is unreachable the event goes to the local hub.
type RedisPublisher struct {
	Redis *redis.Client
	Hub   *ManagerService
}

func NewRedisPublisher(rdb *redis.Client, hub *ManagerService) *RedisPublisher {
	return &RedisPublisher{Redis: rdb, Hub: hub}
}

func (p *RedisPublisher) Publish(ctx context.Context, name string, payload any) {
	ev, err := models.NewEvent(name, payload)
	if err != nil {
		logger.Component("pubsub").WithError(err).WithField("event", name).Error("Failed to encode event")
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := p.Redis.Publish(ctx, EventsChannel, data).Err(); err != nil {
			logger.Component("pubsub").WithError(err).WithField("event", name).Warn("Redis publish failed, broadcasting locally")
			p.Hub.Broadcast(ev)
		}
	}()
}

// StartPubSubListener forwards events from Redis into the hub until ctx is done.
func (m *ManagerService) StartPubSubListener(ctx context.Context, rdb *redis.Client) {
	pubsub := rdb.Subscribe(ctx, EventsChannel)
	go func() {
		defer pubsub.Close()
		log := logger.Component("pubsub")
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.WithError(err).Warn("Error unmarshalling Redis event")
					continue
				}
				m.Broadcast(ev)
			}
		}
	}()
}
