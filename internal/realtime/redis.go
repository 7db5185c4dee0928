package realtime

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NotifyChannel is the redis pub/sub channel carrying notification
// events, so pushes reach sockets on every API instance.
const NotifyChannel = "sevaconnect:notifications"

// NewRedis creates a new Redis client
func NewRedis() *redis.Client {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	log.Printf("Redis client created (addr: %s)", redisAddr)
	return rdb
}

// NotifyEvent is what travels over the pub/sub channel.
type NotifyEvent struct {
	UserID uuid.UUID   `json:"user_id"`
	Data   interface{} `json:"data"`
}

// PublishNotification enqueues an event for fanout. Best effort: a redis
// failure only costs the live push, the notification row is already
// stored.
func PublishNotification(ctx context.Context, rdb *redis.Client, ev NotifyEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		log.Printf("realtime: marshal notify event: %v", err)
		return
	}
	if err := rdb.Publish(ctx, NotifyChannel, raw).Err(); err != nil {
		log.Printf("realtime: publish notify event: %v", err)
	}
}

// SubscribeNotifications forwards pub/sub events into the hub. Run in its
// own goroutine; returns when ctx is canceled.
func SubscribeNotifications(ctx context.Context, rdb *redis.Client, hub *Hub) {
	sub := rdb.Subscribe(ctx, NotifyChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, okc := <-ch:
			if !okc {
				return
			}
			var ev NotifyEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("realtime: bad notify payload: %v", err)
				continue
			}
			hub.SendToUser(ev.UserID, ev.Data)
		}
	}
}
