package services

import (
	"context"
	"encoding/json"
	"fmt"

	"complaint_desk_go/models"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes each notification on its recipient's channel so
// connected clients can refresh their inbox without polling.
type RedisPublisher struct {
	Client *redis.Client
}

// NotificationChannel is the pub/sub channel for one recipient
func NotificationChannel(userID string) string {
	return "notifications:" + userID
}

func (p *RedisPublisher) Deliver(ctx context.Context, notifications []models.Notification) error {
	for _, n := range notifications {
		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("failed to encode notification %s: %w", n.ID, err)
		}
		if err := p.Client.Publish(ctx, NotificationChannel(n.UserID), payload).Err(); err != nil {
			return fmt.Errorf("failed to publish notification %s: %w", n.ID, err)
		}
	}
	return nil
}
