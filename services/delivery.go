package services

import (
	"context"
	"errors"
	"time"

	"complaint_desk_go/config"
	"complaint_desk_go/logger"
	"complaint_desk_go/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationDelivery pushes committed notifications to channels outside the
// inbox table. Delivery is best effort and never affects the originating write.
type NotificationDelivery interface {
	Deliver(ctx context.Context, notifications []models.Notification) error
}

// Delivery is the global post-commit delivery; nil disables it
var Delivery NotificationDelivery

// DeliveryTimeout bounds one post-commit delivery run
const DeliveryTimeout = 15 * time.Second

// MultiDelivery fans a batch out to several deliveries
type MultiDelivery []NotificationDelivery

func (m MultiDelivery) Deliver(ctx context.Context, notifications []models.Notification) error {
	var errs []error
	for _, d := range m {
		if err := d.Deliver(ctx, notifications); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// InitializeDelivery wires email and, when a Redis client is given, pub/sub delivery
func InitializeDelivery(cfg *config.Config, database *gorm.DB, rdb *redis.Client) {
	deliveries := MultiDelivery{&EmailDelivery{DB: database, Config: cfg}}
	if rdb != nil {
		deliveries = append(deliveries, &RedisPublisher{Client: rdb})
		logger.Log.Info("notification delivery: email + redis pub/sub")
	} else {
		logger.Log.Info("notification delivery: email only")
	}
	Delivery = deliveries
}

// dispatchAfterCommit hands committed notifications to Delivery in the background
func dispatchAfterCommit(notifications []models.Notification) {
	d := Delivery
	if d == nil || len(notifications) == 0 {
		return
	}
	batch := append([]models.Notification(nil), notifications...)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), DeliveryTimeout)
		defer cancel()
		if err := d.Deliver(ctx, batch); err != nil {
			logger.Log.Warn("notification delivery failed", zap.Int("count", len(batch)), zap.Error(err))
		}
	}()
}
