package services

import (
	"context"
	"errors"
	"time"

	"complaint_desk_go/models"

	"gorm.io/gorm"
)

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// List returns the actor's notifications, unread first, then newest first
func (s *NotificationService) List(ctx context.Context, actor ActingUser, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > MaxNotificationLimit {
		limit = DefaultNotificationLimit
	}
	var notifications []models.Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", actor.ID).
		Order("is_read ASC, created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, storeError("list notifications", err)
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor ActingUser) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		Count(&count).Error
	return count, storeError("count notifications", err)
}

// owned loads a notification and checks it belongs to the actor
func (s *NotificationService) owned(ctx context.Context, actor ActingUser, notificationID string) (*models.Notification, error) {
	var n models.Notification
	if err := s.DB.WithContext(ctx).First(&n, "id = ?", notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("notification")
		}
		return nil, storeError("load notification", err)
	}
	if n.UserID != actor.ID {
		return nil, ErrForbidden
	}
	return &n, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, actor ActingUser, notificationID string) error {
	n, err := s.owned(ctx, actor, notificationID)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	err = s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", n.ID, actor.ID).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()}).Error
	return storeError("mark notification read", err)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, actor ActingUser) error {
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()}).Error
	return storeError("mark all notifications read", err)
}

func (s *NotificationService) Delete(ctx context.Context, actor ActingUser, notificationID string) error {
	n, err := s.owned(ctx, actor, notificationID)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", n.ID, actor.ID).Delete(&models.Notification{}).Error
	return storeError("delete notification", err)
}

func (s *NotificationService) DeleteAll(ctx context.Context, actor ActingUser) error {
	err := s.DB.WithContext(ctx).Where("user_id = ?", actor.ID).Delete(&models.Notification{}).Error
	return storeError("delete notifications", err)
}

// appendNotification adds a draft unless it would notify the acting user about
// their own action, or the recipient already has a draft for the same event.
func appendNotification(drafts []models.Notification, actorID string, n models.Notification) []models.Notification {
	if n.UserID == "" || n.UserID == actorID {
		return drafts
	}
	for _, d := range drafts {
		if d.UserID == n.UserID && d.Type == n.Type {
			return drafts
		}
	}
	return append(drafts, n)
}

// createNotifications persists drafts inside the caller's transaction
func createNotifications(tx *gorm.DB, drafts []models.Notification) error {
	if len(drafts) == 0 {
		return nil
	}
	return tx.Create(&drafts).Error
}
