package services

import (
	"context"
	"testing"
	"time"

	"complaint_desk_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedNotification(t *testing.T, db *gorm.DB, userID, title string, createdAt time.Time) *models.Notification {
	t.Helper()
	n := &models.Notification{
		UserID:    userID,
		Type:      models.NotificationTypeStatusChanged,
		Title:     title,
		Message:   title,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestNotificationService(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewNotificationService(db)

	owner := ActorFromUser(newTestUser(t, db, "Uma User", models.RoleUser))
	other := ActorFromUser(newTestUser(t, db, "Ivo User", models.RoleUser))

	base := time.Now().Add(-time.Hour)
	oldest := seedNotification(t, db, owner.ID, "oldest", base)
	middle := seedNotification(t, db, owner.ID, "middle", base.Add(time.Minute))
	newest := seedNotification(t, db, owner.ID, "newest", base.Add(2*time.Minute))
	foreign := seedNotification(t, db, other.ID, "foreign", base)

	t.Run("List is scoped to the actor, newest first", func(t *testing.T) {
		list, err := svc.List(ctx, owner, 0)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, newest.ID, list[0].ID)
		assert.Equal(t, oldest.ID, list[2].ID)

		count, err := svc.UnreadCount(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("Mark as Read", func(t *testing.T) {
		require.NoError(t, svc.MarkAsRead(ctx, owner, newest.ID))

		var n models.Notification
		require.NoError(t, db.First(&n, "id = ?", newest.ID).Error)
		assert.True(t, n.IsRead)
		assert.NotNil(t, n.ReadAt)

		// Marking twice is harmless
		require.NoError(t, svc.MarkAsRead(ctx, owner, newest.ID))

		count, _ := svc.UnreadCount(ctx, owner)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Unread sort before read", func(t *testing.T) {
		list, err := svc.List(ctx, owner, 0)
		require.NoError(t, err)
		assert.Equal(t, middle.ID, list[0].ID)
		assert.Equal(t, newest.ID, list[2].ID)
	})

	t.Run("Other users' notifications are forbidden", func(t *testing.T) {
		assert.ErrorIs(t, svc.MarkAsRead(ctx, owner, foreign.ID), ErrForbidden)
		assert.ErrorIs(t, svc.Delete(ctx, owner, foreign.ID), ErrForbidden)
		assert.Equal(t, int64(1), countRows(t, db, &models.Notification{}, "user_id = ? AND is_read = ?", other.ID, false))
	})

	t.Run("Unknown notification", func(t *testing.T) {
		assert.ErrorIs(t, svc.MarkAsRead(ctx, owner, "missing"), ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, owner, "missing"), ErrNotFound)
	})

	t.Run("Mark All as Read", func(t *testing.T) {
		require.NoError(t, svc.MarkAllAsRead(ctx, owner))
		count, _ := svc.UnreadCount(ctx, owner)
		assert.Equal(t, int64(0), count)

		count, _ = svc.UnreadCount(ctx, other)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, owner, oldest.ID))
		assert.Equal(t, int64(2), countRows(t, db, &models.Notification{}, "user_id = ?", owner.ID))
	})

	t.Run("Delete All", func(t *testing.T) {
		require.NoError(t, svc.DeleteAll(ctx, owner))
		assert.Equal(t, int64(0), countRows(t, db, &models.Notification{}, "user_id = ?", owner.ID))
		assert.Equal(t, int64(1), countRows(t, db, &models.Notification{}, "user_id = ?", other.ID))
	})
}

func TestNotificationListLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewNotificationService(db)

	owner := ActorFromUser(newTestUser(t, db, "Uma User", models.RoleUser))
	for i := 0; i < 5; i++ {
		seedNotification(t, db, owner.ID, "n", time.Now().Add(time.Duration(i)*time.Second))
	}

	list, err := svc.List(ctx, owner, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = svc.List(ctx, owner, MaxNotificationLimit+1)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestAppendNotification(t *testing.T) {
	draft := func(userID, kind string) models.Notification {
		return models.Notification{UserID: userID, Type: kind}
	}

	var drafts []models.Notification
	drafts = appendNotification(drafts, "actor", draft("actor", models.NotificationTypeStatusChanged))
	assert.Empty(t, drafts, "actor is never notified about their own change")

	drafts = appendNotification(drafts, "actor", draft("", models.NotificationTypeStatusChanged))
	assert.Empty(t, drafts, "drafts without a recipient are dropped")

	drafts = appendNotification(drafts, "actor", draft("reporter", models.NotificationTypeStatusChanged))
	drafts = appendNotification(drafts, "actor", draft("reporter", models.NotificationTypeStatusChanged))
	assert.Len(t, drafts, 1, "duplicate recipient and type collapse")

	drafts = appendNotification(drafts, "actor", draft("reporter", models.NotificationTypeCommentAdded))
	drafts = appendNotification(drafts, "actor", draft("staff", models.NotificationTypeStatusChanged))
	assert.Len(t, drafts, 3)
}

func TestCreateNotificationsEmpty(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, createNotifications(db, nil))
	assert.Equal(t, int64(0), countRows(t, db, &models.Notification{}, ""))
}
