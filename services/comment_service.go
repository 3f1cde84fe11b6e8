package services

import (
	"context"
	"fmt"

	"complaint_desk_go/logger"
	"complaint_desk_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stored as NewValue on COMMENT_ADDED activity entries
const (
	commentVisibilityInternal = "internal"
	commentVisibilityPublic   = "public"
)

// CommentView is a comment with its author summary embedded
type CommentView struct {
	models.Comment
	Author *models.UserSummary `json:"author"`
}

func newCommentView(c *models.Comment) CommentView {
	return CommentView{Comment: *c, Author: c.Author.Summary()}
}

// CommentPage is one page of a complaint's comments
type CommentPage struct {
	Comments   []CommentView `json:"comments"`
	Pagination Pagination    `json:"pagination"`
}

// AddComment appends a comment to a complaint. The comment, its COMMENT_ADDED
// activity entry and any notifications commit together. Citizens cannot write
// internal notes; a request to do so is quietly stored as public.
func AddComment(ctx context.Context, db *gorm.DB, actor ActingUser, complaintID, content string, isInternal bool) (*CommentView, error) {
	if actor.ID == "" {
		return nil, ErrUnauthorized
	}
	content = SanitizeText(content)
	if err := checkLength("content", content, models.CommentMinLength, models.CommentMaxLength); err != nil {
		return nil, err
	}
	if !actor.IsStaffOrAdmin() {
		isInternal = false
	}

	complaint, err := loadAuthorized(ctx, db, complaintID, func(c *models.Complaint) bool {
		return CanComment(actor, c, isInternal)
	})
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ComplaintID: complaint.ID,
		AuthorID:    actor.ID,
		Content:     content,
		IsInternal:  isInternal,
	}

	visibility := commentVisibilityPublic
	if isInternal {
		visibility = commentVisibilityInternal
	}

	var notifications []models.Notification
	if !isInternal {
		message := fmt.Sprintf("%s commented on %q.", actor.Name, complaint.Title)
		notifications = appendNotification(notifications, actor.ID, models.Notification{
			UserID:      complaint.ReporterID,
			ComplaintID: &complaint.ID,
			Type:        models.NotificationTypeCommentAdded,
			Title:       "New comment on your complaint",
			Message:     message,
		})
		if complaint.AssignedToID != nil {
			notifications = appendNotification(notifications, actor.ID, models.Notification{
				UserID:      *complaint.AssignedToID,
				ComplaintID: &complaint.ID,
				Type:        models.NotificationTypeCommentAdded,
				Title:       "New comment on an assigned complaint",
				Message:     message,
			})
		}
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		entry := models.ActivityLog{
			ComplaintID: complaint.ID,
			UserID:      actor.ID,
			Action:      models.ActivityCommentAdded,
			NewValue:    visibility,
			Comment:     fmt.Sprintf("%s added a %s comment", actor.Name, visibility),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return createNotifications(tx, notifications)
	})
	if err != nil {
		logger.Log.Error("comment rolled back",
			zap.String("complaint_id", complaint.ID), zap.String("actor_id", actor.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: add comment: %v", ErrInternal, err)
	}

	logger.Log.Info("comment added",
		zap.String("complaint_id", complaint.ID),
		zap.String("comment_id", comment.ID),
		zap.Bool("internal", isInternal))
	dispatchAfterCommit(notifications)

	if err := db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", comment.ID).Error; err != nil {
		return nil, storeError("load comment", err)
	}
	view := newCommentView(&comment)
	return &view, nil
}

// ListComments returns a page of a complaint's comments, oldest first.
// Internal comments are left out for callers who may not read them.
func ListComments(ctx context.Context, db *gorm.DB, actor ActingUser, complaintID string, limit, offset int) (*CommentPage, error) {
	complaint, err := loadAuthorized(ctx, db, complaintID, func(c *models.Complaint) bool {
		return CanView(actor, c)
	})
	if err != nil {
		return nil, err
	}
	limit, offset = ClampPage(limit, offset)
	showInternal := CanSeeInternal(actor, complaint)

	scope := func() *gorm.DB {
		q := db.WithContext(ctx).Model(&models.Comment{}).Where("complaint_id = ?", complaint.ID)
		if !showInternal {
			q = q.Where("is_internal = ?", false)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, storeError("count comments", err)
	}

	var comments []models.Comment
	if err := scope().Preload("Author").
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error; err != nil {
		return nil, storeError("list comments", err)
	}

	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, newCommentView(&comments[i]))
	}
	return &CommentPage{
		Comments:   views,
		Pagination: newPagination(total, limit, offset, len(views)),
	}, nil
}
