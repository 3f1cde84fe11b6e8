package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types mirror the activity actions that produce them
const (
	NotificationTypeNewComplaint  = "NEW_COMPLAINT"
	NotificationTypeStatusChanged = "STATUS_CHANGED"
	NotificationTypeAssigned      = "ASSIGNED"
	NotificationTypeReassigned    = "REASSIGNED"
	NotificationTypeCommentAdded  = "COMMENT_ADDED"
)

type Notification struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Recipient
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	// Context
	ComplaintID *string `gorm:"type:uuid;index" json:"complaint_id,omitempty"`

	// Content
	Type    string `gorm:"not null" json:"type"`
	Title   string `gorm:"not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`

	// Read tracking
	IsRead bool       `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	User      *User      `gorm:"foreignKey:UserID" json:"-"`
	Complaint *Complaint `gorm:"foreignKey:ComplaintID" json:"-"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = newOrderedID()
	}
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}
