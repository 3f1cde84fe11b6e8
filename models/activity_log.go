package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ActivityAction is the kind of change recorded against a complaint
type ActivityAction string

const (
	ActivityNewComplaint      ActivityAction = "NEW_COMPLAINT"
	ActivityStatusChanged     ActivityAction = "STATUS_CHANGED"
	ActivityAssigned          ActivityAction = "ASSIGNED"
	ActivityReassigned        ActivityAction = "REASSIGNED"
	ActivityPriorityChanged   ActivityAction = "PRIORITY_CHANGED"
	ActivityDepartmentChanged ActivityAction = "DEPARTMENT_CHANGED"
	ActivityCommentAdded      ActivityAction = "COMMENT_ADDED"
)

// ErrActivityLogImmutable is returned by the hooks that guard activity rows
var ErrActivityLogImmutable = errors.New("activity log entries are immutable")

// ActivityLog is an append-only record of one change to a complaint
type ActivityLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_activity_complaint_created" json:"created_at"`

	ComplaintID string         `gorm:"type:uuid;not null;index:idx_activity_complaint_created" json:"complaint_id"`
	UserID      string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Action      ActivityAction `gorm:"not null;index" json:"action"`
	OldValue    string         `json:"old_value,omitempty"`
	NewValue    string         `json:"new_value,omitempty"`
	Comment     string         `gorm:"type:text" json:"comment,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate generates the UUID
func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = newOrderedID()
	}
	return nil
}

// BeforeUpdate prevents modification of activity rows
func (a *ActivityLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrActivityLogImmutable
}

// BeforeDelete prevents deletion of activity rows
func (a *ActivityLog) BeforeDelete(tx *gorm.DB) error {
	return ErrActivityLogImmutable
}

// TableName specifies the table name
func (ActivityLog) TableName() string {
	return "activity_logs"
}
