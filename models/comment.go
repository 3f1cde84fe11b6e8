package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment length bounds, measured after trimming
const (
	CommentMinLength = 1
	CommentMaxLength = 2000
)

// Comment is an append-only note on a complaint
type Comment struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	ComplaintID string `gorm:"type:uuid;not null;index" json:"complaint_id"`
	AuthorID    string `gorm:"type:uuid;not null;index" json:"author_id"`
	Content     string `gorm:"type:text;not null" json:"content"`
	IsInternal  bool   `gorm:"not null;default:false;index" json:"is_internal"`

	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
	Complaint Complaint `gorm:"foreignKey:ComplaintID" json:"-"`
}

// BeforeCreate hook to generate UUID
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newOrderedID()
	}
	return nil
}

// TableName specifies the table name
func (Comment) TableName() string {
	return "comments"
}
