package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Department is a municipal unit that owns staff members and complaints
type Department struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name         string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`

	// Derived at read time, never stored
	StaffCount     int64 `gorm:"-" json:"staff_count"`
	ComplaintCount int64 `gorm:"-" json:"complaint_count"`

	Staff []User `gorm:"many2many:user_departments;" json:"-"`
}

// BeforeCreate hook to generate UUID
func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Department) TableName() string {
	return "departments"
}

// DepartmentSummary is the embedded shape used on complaint views
type DepartmentSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Summary returns the public summary of the department, or nil
func (d *Department) Summary() *DepartmentSummary {
	if d == nil || d.ID == "" {
		return nil
	}
	return &DepartmentSummary{ID: d.ID, Name: d.Name}
}
