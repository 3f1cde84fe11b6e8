package models

import (
	"time"

	"gorm.io/gorm"
)

// Complaint status constants
const (
	ComplaintStatusPending    = "PENDING"
	ComplaintStatusInProgress = "IN_PROGRESS"
	ComplaintStatusResolved   = "RESOLVED"
)

// Complaint category constants
const (
	CategoryRoads       = "ROADS"
	CategoryWater       = "WATER"
	CategoryElectricity = "ELECTRICITY"
	CategorySanitation  = "SANITATION"
	CategoryOther       = "OTHER"
)

// Complaint priority constants
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Complaint is a citizen-reported issue tracked through a status lifecycle
type Complaint struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title     string   `gorm:"size:200;not null" json:"title"`
	Details   string   `gorm:"type:text;not null" json:"details"`
	Category  string   `gorm:"size:20;not null;index" json:"category"`
	Priority  string   `gorm:"size:10;not null;default:MEDIUM;index" json:"priority"`
	Status    string   `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	Location  *string  `json:"location,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	PhotoURL  *string  `json:"photo_url,omitempty"`

	// Reporter is fixed at creation
	ReporterID string `gorm:"type:uuid;not null;index" json:"reporter_id"`
	Reporter   User   `gorm:"foreignKey:ReporterID" json:"-"`

	DepartmentID *string     `gorm:"type:uuid;index" json:"department_id,omitempty"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"-"`

	AssignedToID *string `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User   `gorm:"foreignKey:AssignedToID" json:"-"`

	// Stamped on the first transition to RESOLVED and never cleared
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// BeforeCreate hook to generate UUID and apply lifecycle defaults
func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newOrderedID()
	}
	if c.Status == "" {
		c.Status = ComplaintStatusPending
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	return nil
}

// TableName specifies the table name for Complaint model
func (Complaint) TableName() string {
	return "complaints"
}

// IsResolved checks if the complaint is resolved
func (c *Complaint) IsResolved() bool {
	return c.Status == ComplaintStatusResolved
}

// IsAssignedTo checks if the complaint is currently assigned to the user
func (c *Complaint) IsAssignedTo(userID string) bool {
	return c.AssignedToID != nil && *c.AssignedToID == userID
}

// IsValidComplaintStatus checks if the status is valid
func IsValidComplaintStatus(status string) bool {
	switch status {
	case ComplaintStatusPending, ComplaintStatusInProgress, ComplaintStatusResolved:
		return true
	}
	return false
}

// IsValidCategory checks if the category is valid
func IsValidCategory(category string) bool {
	switch category {
	case CategoryRoads, CategoryWater, CategoryElectricity, CategorySanitation, CategoryOther:
		return true
	}
	return false
}

// IsValidPriority checks if the priority is valid
func IsValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// StatusLabel returns the human-readable form of a status value
func StatusLabel(status string) string {
	switch status {
	case ComplaintStatusPending:
		return "Pending"
	case ComplaintStatusInProgress:
		return "In Progress"
	case ComplaintStatusResolved:
		return "Resolved"
	}
	return status
}
