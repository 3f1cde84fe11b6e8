package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
	RoleUser  = "USER"
)

type User struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string     `gorm:"not null" json:"name"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	Role        string     `gorm:"not null;default:USER;index" json:"role"` // ADMIN, STAFF, USER
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Staff membership; empty for citizens and usually for admins
	Departments []Department `gorm:"many2many:user_departments;" json:"departments,omitempty"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// IsStaffOrAdmin reports whether the user works complaints rather than files them
func (u *User) IsStaffOrAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleStaff
}

// DepartmentIDs returns the ids of the loaded Departments relation
func (u *User) DepartmentIDs() []string {
	ids := make([]string, 0, len(u.Departments))
	for _, d := range u.Departments {
		ids = append(ids, d.ID)
	}
	return ids
}

// IsValidRole checks if the role is one of the known roles
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff || role == RoleUser
}

// UserSummary is the embedded shape used when a user is joined onto another record
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Summary returns the public summary of the user, or nil for a nil user
func (u *User) Summary() *UserSummary {
	if u == nil || u.ID == "" {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
