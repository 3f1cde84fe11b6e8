package services

import (
	"complaint_desk_go/models"
)

// ActingUser is the identity every lifecycle, comment and notification call runs as.
// It is passed explicitly; nothing in this package looks up the current user.
type ActingUser struct {
	ID            string
	Role          string
	Name          string
	DepartmentIDs []string
}

// ActorFromUser builds an ActingUser from a loaded user (Departments preloaded)
func ActorFromUser(u *models.User) ActingUser {
	return ActingUser{
		ID:            u.ID,
		Role:          u.Role,
		Name:          u.Name,
		DepartmentIDs: u.DepartmentIDs(),
	}
}

func (a ActingUser) IsAdmin() bool { return a.Role == models.RoleAdmin }
func (a ActingUser) IsStaff() bool { return a.Role == models.RoleStaff }

// IsStaffOrAdmin reports whether the actor may work complaints
func (a ActingUser) IsStaffOrAdmin() bool {
	return a.IsAdmin() || a.IsStaff()
}

// InDepartment reports whether the actor is a member of the department
func (a ActingUser) InDepartment(departmentID *string) bool {
	if departmentID == nil {
		return false
	}
	for _, id := range a.DepartmentIDs {
		if id == *departmentID {
			return true
		}
	}
	return false
}
