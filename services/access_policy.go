package services

import (
	"complaint_desk_go/models"
)

// Decision is the outcome of an access check
type Decision int

const (
	Allow Decision = iota
	Deny
	NotFound
)

// Err converts a decision to the error the caller should return, or nil
func (d Decision) Err() error {
	switch d {
	case Deny:
		return ErrForbidden
	case NotFound:
		return ErrNotFound
	}
	return nil
}

// Mutable complaint fields, checked individually by CanMutate
const (
	FieldStatus     = "status"
	FieldAssignee   = "assigned_to_id"
	FieldDepartment = "department_id"
	FieldPriority   = "priority"
)

// CanView reports whether the actor may see the complaint at all.
// Staff see complaints assigned to them and complaints of their departments.
func CanView(actor ActingUser, complaint *models.Complaint) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStaff:
		return complaint.IsAssignedTo(actor.ID) || actor.InDepartment(complaint.DepartmentID)
	case models.RoleUser:
		return complaint.ReporterID == actor.ID
	}
	return false
}

// CanComment reports whether the actor may add a comment. Department membership
// grants visibility only, so unassigned staff cannot comment.
func CanComment(actor ActingUser, complaint *models.Complaint, isInternal bool) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStaff:
		return complaint.IsAssignedTo(actor.ID)
	case models.RoleUser:
		return !isInternal && complaint.ReporterID == actor.ID
	}
	return false
}

// CanSeeInternal reports whether internal comments of the complaint are visible
func CanSeeInternal(actor ActingUser, complaint *models.Complaint) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStaff:
		return complaint.IsAssignedTo(actor.ID)
	}
	return false
}

// CanMutate reports whether the actor may change one field of the complaint.
// Assignment is an admin-only triage action.
func CanMutate(actor ActingUser, complaint *models.Complaint, field string) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleStaff:
		if !complaint.IsAssignedTo(actor.ID) {
			return false
		}
		switch field {
		case FieldStatus, FieldPriority, FieldDepartment:
			return true
		}
	}
	return false
}

// Authorize folds a lookup result and a permission check into one decision.
// Missing or soft-deleted complaints are NotFound; existing but denied ones are Deny.
func Authorize(complaint *models.Complaint, allowed func(*models.Complaint) bool) Decision {
	if complaint == nil || complaint.ID == "" || complaint.DeletedAt.Valid {
		return NotFound
	}
	if !allowed(complaint) {
		return Deny
	}
	return Allow
}
