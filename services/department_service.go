package services

import (
	"context"
	"errors"
	"strings"

	"complaint_desk_go/logger"
	"complaint_desk_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DepartmentInput is the create/update payload for a department
type DepartmentInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	IsActive     *bool  `json:"is_active"`
}

func (in *DepartmentInput) validate() error {
	in.Name = SanitizeText(in.Name)
	in.Description = SanitizeText(in.Description)
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)

	if err := checkLength("name", in.Name, 2, 100); err != nil {
		return err
	}
	if in.ContactEmail != "" {
		email, err := normalizeEmail("contact_email", in.ContactEmail)
		if err != nil {
			return err
		}
		in.ContactEmail = email
	}
	return nil
}

// CreateDepartment adds a department; names are unique
func CreateDepartment(ctx context.Context, db *gorm.DB, actor ActingUser, input DepartmentInput) (*models.Department, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := ensureDepartmentNameFree(ctx, db, input.Name, ""); err != nil {
		return nil, err
	}

	department := models.Department{
		Name:         input.Name,
		Description:  input.Description,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
		IsActive:     true,
	}
	if err := db.WithContext(ctx).Create(&department).Error; err != nil {
		return nil, storeError("create department", err)
	}
	// gorm skips zero-value bools with a default tag on insert
	if input.IsActive != nil && !*input.IsActive {
		if err := db.WithContext(ctx).Model(&department).Update("is_active", false).Error; err != nil {
			return nil, storeError("create department", err)
		}
	}

	logger.Log.Info("department created", zap.String("department_id", department.ID), zap.String("name", department.Name))
	return &department, nil
}

// UpdateDepartment replaces the editable fields of a department
func UpdateDepartment(ctx context.Context, db *gorm.DB, actor ActingUser, departmentID string, input DepartmentInput) (*models.Department, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var department models.Department
	if err := db.WithContext(ctx).First(&department, "id = ?", departmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("department")
		}
		return nil, storeError("load department", err)
	}
	if err := ensureDepartmentNameFree(ctx, db, input.Name, department.ID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":          input.Name,
		"description":   input.Description,
		"contact_email": input.ContactEmail,
		"contact_phone": input.ContactPhone,
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if err := db.WithContext(ctx).Model(&department).Updates(updates).Error; err != nil {
		return nil, storeError("update department", err)
	}
	if err := db.WithContext(ctx).First(&department, "id = ?", department.ID).Error; err != nil {
		return nil, storeError("reload department", err)
	}
	return &department, nil
}

// ensureDepartmentNameFree reports a Conflict when another department already uses the name
func ensureDepartmentNameFree(ctx context.Context, db *gorm.DB, name, exceptID string) error {
	query := db.WithContext(ctx).Model(&models.Department{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return storeError("check department name", err)
	}
	if count > 0 {
		return ErrConflict
	}
	return nil
}

// ListDepartments returns departments ordered by name with staff and complaint
// counts filled in. Non-admins only see active departments.
func ListDepartments(ctx context.Context, db *gorm.DB, actor ActingUser) ([]models.Department, error) {
	query := db.WithContext(ctx).Order("name ASC")
	if !actor.IsAdmin() {
		query = query.Where("is_active = ?", true)
	}

	var departments []models.Department
	if err := query.Find(&departments).Error; err != nil {
		return nil, storeError("list departments", err)
	}
	if len(departments) == 0 {
		return departments, nil
	}

	type countRow struct {
		DepartmentID string
		Total        int64
	}

	var staffCounts []countRow
	if err := db.WithContext(ctx).Table("user_departments").
		Select("department_id, COUNT(*) AS total").
		Group("department_id").
		Scan(&staffCounts).Error; err != nil {
		return nil, storeError("count department staff", err)
	}

	var complaintCounts []countRow
	if err := db.WithContext(ctx).Model(&models.Complaint{}).
		Select("department_id, COUNT(*) AS total").
		Where("department_id IS NOT NULL").
		Group("department_id").
		Scan(&complaintCounts).Error; err != nil {
		return nil, storeError("count department complaints", err)
	}

	staff := make(map[string]int64, len(staffCounts))
	for _, row := range staffCounts {
		staff[row.DepartmentID] = row.Total
	}
	complaints := make(map[string]int64, len(complaintCounts))
	for _, row := range complaintCounts {
		complaints[row.DepartmentID] = row.Total
	}
	for i := range departments {
		departments[i].StaffCount = staff[departments[i].ID]
		departments[i].ComplaintCount = complaints[departments[i].ID]
	}
	return departments, nil
}

// SetDepartmentStaff replaces the staff membership of a department.
// Every user must be an active STAFF member.
func SetDepartmentStaff(ctx context.Context, db *gorm.DB, actor ActingUser, departmentID string, userIDs []string) (*models.Department, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	var department models.Department
	if err := db.WithContext(ctx).First(&department, "id = ?", departmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("department")
		}
		return nil, storeError("load department", err)
	}

	ids := uniqueStrings(userIDs)
	var staff []models.User
	if len(ids) > 0 {
		if err := db.WithContext(ctx).
			Where("id IN ? AND role = ? AND is_active = ?", ids, models.RoleStaff, true).
			Find(&staff).Error; err != nil {
			return nil, storeError("load staff", err)
		}
		if len(staff) != len(ids) {
			return nil, invalid("user_ids", "every member must be an active staff user")
		}
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(staff) == 0 {
			return tx.Model(&department).Association("Staff").Clear()
		}
		return tx.Model(&department).Association("Staff").Replace(staff)
	})
	if err != nil {
		return nil, storeError("set department staff", err)
	}

	logger.Log.Info("department staff updated",
		zap.String("department_id", department.ID), zap.Int("staff", len(staff)))
	department.Staff = staff
	department.StaffCount = int64(len(staff))
	return &department, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
