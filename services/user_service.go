package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"complaint_desk_go/models"

	"gorm.io/gorm"
)

// CreateUserInput is the payload for creating an account
type CreateUserInput struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Password      string   `json:"password"`
	Role          string   `json:"role"`
	DepartmentIDs []string `json:"department_ids"`
}

func (in *CreateUserInput) validate() error {
	in.Name = SanitizeText(in.Name)
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))

	if err := checkLength("name", in.Name, 2, 100); err != nil {
		return err
	}
	email, err := normalizeEmail("email", in.Email)
	if err != nil {
		return err
	}
	in.Email = email
	if err := ValidatePassword(in.Password); err != nil {
		return err
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	} else if !models.IsValidRole(in.Role) {
		return invalid("role", "must be one of ADMIN, STAFF, USER")
	}
	if len(in.DepartmentIDs) > 0 && in.Role != models.RoleStaff {
		return invalid("department_ids", "only staff belong to departments")
	}
	return nil
}

// normalizeEmail accepts a bare address only and returns it lower-cased
func normalizeEmail(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Name != "" || addr.Address != raw {
		return "", invalid(field, "is not a valid email address")
	}
	return strings.ToLower(addr.Address), nil
}

// CreateUser creates an account of any role; admins only
func CreateUser(ctx context.Context, db *gorm.DB, actor ActingUser, input CreateUserInput) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	user, err := createUser(ctx, db, input)
	if err != nil {
		return nil, err
	}
	LogSecurityEvent("USER_CREATED", actor.ID, "created user "+user.ID+" with role "+user.Role)
	return user, nil
}

// RegisterCitizen is public self-registration; the role is always USER
func RegisterCitizen(ctx context.Context, db *gorm.DB, input CreateUserInput) (*models.User, error) {
	input.Role = models.RoleUser
	input.DepartmentIDs = nil
	user, err := createUser(ctx, db, input)
	if err != nil {
		return nil, err
	}
	LogSecurityEvent("USER_REGISTERED", user.ID, "")
	return user, nil
}

func createUser(ctx context.Context, db *gorm.DB, input CreateUserInput) (*models.User, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var count int64
	if err := db.WithContext(ctx).Unscoped().Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, storeError("check email", err)
	}
	if count > 0 {
		return nil, ErrConflict
	}

	var departments []models.Department
	if ids := uniqueStrings(input.DepartmentIDs); len(ids) > 0 {
		if err := db.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&departments).Error; err != nil {
			return nil, storeError("load departments", err)
		}
		if len(departments) != len(ids) {
			return nil, invalid("department_ids", "must reference active departments")
		}
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:        input.Name,
		Email:       input.Email,
		Password:    hashed,
		Role:        input.Role,
		IsActive:    true,
		Departments: departments,
	}
	// Departments already exist; only the join rows are written
	if err := db.WithContext(ctx).Omit("Departments.*").Create(&user).Error; err != nil {
		return nil, storeError("create user", err)
	}
	return &user, nil
}

// GetUser loads a user with departments
func GetUser(ctx context.Context, db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).Preload("Departments").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, storeError("load user", err)
	}
	return &user, nil
}

// ListStaff returns staff and admin accounts ordered by name; admins only.
// departmentID optionally restricts the list to members of one department.
func ListStaff(ctx context.Context, db *gorm.DB, actor ActingUser, departmentID string) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	query := db.WithContext(ctx).Preload("Departments").
		Where("users.role IN ?", []string{models.RoleStaff, models.RoleAdmin})
	if departmentID != "" {
		query = query.Joins("JOIN user_departments ON user_departments.user_id = users.id").
			Where("user_departments.department_id = ?", departmentID)
	}

	var users []models.User
	if err := query.Order("users.name ASC").Find(&users).Error; err != nil {
		return nil, storeError("list staff", err)
	}
	return users, nil
}

// SetUserActive enables or disables an account. Disabling also ends every session.
func SetUserActive(ctx context.Context, db *gorm.DB, actor ActingUser, userID string, active bool) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if userID == actor.ID && !active {
		return nil, invalid("is_active", "you cannot deactivate your own account")
	}

	user, err := GetUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(user).Update("is_active", active).Error; err != nil {
		return nil, storeError("update user", err)
	}
	user.IsActive = active

	if !active {
		if err := DeleteAllUserSessions(db.WithContext(ctx), user.ID); err != nil {
			return nil, storeError("end sessions", err)
		}
		LogSecurityEvent("USER_DEACTIVATED", actor.ID, "deactivated user "+user.ID)
	}
	return user, nil
}
