package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"complaint_desk_go/logger"
	"complaint_desk_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Complaint text bounds, measured after sanitising
const (
	TitleMinLength   = 5
	TitleMaxLength   = 200
	DetailsMinLength = 20
	DetailsMaxLength = 5000

	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ComplaintView is a complaint joined with reporter, department and assignee summaries
type ComplaintView struct {
	models.Complaint
	Reporter   *models.UserSummary       `json:"reporter"`
	Department *models.DepartmentSummary `json:"department,omitempty"`
	AssignedTo *models.UserSummary       `json:"assigned_to,omitempty"`
}

// NewComplaintView builds the view from a complaint with its relations preloaded
func NewComplaintView(c *models.Complaint) *ComplaintView {
	return &ComplaintView{
		Complaint:  *c,
		Reporter:   c.Reporter.Summary(),
		Department: c.Department.Summary(),
		AssignedTo: c.AssignedTo.Summary(),
	}
}

// CreateComplaintInput is the citizen-facing submission payload
type CreateComplaintInput struct {
	Title        string   `json:"title"`
	Details      string   `json:"details"`
	Category     string   `json:"category"`
	Priority     string   `json:"priority"`
	Location     string   `json:"location"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	PhotoURL     string   `json:"photo_url"`
	DepartmentID string   `json:"department_id"`
}

// ComplaintFilter narrows complaint listings
type ComplaintFilter struct {
	Status       string
	Category     string
	Priority     string
	DepartmentID string
	AssignedToID string
	Search       string
	Limit        int
	Offset       int
}

// Pagination is the envelope returned with paged listings
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

func newPagination(total int64, limit, offset, returned int) Pagination {
	return Pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+returned) < total,
	}
}

// ClampPage applies the default and maximum page size
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// loadComplaint fetches a live complaint with its relations
func loadComplaint(ctx context.Context, db *gorm.DB, complaintID string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := db.WithContext(ctx).
		Preload("Reporter").
		Preload("Department").
		Preload("AssignedTo").
		First(&complaint, "id = ?", complaintID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("complaint")
		}
		return nil, storeError("load complaint", err)
	}
	return &complaint, nil
}

// loadAuthorized loads a complaint and applies one access rule to it
func loadAuthorized(ctx context.Context, db *gorm.DB, complaintID string, allowed func(*models.Complaint) bool) (*models.Complaint, error) {
	complaint, err := loadComplaint(ctx, db, complaintID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(complaint, allowed).Err(); err != nil {
		return nil, err
	}
	return complaint, nil
}

// visibleComplaints scopes a complaint query to what the actor may see
func visibleComplaints(query *gorm.DB, actor ActingUser) *gorm.DB {
	switch actor.Role {
	case models.RoleAdmin:
		return query
	case models.RoleStaff:
		if len(actor.DepartmentIDs) == 0 {
			return query.Where("assigned_to_id = ?", actor.ID)
		}
		return query.Where("assigned_to_id = ? OR department_id IN ?", actor.ID, actor.DepartmentIDs)
	case models.RoleUser:
		return query.Where("reporter_id = ?", actor.ID)
	}
	// Unknown roles see nothing
	return query.Where("1 = 0")
}

func (in *CreateComplaintInput) validate() error {
	in.Title = SanitizeText(in.Title)
	in.Details = SanitizeText(in.Details)
	in.Location = SanitizeText(in.Location)
	in.Category = strings.ToUpper(strings.TrimSpace(in.Category))
	in.Priority = strings.ToUpper(strings.TrimSpace(in.Priority))
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)
	in.DepartmentID = strings.TrimSpace(in.DepartmentID)

	if err := checkLength("title", in.Title, TitleMinLength, TitleMaxLength); err != nil {
		return err
	}
	if err := checkLength("details", in.Details, DetailsMinLength, DetailsMaxLength); err != nil {
		return err
	}
	if !models.IsValidCategory(in.Category) {
		return invalid("category", "unknown category %q", in.Category)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	} else if !models.IsValidPriority(in.Priority) {
		return invalid("priority", "unknown priority %q", in.Priority)
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90) {
		return invalid("latitude", "must be between -90 and 90")
	}
	if in.Longitude != nil && (*in.Longitude < -180 || *in.Longitude > 180) {
		return invalid("longitude", "must be between -180 and 180")
	}
	if in.PhotoURL != "" {
		u, err := url.Parse(in.PhotoURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("photo_url", "must be an http(s) URL")
		}
	}
	return nil
}

// CreateComplaint records a new complaint for the actor together with its
// NEW_COMPLAINT activity entry and an inbox notification for every active admin.
func CreateComplaint(ctx context.Context, db *gorm.DB, actor ActingUser, input CreateComplaintInput) (*ComplaintView, error) {
	if actor.ID == "" {
		return nil, ErrUnauthorized
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	complaint := models.Complaint{
		Title:      input.Title,
		Details:    input.Details,
		Category:   input.Category,
		Priority:   input.Priority,
		Status:     models.ComplaintStatusPending,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		ReporterID: actor.ID,
	}
	if input.Location != "" {
		complaint.Location = &input.Location
	}
	if input.PhotoURL != "" {
		complaint.PhotoURL = &input.PhotoURL
	}
	if input.DepartmentID != "" {
		if _, err := activeDepartment(ctx, db, input.DepartmentID); err != nil {
			return nil, err
		}
		complaint.DepartmentID = &input.DepartmentID
	}

	var notifications []models.Notification
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&complaint).Error; err != nil {
			return err
		}

		entry := models.ActivityLog{
			ComplaintID: complaint.ID,
			UserID:      actor.ID,
			Action:      models.ActivityNewComplaint,
			NewValue:    complaint.Status,
			Comment:     "Complaint submitted",
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		var adminIDs []string
		if err := tx.Model(&models.User{}).
			Where("role = ? AND is_active = ?", models.RoleAdmin, true).
			Pluck("id", &adminIDs).Error; err != nil {
			return err
		}
		for _, id := range adminIDs {
			notifications = appendNotification(notifications, actor.ID, models.Notification{
				UserID:      id,
				ComplaintID: &complaint.ID,
				Type:        models.NotificationTypeNewComplaint,
				Title:       "New complaint submitted",
				Message:     fmt.Sprintf("%s reported %q (%s, %s priority).", actor.Name, complaint.Title, complaint.Category, complaint.Priority),
			})
		}
		return createNotifications(tx, notifications)
	})
	if err != nil {
		return nil, storeError("create complaint", err)
	}

	logger.Log.Info("complaint created",
		zap.String("complaint_id", complaint.ID),
		zap.String("reporter_id", actor.ID),
		zap.String("category", complaint.Category))
	dispatchAfterCommit(notifications)

	created, err := loadComplaint(ctx, db, complaint.ID)
	if err != nil {
		return nil, err
	}
	return NewComplaintView(created), nil
}

// GetComplaint returns one complaint the actor may view
func GetComplaint(ctx context.Context, db *gorm.DB, actor ActingUser, complaintID string) (*ComplaintView, error) {
	complaint, err := loadAuthorized(ctx, db, complaintID, func(c *models.Complaint) bool {
		return CanView(actor, c)
	})
	if err != nil {
		return nil, err
	}
	return NewComplaintView(complaint), nil
}

func filteredComplaints(ctx context.Context, db *gorm.DB, actor ActingUser, filter ComplaintFilter) *gorm.DB {
	query := visibleComplaints(db.WithContext(ctx).Model(&models.Complaint{}), actor)

	if s := strings.ToUpper(filter.Status); models.IsValidComplaintStatus(s) {
		query = query.Where("status = ?", s)
	}
	if c := strings.ToUpper(filter.Category); models.IsValidCategory(c) {
		query = query.Where("category = ?", c)
	}
	if p := strings.ToUpper(filter.Priority); models.IsValidPriority(p) {
		query = query.Where("priority = ?", p)
	}
	if filter.DepartmentID != "" {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.AssignedToID != "" {
		query = query.Where("assigned_to_id = ?", filter.AssignedToID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(search) + "%"
		query = query.Where(`(title LIKE ? ESCAPE '\' OR details LIKE ? ESCAPE '\' OR location LIKE ? ESCAPE '\')`, like, like, like)
	}
	return query
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes LIKE wildcards in user input match literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ListComplaints returns a page of complaints visible to the actor, newest first
func ListComplaints(ctx context.Context, db *gorm.DB, actor ActingUser, filter ComplaintFilter) ([]ComplaintView, Pagination, error) {
	limit, offset := ClampPage(filter.Limit, filter.Offset)

	var total int64
	if err := filteredComplaints(ctx, db, actor, filter).Count(&total).Error; err != nil {
		return nil, Pagination{}, storeError("count complaints", err)
	}

	var complaints []models.Complaint
	if err := filteredComplaints(ctx, db, actor, filter).
		Preload("Reporter").
		Preload("Department").
		Preload("AssignedTo").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&complaints).Error; err != nil {
		return nil, Pagination{}, storeError("list complaints", err)
	}

	views := make([]ComplaintView, 0, len(complaints))
	for i := range complaints {
		views = append(views, *NewComplaintView(&complaints[i]))
	}
	return views, newPagination(total, limit, offset, len(views)), nil
}

// DeleteComplaint soft-deletes a complaint; admins only
func DeleteComplaint(ctx context.Context, db *gorm.DB, actor ActingUser, complaintID string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	complaint, err := loadComplaint(ctx, db, complaintID)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Delete(complaint).Error; err != nil {
		return storeError("delete complaint", err)
	}
	logger.Log.Info("complaint deleted", zap.String("complaint_id", complaintID), zap.String("actor_id", actor.ID))
	return nil
}

// ListComplaintActivity returns the activity trail oldest first. Entries for
// internal comments are hidden from actors who cannot read internal comments.
func ListComplaintActivity(ctx context.Context, db *gorm.DB, actor ActingUser, complaintID string) ([]models.ActivityLog, error) {
	complaint, err := loadAuthorized(ctx, db, complaintID, func(c *models.Complaint) bool {
		return CanView(actor, c)
	})
	if err != nil {
		return nil, err
	}

	query := db.WithContext(ctx).Preload("User").Where("complaint_id = ?", complaint.ID)
	if !CanSeeInternal(actor, complaint) {
		query = query.Where("NOT (action = ? AND new_value = ?)", models.ActivityCommentAdded, commentVisibilityInternal)
	}

	var entries []models.ActivityLog
	if err := query.Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, storeError("list activity", err)
	}
	return entries, nil
}

// ApplyComplaintPatch is the lifecycle transition engine. It validates the patch,
// authorizes every field it changes, and commits the complaint update, its activity
// entries and its notifications in one transaction. A patch that changes nothing
// writes nothing.
func ApplyComplaintPatch(ctx context.Context, db *gorm.DB, actor ActingUser, complaintID string, patch ComplaintPatch) (*ComplaintView, error) {
	if !actor.IsStaffOrAdmin() {
		return nil, ErrForbidden
	}
	if patch.IsEmpty() {
		return nil, invalid("", "no fields to update")
	}
	if err := patch.normalize(); err != nil {
		return nil, err
	}

	complaint, err := loadAuthorized(ctx, db, complaintID, func(c *models.Complaint) bool {
		changed := patch.changedFields(c)
		if len(changed) == 0 {
			// a no-op still needs edit rights on the complaint
			return CanMutate(actor, c, FieldStatus)
		}
		for _, field := range changed {
			if !CanMutate(actor, c, field) {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	in := transitionInput{
		Actor:   actor,
		Current: complaint,
		Patch:   patch,
		Now:     time.Now(),
	}
	if patch.AssignedToID.Value != nil {
		if in.NewAssignee, err = assignableUser(ctx, db, *patch.AssignedToID.Value); err != nil {
			return nil, err
		}
	}
	if patch.DepartmentID.Value != nil {
		if in.NewDepartment, err = activeDepartment(ctx, db, *patch.DepartmentID.Value); err != nil {
			return nil, err
		}
	}

	plan := planTransition(in)
	if plan.Empty() {
		return NewComplaintView(complaint), nil
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Complaint{}).Where("id = ?", complaint.ID).Updates(plan.Updates).Error; err != nil {
			return err
		}
		if err := tx.Create(&plan.Activities).Error; err != nil {
			return err
		}
		return createNotifications(tx, plan.Notifications)
	})
	if err != nil {
		logger.Log.Error("complaint update rolled back",
			zap.String("complaint_id", complaint.ID), zap.String("actor_id", actor.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: update complaint: %v", ErrInternal, err)
	}

	logger.Log.Info("complaint updated",
		zap.String("complaint_id", complaint.ID),
		zap.String("actor_id", actor.ID),
		zap.Int("changes", len(plan.Activities)),
		zap.Int("notifications", len(plan.Notifications)))
	dispatchAfterCommit(plan.Notifications)

	updated, err := loadComplaint(ctx, db, complaint.ID)
	if err != nil {
		return nil, err
	}
	return NewComplaintView(updated), nil
}

// assignableUser resolves an assignee id to an active staff member or admin
func assignableUser(ctx context.Context, db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).
		Where("role IN ? AND is_active = ?", []string{models.RoleStaff, models.RoleAdmin}, true).
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("assigned_to_id", "must reference an active staff member")
		}
		return nil, storeError("load assignee", err)
	}
	return &user, nil
}

// activeDepartment resolves a department id to an active department
func activeDepartment(ctx context.Context, db *gorm.DB, departmentID string) (*models.Department, error) {
	var department models.Department
	err := db.WithContext(ctx).Where("is_active = ?", true).First(&department, "id = ?", departmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("department_id", "must reference an active department")
		}
		return nil, storeError("load department", err)
	}
	return &department, nil
}
