package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"complaint_desk_go/models"
)

// OptionalID distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present; Value is nil for null or "".
type OptionalID struct {
	Set   bool
	Value *string
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		o.Value = nil
		return nil
	}
	o.Value = &s
	return nil
}

// SetID returns an OptionalID carrying id
func SetID(id string) OptionalID {
	return OptionalID{Set: true, Value: &id}
}

// ClearID returns an OptionalID that clears the field
func ClearID() OptionalID {
	return OptionalID{Set: true}
}

// ComplaintPatch is a partial update of the mutable complaint fields.
// Nil / unset members are left untouched.
type ComplaintPatch struct {
	Status       *string    `json:"status"`
	AssignedToID OptionalID `json:"assigned_to_id"`
	DepartmentID OptionalID `json:"department_id"`
	Priority     *string    `json:"priority"`
}

// IsEmpty reports whether the patch names no field at all
func (p ComplaintPatch) IsEmpty() bool {
	return p.Status == nil && p.Priority == nil && !p.AssignedToID.Set && !p.DepartmentID.Set
}

// normalize upper-cases enum values and rejects unknown ones
func (p *ComplaintPatch) normalize() error {
	if p.Status != nil {
		s := strings.ToUpper(strings.TrimSpace(*p.Status))
		if !models.IsValidComplaintStatus(s) {
			return invalid("status", "unknown status %q", *p.Status)
		}
		p.Status = &s
	}
	if p.Priority != nil {
		s := strings.ToUpper(strings.TrimSpace(*p.Priority))
		if !models.IsValidPriority(s) {
			return invalid("priority", "unknown priority %q", *p.Priority)
		}
		p.Priority = &s
	}
	return nil
}

// changedFields lists the fields whose patched value differs from the complaint.
// Fields sent with their current value are left out.
func (p ComplaintPatch) changedFields(c *models.Complaint) []string {
	var out []string
	if p.Status != nil && *p.Status != c.Status {
		out = append(out, FieldStatus)
	}
	if p.AssignedToID.Set && !sameID(c.AssignedToID, p.AssignedToID.Value) {
		out = append(out, FieldAssignee)
	}
	if p.DepartmentID.Set && !sameID(c.DepartmentID, p.DepartmentID.Value) {
		out = append(out, FieldDepartment)
	}
	if p.Priority != nil && *p.Priority != c.Priority {
		out = append(out, FieldPriority)
	}
	return out
}

// transitionInput is everything the planner needs; references in the patch are
// already resolved so planning does no I/O.
type transitionInput struct {
	Actor         ActingUser
	Current       *models.Complaint // Department and AssignedTo preloaded
	Patch         ComplaintPatch
	NewAssignee   *models.User
	NewDepartment *models.Department
	Now           time.Time
}

// transitionPlan is the set of writes one patch produces
type transitionPlan struct {
	Updates       map[string]interface{}
	Activities    []models.ActivityLog
	Notifications []models.Notification
}

// Empty reports whether the patch changed nothing
func (p *transitionPlan) Empty() bool {
	return len(p.Updates) == 0
}

func (p *transitionPlan) log(in transitionInput, action models.ActivityAction, oldValue, newValue, comment string) {
	p.Activities = append(p.Activities, models.ActivityLog{
		CreatedAt:   in.Now,
		ComplaintID: in.Current.ID,
		UserID:      in.Actor.ID,
		Action:      action,
		OldValue:    oldValue,
		NewValue:    newValue,
		Comment:     comment,
	})
}

func (p *transitionPlan) notify(in transitionInput, recipientID, notificationType, title, message string) {
	p.Notifications = appendNotification(p.Notifications, in.Actor.ID, models.Notification{
		CreatedAt:   in.Now,
		UserID:      recipientID,
		ComplaintID: &in.Current.ID,
		Type:        notificationType,
		Title:       title,
		Message:     message,
	})
}

// planTransition diffs the patch against the current complaint. Only fields whose
// value actually changes produce updates, activity entries or notifications.
func planTransition(in transitionInput) transitionPlan {
	plan := transitionPlan{Updates: map[string]interface{}{}}
	c := in.Current

	if in.Patch.Status != nil && *in.Patch.Status != c.Status {
		next := *in.Patch.Status
		plan.Updates["status"] = next
		if next == models.ComplaintStatusResolved && c.ResolvedAt == nil {
			plan.Updates["resolved_at"] = in.Now
		}
		plan.log(in, models.ActivityStatusChanged, c.Status, next,
			fmt.Sprintf("Status changed from %s to %s", models.StatusLabel(c.Status), models.StatusLabel(next)))
		plan.notify(in, c.ReporterID, models.NotificationTypeStatusChanged,
			"Complaint status updated",
			fmt.Sprintf("Your complaint %q is now %s.", c.Title, models.StatusLabel(next)))
	}

	if in.Patch.AssignedToID.Set && !sameID(c.AssignedToID, in.Patch.AssignedToID.Value) {
		oldName := userName(c.AssignedTo)
		newName := userName(in.NewAssignee)
		plan.Updates["assigned_to_id"] = in.Patch.AssignedToID.Value

		action := models.ActivityReassigned
		var comment string
		switch {
		case c.AssignedToID == nil:
			action = models.ActivityAssigned
			comment = fmt.Sprintf("Assigned to %s", newName)
		case in.Patch.AssignedToID.Value == nil:
			comment = fmt.Sprintf("Unassigned from %s", oldName)
		default:
			comment = fmt.Sprintf("Reassigned from %s to %s", oldName, newName)
		}
		plan.log(in, action, oldName, newName, comment)

		// Unassignment notifies nobody
		if in.NewAssignee != nil {
			plan.notify(in, in.NewAssignee.ID, string(action),
				"Complaint assigned to you",
				fmt.Sprintf("You have been assigned complaint %q.", c.Title))
		}
	}

	if in.Patch.Priority != nil && *in.Patch.Priority != c.Priority {
		plan.Updates["priority"] = *in.Patch.Priority
		plan.log(in, models.ActivityPriorityChanged, c.Priority, *in.Patch.Priority,
			fmt.Sprintf("Priority changed from %s to %s", c.Priority, *in.Patch.Priority))
	}

	if in.Patch.DepartmentID.Set && !sameID(c.DepartmentID, in.Patch.DepartmentID.Value) {
		oldName := departmentName(c.Department)
		newName := departmentName(in.NewDepartment)
		plan.Updates["department_id"] = in.Patch.DepartmentID.Value
		plan.log(in, models.ActivityDepartmentChanged, oldName, newName,
			fmt.Sprintf("Department changed from %s to %s", oldName, newName))
	}

	if len(plan.Updates) > 0 {
		plan.Updates["updated_at"] = in.Now
	}
	return plan
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func userName(u *models.User) string {
	if u == nil || u.ID == "" {
		return "Unassigned"
	}
	return u.Name
}

func departmentName(d *models.Department) string {
	if d == nil || d.ID == "" {
		return "None"
	}
	return d.Name
}
