package services

import (
	"context"
	"testing"

	"complaint_desk_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndUpdateDepartment(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	admin := ActorFromUser(newTestUser(t, db, "Ada Admin", models.RoleAdmin))

	roads, err := CreateDepartment(ctx, db, admin, DepartmentInput{
		Name:         " Roads ",
		ContactEmail: "roads@city.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "Roads", roads.Name)
	assert.True(t, roads.IsActive)

	inactive := false
	archive, err := CreateDepartment(ctx, db, admin, DepartmentInput{Name: "Archive", IsActive: &inactive})
	require.NoError(t, err)
	var stored models.Department
	require.NoError(t, db.First(&stored, "id = ?", archive.ID).Error)
	assert.False(t, stored.IsActive)

	_, err = CreateDepartment(ctx, db, admin, DepartmentInput{Name: "ROADS"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = CreateDepartment(ctx, db, admin, DepartmentInput{Name: "Parks", ContactEmail: "nope"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = CreateDepartment(ctx, db, admin, DepartmentInput{Name: "Parks", ContactEmail: "Parks <parks@city.example>"})
	assert.ErrorIs(t, err, ErrValidation)

	parks, err := CreateDepartment(ctx, db, admin, DepartmentInput{Name: "Parks", ContactEmail: "Parks@City.example"})
	require.NoError(t, err)
	assert.Equal(t, "parks@city.example", parks.ContactEmail)

	_, err = CreateDepartment(ctx, db, admin, DepartmentInput{Name: "P"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = CreateDepartment(ctx, db, ActingUser{ID: "s", Role: models.RoleStaff}, DepartmentInput{Name: "Parks"})
	assert.ErrorIs(t, err, ErrForbidden)

	t.Run("update", func(t *testing.T) {
		updated, err := UpdateDepartment(ctx, db, admin, roads.ID, DepartmentInput{
			Name:        "Roads",
			Description: "Potholes and signage",
		})
		require.NoError(t, err)
		assert.Equal(t, "Potholes and signage", updated.Description)
		assert.True(t, updated.IsActive)

		_, err = UpdateDepartment(ctx, db, admin, roads.ID, DepartmentInput{Name: "archive"})
		assert.ErrorIs(t, err, ErrConflict)

		_, err = UpdateDepartment(ctx, db, admin, "missing", DepartmentInput{Name: "Ghost"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListDepartments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	water := newTestDepartment(t, db, "Water")
	roads := newTestDepartment(t, db, "Roads")
	closed := newTestDepartment(t, db, "Closed")
	require.NoError(t, db.Model(closed).Update("is_active", false).Error)

	admin := newTestUser(t, db, "Ada Admin", models.RoleAdmin)
	newTestUser(t, db, "Sam Staff", models.RoleStaff, *water)
	newTestUser(t, db, "Sue Staff", models.RoleStaff, *water)
	citizen := newTestUser(t, db, "Uma User", models.RoleUser)
	newTestComplaint(t, db, citizen, inDepartment(water))
	newTestComplaint(t, db, citizen, inDepartment(roads))
	newTestComplaint(t, db, citizen, inDepartment(roads))

	departments, err := ListDepartments(ctx, db, ActorFromUser(admin))
	require.NoError(t, err)
	require.Len(t, departments, 3)
	assert.Equal(t, "Closed", departments[0].Name)
	assert.Equal(t, "Roads", departments[1].Name)
	assert.Equal(t, int64(2), departments[1].ComplaintCount)
	assert.Equal(t, int64(0), departments[1].StaffCount)
	assert.Equal(t, int64(2), departments[2].StaffCount)
	assert.Equal(t, int64(1), departments[2].ComplaintCount)

	departments, err = ListDepartments(ctx, db, ActorFromUser(citizen))
	require.NoError(t, err)
	assert.Len(t, departments, 2, "inactive departments are hidden from non-admins")
}

func TestSetDepartmentStaff(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	water := newTestDepartment(t, db, "Water")
	admin := ActorFromUser(newTestUser(t, db, "Ada Admin", models.RoleAdmin))
	sam := newTestUser(t, db, "Sam Staff", models.RoleStaff)
	sue := newTestUser(t, db, "Sue Staff", models.RoleStaff)
	citizen := newTestUser(t, db, "Uma User", models.RoleUser)

	department, err := SetDepartmentStaff(ctx, db, admin, water.ID, []string{sam.ID, sue.ID, sam.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), department.StaffCount)

	loaded, err := GetUser(ctx, db, sam.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Departments, 1)
	assert.Equal(t, water.ID, loaded.Departments[0].ID)

	_, err = SetDepartmentStaff(ctx, db, admin, water.ID, []string{sam.ID, citizen.ID})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int64(2), countRows(t, db, &models.User{}, "id IN (SELECT user_id FROM user_departments WHERE department_id = ?)", water.ID))

	department, err = SetDepartmentStaff(ctx, db, admin, water.ID, []string{sue.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), department.StaffCount)

	_, err = SetDepartmentStaff(ctx, db, admin, water.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), countRows(t, db, &models.User{}, "id IN (SELECT user_id FROM user_departments WHERE department_id = ?)", water.ID))

	_, err = SetDepartmentStaff(ctx, db, admin, "missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = SetDepartmentStaff(ctx, db, ActorFromUser(sam), water.ID, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}
