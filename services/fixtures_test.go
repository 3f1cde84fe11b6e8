package services

import (
	"testing"

	"complaint_desk_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique shared-cache name keeps tests isolated while every pooled connection sees the same tables
	dsn := "file:mem_" + uuid.New().String() + "?mode=memory&cache=shared&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, name, role string, departments ...models.Department) *models.User {
	t.Helper()
	user := &models.User{
		Name:        name,
		Email:       uuid.New().String()[:8] + "@example.com",
		Password:    "not-a-real-hash",
		Role:        role,
		IsActive:    true,
		Departments: departments,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestDepartment(t *testing.T, db *gorm.DB, name string) *models.Department {
	t.Helper()
	department := &models.Department{Name: name, IsActive: true}
	require.NoError(t, db.Create(department).Error)
	return department
}

func newTestComplaint(t *testing.T, db *gorm.DB, reporter *models.User, opts ...func(*models.Complaint)) *models.Complaint {
	t.Helper()
	complaint := &models.Complaint{
		Title:      "Leak near park",
		Details:    "Water has been leaking from the main for days.",
		Category:   models.CategoryWater,
		Priority:   models.PriorityHigh,
		ReporterID: reporter.ID,
	}
	for _, opt := range opts {
		opt(complaint)
	}
	require.NoError(t, db.Omit("Reporter", "Department", "AssignedTo").Create(complaint).Error)
	return complaint
}

func assignedTo(u *models.User) func(*models.Complaint) {
	return func(c *models.Complaint) { c.AssignedToID = &u.ID }
}

func inDepartment(d *models.Department) func(*models.Complaint) {
	return func(c *models.Complaint) { c.DepartmentID = &d.ID }
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func reloadComplaint(t *testing.T, db *gorm.DB, id string) *models.Complaint {
	t.Helper()
	var c models.Complaint
	require.NoError(t, db.Unscoped().First(&c, "id = ?", id).Error)
	return &c
}

func stringPtr(s string) *string {
	return &s
}
