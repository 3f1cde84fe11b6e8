package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"complaint_desk_go/config"
	"complaint_desk_go/db"
	"complaint_desk_go/middleware"
	"complaint_desk_go/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use unique shared memory name to isolate tests while allowing shared cache for async tasks
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, testDB.AutoMigrate(models.All()...))

	// Set global DB
	prev := db.DB
	db.DB = testDB
	t.Cleanup(func() { db.DB = prev })
	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set(middleware.ContextKeyConfig, &config.Config{
		Environment:   "test",
		SessionSecret: "handler-test-secret",
		TokenTTLHours: 1,
	})

	return e, c, rec
}

// asUser runs the request as an authenticated user
func asUser(c echo.Context, user *models.User) {
	c.Set(middleware.ContextKeyUser, user)
}

func withParam(c echo.Context, name, value string) {
	c.SetParamNames(name)
	c.SetParamValues(value)
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return strings.NewReader(string(raw))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func createTestUser(t *testing.T, testDB *gorm.DB, name, role string, departments ...models.Department) *models.User {
	t.Helper()
	user := &models.User{
		Name:        name,
		Email:       uuid.New().String()[:8] + "@example.com",
		Password:    "x",
		Role:        role,
		IsActive:    true,
		Departments: departments,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createTestComplaint(t *testing.T, testDB *gorm.DB, reporter *models.User, assignee *models.User) *models.Complaint {
	t.Helper()
	complaint := &models.Complaint{
		Title:      "Overflowing bins",
		Details:    "The bins on Oak Avenue have not been emptied this week.",
		Category:   models.CategorySanitation,
		ReporterID: reporter.ID,
	}
	if assignee != nil {
		complaint.AssignedToID = &assignee.ID
	}
	require.NoError(t, testDB.Omit("Reporter", "Department", "AssignedTo").Create(complaint).Error)
	return complaint
}
