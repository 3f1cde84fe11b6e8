package handlers

import (
	"net/http"
	"strings"
	"testing"

	"complaint_desk_go/models"
	"complaint_desk_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComplaintHandler(t *testing.T) {
	testDB := setupTestDB(t)
	citizen := createTestUser(t, testDB, "Uma User", models.RoleUser)

	t.Run("Success", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/complaints", jsonBody(t, map[string]interface{}{
			"title":    "Pothole on Main Street",
			"details":  "A deep pothole in the left lane near the bakery.",
			"category": "roads",
			"priority": "high",
		}))
		asUser(c, citizen)

		require.NoError(t, CreateComplaintHandler(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var got map[string]interface{}
		decode(t, rec, &got)
		assert.Equal(t, "PENDING", got["status"])
		assert.Equal(t, "ROADS", got["category"])
		assert.Equal(t, citizen.ID, got["reporter_id"])
		reporter := got["reporter"].(map[string]interface{})
		assert.Equal(t, "Uma User", reporter["name"])
	})

	t.Run("ValidationError", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/complaints", jsonBody(t, map[string]interface{}{
			"title":    "Hi",
			"details":  "A deep pothole in the left lane near the bakery.",
			"category": "ROADS",
		}))
		asUser(c, citizen)

		require.NoError(t, CreateComplaintHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "title")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/complaints", strings.NewReader("{"))
		asUser(c, citizen)

		require.NoError(t, CreateComplaintHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/complaints", jsonBody(t, map[string]string{}))
		require.NoError(t, CreateComplaintHandler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestListComplaintsHandler(t *testing.T) {
	testDB := setupTestDB(t)
	u1 := createTestUser(t, testDB, "Uma User", models.RoleUser)
	u2 := createTestUser(t, testDB, "Ivo User", models.RoleUser)
	createTestComplaint(t, testDB, u1, nil)
	createTestComplaint(t, testDB, u1, nil)
	createTestComplaint(t, testDB, u2, nil)

	_, c, rec := setupEcho(http.MethodGet, "/api/complaints?limit=1", nil)
	asUser(c, u1)

	require.NoError(t, ListComplaintsHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Data       []map[string]interface{} `json:"data"`
		Pagination services.Pagination      `json:"pagination"`
	}
	decode(t, rec, &got)
	assert.Len(t, got.Data, 1)
	assert.Equal(t, int64(2), got.Pagination.Total)
	assert.True(t, got.Pagination.HasMore)
}

func TestGetComplaintHandler(t *testing.T) {
	testDB := setupTestDB(t)
	owner := createTestUser(t, testDB, "Uma User", models.RoleUser)
	stranger := createTestUser(t, testDB, "Ivo User", models.RoleUser)
	complaint := createTestComplaint(t, testDB, owner, nil)

	tests := []struct {
		name string
		user *models.User
		id   string
		want int
	}{
		{"Owner", owner, complaint.ID, http.StatusOK},
		{"Stranger", stranger, complaint.ID, http.StatusForbidden},
		{"Missing", owner, "missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c, rec := setupEcho(http.MethodGet, "/api/complaints/"+tt.id, nil)
			asUser(c, tt.user)
			withParam(c, "id", tt.id)

			require.NoError(t, GetComplaintHandler(c))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestUpdateComplaintHandler(t *testing.T) {
	testDB := setupTestDB(t)
	admin := createTestUser(t, testDB, "Ada Admin", models.RoleAdmin)
	staff := createTestUser(t, testDB, "Sam Staff", models.RoleStaff)
	citizen := createTestUser(t, testDB, "Uma User", models.RoleUser)
	complaint := createTestComplaint(t, testDB, citizen, nil)

	patch := func(user *models.User, body string) (int, string) {
		_, c, rec := setupEcho(http.MethodPatch, "/api/complaints/"+complaint.ID, strings.NewReader(body))
		asUser(c, user)
		withParam(c, "id", complaint.ID)
		require.NoError(t, UpdateComplaintHandler(c))
		return rec.Code, rec.Body.String()
	}

	t.Run("CitizenForbidden", func(t *testing.T) {
		code, _ := patch(citizen, `{"status":"RESOLVED"}`)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("EmptyPatch", func(t *testing.T) {
		code, _ := patch(admin, `{}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("UnassignedStaffForbidden", func(t *testing.T) {
		code, _ := patch(staff, `{"status":"IN_PROGRESS"}`)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("AdminAssigns", func(t *testing.T) {
		code, body := patch(admin, `{"assigned_to_id":"`+staff.ID+`"}`)
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, `"assigned_to_id":"`+staff.ID+`"`)
	})

	t.Run("AssigneeResolves", func(t *testing.T) {
		code, body := patch(staff, `{"status":"RESOLVED"}`)
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, `"status":"RESOLVED"`)
		assert.Contains(t, body, `"resolved_at"`)
	})

	t.Run("AdminUnassignsWithNull", func(t *testing.T) {
		code, body := patch(admin, `{"assigned_to_id":null}`)
		assert.Equal(t, http.StatusOK, code)
		assert.NotContains(t, body, `"assigned_to_id"`)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		code, _ := patch(admin, `{"status":"CLOSED"}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestDeleteComplaintHandler(t *testing.T) {
	testDB := setupTestDB(t)
	admin := createTestUser(t, testDB, "Ada Admin", models.RoleAdmin)
	citizen := createTestUser(t, testDB, "Uma User", models.RoleUser)
	complaint := createTestComplaint(t, testDB, citizen, nil)

	_, c, rec := setupEcho(http.MethodDelete, "/api/complaints/"+complaint.ID, nil)
	asUser(c, citizen)
	withParam(c, "id", complaint.ID)
	require.NoError(t, DeleteComplaintHandler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, c, rec = setupEcho(http.MethodDelete, "/api/complaints/"+complaint.ID, nil)
	asUser(c, admin)
	withParam(c, "id", complaint.ID)
	require.NoError(t, DeleteComplaintHandler(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, c, rec = setupEcho(http.MethodGet, "/api/complaints/"+complaint.ID, nil)
	asUser(c, admin)
	withParam(c, "id", complaint.ID)
	require.NoError(t, GetComplaintHandler(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportComplaintsHandler(t *testing.T) {
	testDB := setupTestDB(t)
	admin := createTestUser(t, testDB, "Ada Admin", models.RoleAdmin)
	createTestComplaint(t, testDB, admin, nil)

	_, c, rec := setupEcho(http.MethodGet, "/api/complaints/export", nil)
	asUser(c, admin)
	require.NoError(t, ExportComplaintsHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "complaints_")
	assert.NotEmpty(t, rec.Body.Bytes())
}
