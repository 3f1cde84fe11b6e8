package handlers

import (
	"fmt"
	"net/http"
	"time"

	"complaint_desk_go/db"
	"complaint_desk_go/middleware"
	"complaint_desk_go/services"

	"github.com/labstack/echo/v4"
)

func complaintFilterFromQuery(c echo.Context) services.ComplaintFilter {
	return services.ComplaintFilter{
		Status:       c.QueryParam("status"),
		Category:     c.QueryParam("category"),
		Priority:     c.QueryParam("priority"),
		DepartmentID: c.QueryParam("department_id"),
		AssignedToID: c.QueryParam("assigned_to_id"),
		Search:       c.QueryParam("search"),
		Limit:        queryInt(c, "limit", services.DefaultPageLimit),
		Offset:       queryInt(c, "offset", 0),
	}
}

// CreateComplaintHandler files a new complaint as the current user
func CreateComplaintHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	var input services.CreateComplaintInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	view, err := services.CreateComplaint(c.Request().Context(), db.DB, actor, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, view)
}

// ListComplaintsHandler returns the complaints visible to the current user
func ListComplaintsHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	complaints, pagination, err := services.ListComplaints(c.Request().Context(), db.DB, actor, complaintFilterFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":       complaints,
		"pagination": pagination,
	})
}

func GetComplaintHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	view, err := services.GetComplaint(c.Request().Context(), db.DB, actor, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// UpdateComplaintHandler applies a partial update to status, assignment, priority or department
func UpdateComplaintHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	var patch services.ComplaintPatch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "Invalid request body")
	}

	view, err := services.ApplyComplaintPatch(c.Request().Context(), db.DB, actor, c.Param("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func DeleteComplaintHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	if err := services.DeleteComplaint(c.Request().Context(), db.DB, actor, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func ListComplaintActivityHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	entries, err := services.ListComplaintActivity(c.Request().Context(), db.DB, actor, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// ExportComplaintsHandler downloads the filtered complaint list as a spreadsheet
func ExportComplaintsHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	data, err := services.ExportComplaintsXLSX(c.Request().Context(), db.DB, actor, complaintFilterFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}

	filename := fmt.Sprintf("complaints_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
