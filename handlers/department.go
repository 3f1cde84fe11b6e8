package handlers

import (
	"net/http"

	"complaint_desk_go/db"
	"complaint_desk_go/middleware"
	"complaint_desk_go/services"

	"github.com/labstack/echo/v4"
)

type departmentStaffRequest struct {
	UserIDs []string `json:"user_ids"`
}

func ListDepartmentsHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	departments, err := services.ListDepartments(c.Request().Context(), db.DB, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, departments)
}

func CreateDepartmentHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	var input services.DepartmentInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	department, err := services.CreateDepartment(c.Request().Context(), db.DB, actor, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, department)
}

func UpdateDepartmentHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	var input services.DepartmentInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	department, err := services.UpdateDepartment(c.Request().Context(), db.DB, actor, c.Param("id"), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, department)
}

// SetDepartmentStaffHandler replaces the department's staff list
func SetDepartmentStaffHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	var req departmentStaffRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	department, err := services.SetDepartmentStaff(c.Request().Context(), db.DB, actor, c.Param("id"), req.UserIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, department)
}
