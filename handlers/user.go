package handlers

import (
	"net/http"

	"complaint_desk_go/db"
	"complaint_desk_go/middleware"
	"complaint_desk_go/services"

	"github.com/labstack/echo/v4"
)

type userStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

// GetUsers lists staff and admins, optionally for one department
func GetUsers(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	users, err := services.ListStaff(c.Request().Context(), db.DB, actor, c.QueryParam("department_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser creates a new user (admin only)
func CreateUser(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	var input services.CreateUserInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := services.CreateUser(c.Request().Context(), db.DB, actor, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUserStatus activates or deactivates an account (admin only)
func UpdateUserStatus(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	var req userStatusRequest
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		return badRequest(c, "is_active is required")
	}

	user, err := services.SetUserActive(c.Request().Context(), db.DB, actor, c.Param("id"), *req.IsActive)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
