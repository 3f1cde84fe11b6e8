package handlers

import (
	"net/http"

	"complaint_desk_go/db"
	"complaint_desk_go/middleware"
	"complaint_desk_go/services"

	"github.com/labstack/echo/v4"
)

type addCommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// AddCommentHandler posts a comment on a complaint
func AddCommentHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	comment, err := services.AddComment(c.Request().Context(), db.DB, actor, c.Param("id"), req.Content, req.IsInternal)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// ListCommentsHandler pages through a complaint's comments, oldest first
func ListCommentsHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	page, err := services.ListComments(c.Request().Context(), db.DB, actor, c.Param("id"),
		queryInt(c, "limit", services.DefaultPageLimit), queryInt(c, "offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}
