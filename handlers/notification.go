package handlers

import (
	"net/http"

	"complaint_desk_go/db"
	"complaint_desk_go/middleware"
	"complaint_desk_go/services"

	"github.com/labstack/echo/v4"
)

// GetNotificationsHandler returns the caller's inbox with the unread count
func GetNotificationsHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}
	ctx := c.Request().Context()
	service := services.NewNotificationService(db.DB)

	notifications, err := service.List(ctx, actor, queryInt(c, "limit", services.DefaultNotificationLimit))
	if err != nil {
		return respondError(c, err)
	}
	unread, err := service.UnreadCount(ctx, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unread":        unread,
	})
}

func MarkNotificationReadHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	service := services.NewNotificationService(db.DB)
	if err := service.MarkAsRead(c.Request().Context(), actor, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func MarkAllNotificationsReadHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	service := services.NewNotificationService(db.DB)
	if err := service.MarkAllAsRead(c.Request().Context(), actor); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func DeleteNotificationHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	service := services.NewNotificationService(db.DB)
	if err := service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func DeleteAllNotificationsHandler(c echo.Context) error {
	actor, ok := middleware.GetActingUser(c)
	if !ok {
		return respondError(c, services.ErrUnauthorized)
	}

	service := services.NewNotificationService(db.DB)
	if err := service.DeleteAll(c.Request().Context(), actor); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
