package handlers

import (
	"net/http"
	"time"

	"complaint_desk_go/db"
	"complaint_desk_go/middleware"
	"complaint_desk_go/models"
	"complaint_desk_go/services"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// LoginHandler starts a cookie session and issues a bearer token
func LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	user, err := services.Authenticate(c.Request().Context(), db.DB, req.Email, req.Password)
	if err != nil {
		if err == services.ErrUnauthorized {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
		}
		return respondError(c, err)
	}

	return startSession(c, user, http.StatusOK)
}

// RegisterHandler creates a citizen account and signs it in
func RegisterHandler(c echo.Context) error {
	var input services.CreateUserInput
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := services.RegisterCitizen(c.Request().Context(), db.DB, input)
	if err != nil {
		return respondError(c, err)
	}
	return startSession(c, user, http.StatusCreated)
}

func startSession(c echo.Context, user *models.User, status int) error {
	session, err := services.CreateSession(db.DB, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return respondError(c, err)
	}
	middleware.SetSessionCookie(c, session)

	resp := loginResponse{User: user, ExpiresAt: session.ExpiresAt}
	if cfg := middleware.GetConfig(c); cfg != nil && cfg.SessionSecret != "" {
		ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
		resp.Token, err = services.IssueAccessToken(cfg.SessionSecret, user.ID, user.Role, ttl)
		if err != nil {
			return respondError(c, err)
		}
		resp.ExpiresAt = time.Now().Add(ttl)
	}
	return c.JSON(status, resp)
}

// LogoutHandler ends the cookie session. Bearer tokens simply expire.
func LogoutHandler(c echo.Context) error {
	if session := middleware.GetCurrentSession(c); session != nil {
		if err := services.DeleteSession(db.DB, session.Token); err != nil {
			return respondError(c, err)
		}
	}
	if user := middleware.GetCurrentUser(c); user != nil {
		services.LogSecurityEvent("LOGOUT", user.ID, "")
	}
	middleware.ClearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// GetCurrentUserHandler returns the current user info as JSON
func GetCurrentUserHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return respondError(c, services.ErrUnauthorized)
	}
	return c.JSON(http.StatusOK, user)
}
