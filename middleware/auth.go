package middleware

import (
	"errors"
	"net/http"
	"strings"

	"complaint_desk_go/config"
	"complaint_desk_go/db"
	"complaint_desk_go/models"
	"complaint_desk_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "complaint_desk_session"
	// ContextKeyUser is the context key for the authenticated user
	ContextKeyUser = "user"
	// ContextKeySession is the context key for the session, unset for bearer auth
	ContextKeySession = "session"
	// ContextKeyConfig is the context key for the application config
	ContextKeyConfig = "config"
)

// WithConfig makes the config available to handlers and middleware
func WithConfig(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyConfig, cfg)
			return next(c)
		}
	}
}

// GetConfig retrieves the config from context
func GetConfig(c echo.Context) *config.Config {
	cfg, ok := c.Get(ContextKeyConfig).(*config.Config)
	if !ok {
		return nil
	}
	return cfg
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": message})
}

// RequireAuth accepts either the session cookie or an "Authorization: Bearer" token.
// The user is reloaded on every request so deactivation takes effect at once.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c); ok {
				user, err := userFromBearer(c, token)
				if err != nil {
					return unauthorized(c, "Invalid or expired token")
				}
				if !user.IsActive {
					return unauthorized(c, "Account is disabled")
				}
				c.Set(ContextKeyUser, user)
				return next(c)
			}

			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return unauthorized(c, "Authentication required")
			}

			session, err := services.ValidateSession(db.DB, cookie.Value)
			if err != nil {
				ClearSessionCookie(c)
				return unauthorized(c, "Session expired")
			}

			if !session.User.IsActive {
				ClearSessionCookie(c)
				return unauthorized(c, "Account is disabled")
			}

			c.Set(ContextKeyUser, &session.User)
			c.Set(ContextKeySession, session)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func userFromBearer(c echo.Context, token string) (*models.User, error) {
	cfg := GetConfig(c)
	if cfg == nil {
		return nil, errors.New("config not available")
	}
	claims, err := services.ParseAccessToken(cfg.SessionSecret, token)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := db.DB.Preload("Departments").First(&user, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrUnauthorized
		}
		return nil, err
	}
	return &user, nil
}

// RequireRole is middleware that requires specific roles
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil {
				return unauthorized(c, "Authentication required")
			}

			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Insufficient permissions"})
		}
	}
}

// GetCurrentUser retrieves the current user from context
func GetCurrentUser(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetActingUser returns the identity services run as. ok is false when
// the request is unauthenticated.
func GetActingUser(c echo.Context) (services.ActingUser, bool) {
	user := GetCurrentUser(c)
	if user == nil {
		return services.ActingUser{}, false
	}
	return services.ActorFromUser(user), true
}

// GetCurrentSession retrieves the cookie session from context
func GetCurrentSession(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// SetSessionCookie writes the session cookie
func SetSessionCookie(c echo.Context, session *models.Session) {
	var isProduction bool
	if cfg := GetConfig(c); cfg != nil {
		isProduction = cfg.Environment == "production"
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie clears the session cookie
func ClearSessionCookie(c echo.Context) {
	var isProduction bool
	if cfg := GetConfig(c); cfg != nil {
		isProduction = cfg.Environment == "production"
	}

	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	}
	c.SetCookie(cookie)
}
