package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"complaint_desk_go/logger"
	"complaint_desk_go/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration is the default session duration (7 days)
	DefaultSessionDuration = 7 * 24 * time.Hour
)

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// timingDummyHash is compared against when the email is unknown so both paths cost a bcrypt check
func timingDummyHash() string {
	dummyHashOnce.Do(func() {
		dummyHash, _ = HashPassword("dummy_password_for_timing_mitigation")
	})
	return dummyHash
}

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Authenticate checks email and password against an active account.
// Every failure is reported as ErrUnauthorized so callers cannot probe for emails.
func Authenticate(ctx context.Context, db *gorm.DB, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrUnauthorized
	}

	var user models.User
	err := db.WithContext(ctx).Preload("Departments").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			VerifyPassword(timingDummyHash(), password)
			LogSecurityEvent("LOGIN_FAILED", "", "unknown email")
			return nil, ErrUnauthorized
		}
		return nil, storeError("load user", err)
	}
	if !user.IsActive || !VerifyPassword(user.Password, password) {
		LogSecurityEvent("LOGIN_FAILED", user.ID, "bad password or inactive account")
		return nil, ErrUnauthorized
	}

	now := time.Now()
	if err := db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		logger.Log.Warn("failed to record login time", zap.String("user_id", user.ID), zap.Error(err))
	}
	user.LastLoginAt = &now
	LogSecurityEvent("LOGIN_SUCCESS", user.ID, "")
	return &user, nil
}

// CreateSession creates a new session for a user
func CreateSession(db *gorm.DB, userID, ipAddress, userAgent string) (*models.Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(DefaultSessionDuration),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// ValidateSession validates a session token and returns the session with its
// user and the user's departments loaded
func ValidateSession(db *gorm.DB, token string) (*models.Session, error) {
	var session models.Session

	err := db.Preload("User.Departments").
		Where("token = ?", token).
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	if session.IsExpired() {
		db.Delete(&session)
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// DeleteSession deletes a session (logout)
func DeleteSession(db *gorm.DB, token string) error {
	result := db.Where("token = ?", token).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	return nil
}

// CleanupExpiredSessions removes all expired sessions from the database
func CleanupExpiredSessions(db *gorm.DB) error {
	result := db.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		logger.Log.Info("cleaned up expired sessions", zap.Int64("count", result.RowsAffected))
	}
	return nil
}

// DeleteAllUserSessions deletes all sessions for a specific user.
// Used when an account is deactivated.
func DeleteAllUserSessions(db *gorm.DB, userID string) error {
	result := db.Where("user_id = ?", userID).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		logger.Log.Info("deleted user sessions", zap.String("user_id", userID), zap.Int64("count", result.RowsAffected))
	}
	return nil
}

// LogSecurityEvent logs security-related events
func LogSecurityEvent(eventType, userID, details string) {
	logger.Log.Info("security event",
		zap.String("security_event", eventType),
		zap.String("user_id", userID),
		zap.String("details", details))
}
