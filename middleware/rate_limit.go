package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig defines the configuration for rate limiting
type RateLimitConfig struct {
	// Requests is the maximum number of requests allowed within the window
	Requests int
	// Window is the time window for rate limiting
	Window time.Duration
	// KeyFunc returns the bucket key for a request (defaults to IP)
	KeyFunc func(c echo.Context) string
	// Message is the error message returned when rate limit is exceeded
	Message string
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// RateLimiter is a fixed-window, in-memory limiter
type RateLimiter struct {
	config RateLimitConfig
	store  map[string]*rateLimitEntry
	mu     sync.Mutex
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.Message == "" {
		config.Message = "Too many requests. Please try again later."
	}
	return &RateLimiter{
		config: config,
		store:  make(map[string]*rateLimitEntry),
		now:    time.Now,
	}
}

// allow counts one request against key and reports whether it may proceed,
// plus the time left in the current window
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, exists := rl.store[key]
	if !exists || now.After(entry.expiresAt) {
		rl.store[key] = &rateLimitEntry{count: 1, expiresAt: now.Add(rl.config.Window)}
		return true, rl.config.Window
	}
	if entry.count >= rl.config.Requests {
		return false, entry.expiresAt.Sub(now)
	}
	entry.count++
	return true, entry.expiresAt.Sub(now)
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, remaining := rl.allow(rl.config.KeyFunc(c))
			if !ok {
				seconds := int(remaining.Seconds()) + 1
				c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": rl.config.Message})
			}
			return next(c)
		}
	}
}

// Sweep removes expired entries
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, entry := range rl.store {
		if now.After(entry.expiresAt) {
			delete(rl.store, key)
		}
	}
}

// UserOrIPKey buckets authenticated requests by user and the rest by IP
func UserOrIPKey(c echo.Context) string {
	if user := GetCurrentUser(c); user != nil {
		return "user:" + user.ID
	}
	return "ip:" + c.RealIP()
}

// LoginRateLimiter limits login and registration attempts to 5 per minute per IP
var LoginRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 5,
	Window:   1 * time.Minute,
	Message:  "Too many login attempts. Please wait a minute before trying again.",
})

// SubmissionRateLimiter limits complaint and comment creation to 20 per minute per user
var SubmissionRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 20,
	Window:   1 * time.Minute,
	KeyFunc:  UserOrIPKey,
	Message:  "Too many submissions. Please wait before trying again.",
})
