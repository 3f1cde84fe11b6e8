package jobs

import (
	"context"
	"time"

	"complaint_desk_go/logger"
	"complaint_desk_go/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sweeper drops expired in-memory state, e.g. rate limiter buckets
type Sweeper interface {
	Sweep()
}

// CleanupSessions removes expired sessions and sweeps the given in-memory stores
func CleanupSessions(database *gorm.DB, sweepers ...Sweeper) {
	if err := services.CleanupExpiredSessions(database); err != nil {
		logger.Log.Error("error cleaning up expired sessions", zap.Error(err))
	}
	for _, s := range sweepers {
		s.Sweep()
	}
}

// RunMaintenance runs CleanupSessions every interval until ctx is cancelled
func RunMaintenance(ctx context.Context, database *gorm.DB, interval time.Duration, sweepers ...Sweeper) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Log.Info("maintenance job started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("maintenance job stopped")
			return
		case <-ticker.C:
			CleanupSessions(database, sweepers...)
		}
	}
}
