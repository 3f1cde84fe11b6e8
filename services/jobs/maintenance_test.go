package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"complaint_desk_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) Sweep() { s.calls.Add(1) }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open("file:mem_"+uuid.New().String()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(&models.User{}, &models.Department{}, &models.Session{}))
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return database
}

func TestCleanupSessions(t *testing.T) {
	database := setupTestDB(t)
	user := models.User{Name: "Uma", Email: "uma@example.com", Password: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, database.Create(&user).Error)
	require.NoError(t, database.Create(&models.Session{ID: "old", UserID: user.ID, Token: "old", ExpiresAt: time.Now().Add(-time.Hour)}).Error)
	require.NoError(t, database.Create(&models.Session{ID: "live", UserID: user.ID, Token: "live", ExpiresAt: time.Now().Add(time.Hour)}).Error)

	sweeper := &countingSweeper{}
	CleanupSessions(database, sweeper)

	var ids []string
	require.NoError(t, database.Model(&models.Session{}).Pluck("id", &ids).Error)
	assert.Equal(t, []string{"live"}, ids)
	assert.Equal(t, int32(1), sweeper.calls.Load())
}

func TestRunMaintenanceStopsOnCancel(t *testing.T) {
	database := setupTestDB(t)
	sweeper := &countingSweeper{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunMaintenance(ctx, database, 10*time.Millisecond, sweeper)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("maintenance job did not stop")
	}
}
