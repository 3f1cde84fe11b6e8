package db

import (
	"fmt"

	"complaint_desk_go/config"
	"complaint_desk_go/logger"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the configured database. SQLite runs in WAL mode; libsql
// points the same dialector at a Turso database; postgres goes through pgx.
func Initialize(cfg *config.Config) error {
	// Determine log level based on environment
	logLevel := gormlogger.Info
	if cfg.Environment == "production" {
		logLevel = gormlogger.Warn
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Log.Info("database connection established", zap.String("driver", cfg.DBDriver))
	return nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DBDriverLibSQL:
		if cfg.TursoDatabaseURL == "" {
			return nil, fmt.Errorf("TURSO_DATABASE_URL is required for the libsql driver")
		}
		dsn := cfg.TursoDatabaseURL
		if cfg.TursoAuthToken != "" {
			dsn += "?authToken=" + cfg.TursoAuthToken
		}
		return sqlite.New(sqlite.Config{DriverName: "libsql", DSN: dsn}), nil
	case config.DBDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		return postgres.Open(cfg.DatabaseURL), nil
	default:
		// Enable WAL mode for better concurrency support
		return sqlite.Open(cfg.DBPath + "?_journal_mode=WAL&_foreign_keys=on"), nil
	}
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Log.Info("database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
