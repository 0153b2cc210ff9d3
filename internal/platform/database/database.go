package database

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/carojasb94/collection-agency/internal/accounts/domain"
	"github.com/carojasb94/collection-agency/internal/platform/config"
)

// Open connects to the configured driver and installs plugins.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if cfg.LogSQL {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = NewPostgresDB(cfg.DSN, cfg.MaxIdleConns, cfg.MaxOpenConns, gcfg)
	case "mysql":
		db, err = NewMySQLDB(cfg.DSN, cfg.MaxIdleConns, cfg.MaxOpenConns, gcfg)
	case "sqlite":
		db, err = NewSQLiteDB(cfg.DSN, gcfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Tracing {
		if err := db.Use(otelgorm.NewPlugin()); err != nil {
			log.Warn("failed to install otelgorm plugin", zap.Error(err))
		}
	}

	log.Info("database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate creates or updates the schema, including the debt_consumers join
// table, the unique indexes on clients.reference_no and consumers.ssn, and
// the listing indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto-migrating schema: %w", err)
	}
	return nil
}
