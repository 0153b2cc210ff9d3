package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/carojasb94/collection-agency/internal/accounts/adapter/repo"
	"github.com/carojasb94/collection-agency/internal/accounts/service"
	"github.com/carojasb94/collection-agency/internal/platform/config"
	"github.com/carojasb94/collection-agency/internal/platform/database"
	"github.com/carojasb94/collection-agency/internal/platform/lock"
	"github.com/carojasb94/collection-agency/internal/platform/logger"
)

// app holds the infrastructure and services shared by every command.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB

	importSvc *service.ImportService
	debtSvc   *service.DebtService
	agencySvc *service.AgencyService
}

func newApp(configPath string) (*app, error) {
	// 1. Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// 2. Infrastructure
	appLogger, err := logger.NewLogger(cfg.Server.Mode)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	db, err := database.Open(cfg.Database, appLogger)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}

	// 3. Wiring
	agencyRepo := repo.NewAgencyRepo(db)
	clientRepo := repo.NewClientRepo(db)
	consumerRepo := repo.NewConsumerRepo(db)
	debtRepo := repo.NewDebtRepo(db)

	importSvc := service.NewImportService(db, agencyRepo, clientRepo, consumerRepo, debtRepo, appLogger)
	if rdb := lock.NewRedisClient(cfg.Redis); rdb != nil {
		importSvc.WithLocker(lock.NewRedisImportLocker(rdb, cfg.Import.LockTTL, appLogger))
		appLogger.Info("import lock enabled", zap.String("redis", cfg.Redis.Addr))
	}

	return &app{
		cfg:       cfg,
		logger:    appLogger,
		db:        db,
		importSvc: importSvc,
		debtSvc:   service.NewDebtService(debtRepo),
		agencySvc: service.NewAgencyService(agencyRepo),
	}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}
