package api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hmartins/customer-directory/internal/domain/customers"
	importservice "github.com/hmartins/customer-directory/internal/domain/imports/service"
	"github.com/hmartins/customer-directory/pkg/config"
	"github.com/hmartins/customer-directory/pkg/cron"
	"github.com/hmartins/customer-directory/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	DirectoryRepo *customers.PostgresRepository

	// Services
	ImportService *importservice.ImportService
	SearchIndex   *customers.SearchIndex
	Scheduler     *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initServices initializes the repository, search, import, and retention
// layers in dependency order.
func (d *Dependencies) initServices() error {
	d.DirectoryRepo = customers.NewPostgresRepository(d.DB.Pool)

	searchIndex, err := customers.NewSearchIndex(d.Config.Search.IndexPath)
	if err != nil {
		return fmt.Errorf("failed to init search index: %w", err)
	}
	d.SearchIndex = searchIndex

	d.ImportService = importservice.NewImportService(
		d.DirectoryRepo,
		d.DirectoryRepo,
		d.DirectoryRepo,
		d.SearchIndex,
		importservice.Settings{
			DefaultPolicy:    importservice.Policy(d.Config.Import.DefaultDuplicates),
			StrictPhones:     d.Config.Import.StrictPhoneCheck,
			MaxFileSizeBytes: d.Config.Import.MaxFileSizeBytes,
			MaxContentLength: d.Config.Import.MaxContentLength,
			MaxPerRowErrors:  d.Config.Import.MaxPerRowErrors,
		},
		d.Logger,
	)

	d.Scheduler = cron.NewScheduler(
		d.DirectoryRepo,
		d.Config.Retention.PurgeSchedule,
		d.Config.Retention.ImportJobDays,
		d.Logger,
	)

	d.Logger.Info("services initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.SearchIndex != nil {
		if err := d.SearchIndex.Close(); err != nil {
			d.Logger.Warn("failed to close search index", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
