package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/rewards"
	rewardshandler "github.com/FACorreiaa/card-reward-tracker/internal/domain/rewards/handler"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/spend"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement"
	statementhandler "github.com/FACorreiaa/card-reward-tracker/internal/domain/statement/handler"
	statementservice "github.com/FACorreiaa/card-reward-tracker/internal/domain/statement/service"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
	taxonomyhandler "github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy/handler"

	"github.com/FACorreiaa/card-reward-tracker/pkg/config"
	"github.com/FACorreiaa/card-reward-tracker/pkg/cron"
	"github.com/FACorreiaa/card-reward-tracker/pkg/db"
	"github.com/FACorreiaa/card-reward-tracker/pkg/metrics"
	"github.com/FACorreiaa/card-reward-tracker/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Repositories
	TransactionRepo *statement.Repository
	SnapshotRepo    *spend.Repository
	RewardsRepo     *rewards.Repository

	// Domain components
	Classifier    *taxonomy.Classifier
	RuleIndex     *taxonomy.RuleIndex
	CatalogHolder *rewards.Holder

	// Services
	StatementService *statementservice.Service
	RewardsService   *rewards.Service
	FileArchive      storage.Archive
	Scheduler        *cron.Scheduler

	// Handlers
	StatementHandler *statementhandler.StatementHandler
	RewardsHandler   *rewardshandler.RewardsHandler
	TaxonomyHandler  *taxonomyhandler.TaxonomyHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
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

// initRepositories initializes the repository layer
func (d *Dependencies) initRepositories() error {
	d.TransactionRepo = statement.NewRepository(d.DB.Pool)
	d.SnapshotRepo = spend.NewRepository(d.DB.Pool)
	d.RewardsRepo = rewards.NewRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices initializes the domain components and services
func (d *Dependencies) initServices() error {
	rules := taxonomy.DefaultRules()
	d.Classifier = taxonomy.NewClassifier(rules)

	ruleIndex, err := taxonomy.NewRuleIndex(rules)
	if err != nil {
		return fmt.Errorf("failed to build rule index: %w", err)
	}
	d.RuleIndex = ruleIndex

	catalog, err := d.loadCatalog()
	if err != nil {
		return err
	}
	d.CatalogHolder = rewards.NewHolder(catalog)
	d.Logger.Info("reward catalog loaded",
		slog.String("version", catalog.Version()),
		slog.Int("cards", len(catalog.Cards())),
	)

	d.StatementService = statementservice.NewService(
		d.TransactionRepo,
		d.SnapshotRepo,
		d.Classifier,
		d.Metrics,
		d.Logger,
	)
	d.RewardsService = rewards.NewService(d.CatalogHolder, d.SnapshotRepo, d.RewardsRepo, d.Metrics, d.Logger)

	archive, err := storage.New(storage.Config{LocalPath: d.Config.Storage.LocalPath})
	if err != nil {
		return fmt.Errorf("failed to init file archive: %w", err)
	}
	d.FileArchive = archive

	d.Scheduler = cron.NewScheduler(
		cron.Config{
			RecomputeSchedule:     d.Config.Jobs.RecomputeSchedule,
			CatalogReloadSchedule: d.Config.Jobs.CatalogReloadSchedule,
			CatalogPath:           d.Config.Catalog.Path,
		},
		d.TransactionRepo,
		d.StatementService,
		d.RewardsService,
		d.Logger,
	)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes the HTTP handlers
func (d *Dependencies) initHandlers() error {
	d.StatementHandler = statementhandler.NewStatementHandler(d.StatementService, d.FileArchive, d.Logger)
	d.RewardsHandler = rewardshandler.NewRewardsHandler(
		d.RewardsService,
		d.SnapshotRepo,
		d.RewardsRepo,
		d.Config.Catalog.Currency,
		d.Logger,
	)
	d.TaxonomyHandler = taxonomyhandler.NewTaxonomyHandler(d.Classifier, d.RuleIndex, d.Logger)

	d.Logger.Info("handlers initialized")
	return nil
}

// loadCatalog reads the catalog file. The version is the configured one, or a
// content hash so the nightly reload job can detect changes.
func (d *Dependencies) loadCatalog() (*rewards.Catalog, error) {
	data, err := os.ReadFile(d.Config.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", d.Config.Catalog.Path, err)
	}

	version := d.Config.Catalog.Version
	if version == "" {
		sum := sha256.Sum256(data)
		version = hex.EncodeToString(sum[:])[:12]
	}

	catalog, err := rewards.LoadCatalog(bytes.NewReader(data), version)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return catalog, nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.RuleIndex != nil {
		_ = d.RuleIndex.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
