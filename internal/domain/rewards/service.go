package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/spend"
)

var tracer = otel.Tracer("rewards")

// SnapshotStore is the slice of the spend repository the service needs.
type SnapshotStore interface {
	Get(ctx context.Context, userID uuid.UUID, month spend.MonthKey) (spend.Snapshot, error)
}

// ResultStore persists results and holdings.
type ResultStore interface {
	SaveResult(ctx context.Context, result Result) error
	GetResult(ctx context.Context, userID uuid.UUID, month spend.MonthKey) (Result, error)
	GetHoldings(ctx context.Context, userID uuid.UUID) (Holdings, error)
}

// Metrics counts optimizer runs and catalog reloads; a nil-safe no-op
// implementation exists in pkg/metrics for tests.
type Metrics interface {
	OptimizerRun()
	CatalogReloaded()
}

// Service runs optimizations against the current catalog and persists the
// results. The catalog reference is taken once per run, so a hot reload
// mid-computation never mixes versions.
type Service struct {
	optimizer *Optimizer
	holder    *Holder
	snapshots SnapshotStore
	results   ResultStore
	metrics   Metrics
	logger    *slog.Logger
}

// NewService creates a rewards service.
func NewService(holder *Holder, snapshots SnapshotStore, results ResultStore, metrics Metrics, logger *slog.Logger) *Service {
	return &Service{
		optimizer: NewOptimizer(),
		holder:    holder,
		snapshots: snapshots,
		results:   results,
		metrics:   metrics,
		logger:    logger,
	}
}

// Optimize computes and persists the result for a (user, month). A month
// with no snapshot optimizes an all-zero one, so the caller always gets a
// well-formed result.
func (s *Service) Optimize(ctx context.Context, userID uuid.UUID, month spend.MonthKey) (Result, error) {
	ctx, span := tracer.Start(ctx, "rewards.Optimize", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
		attribute.String("month", month.String()),
	))
	defer span.End()

	catalog := s.holder.Load()

	snapshot, err := s.snapshots.Get(ctx, userID, month)
	if errors.Is(err, spend.ErrSnapshotNotFound) {
		snapshot = spend.NewSnapshot(userID, month, "none")
	} else if err != nil {
		return Result{}, fmt.Errorf("failed to load snapshot for %s/%s: %w", userID, month, err)
	}

	holdings, err := s.results.GetHoldings(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load holdings for %s: %w", userID, err)
	}

	result := s.optimizer.Optimize(snapshot, holdings, catalog)

	if err := s.results.SaveResult(ctx, result); err != nil {
		return Result{}, fmt.Errorf("failed to persist result for %s/%s: %w", userID, month, err)
	}
	s.metrics.OptimizerRun()

	span.SetAttributes(
		attribute.String("catalog_version", catalog.Version()),
		attribute.String("total_missed", result.TotalMissed.String()),
	)
	s.logger.InfoContext(ctx, "optimization complete",
		slog.String("user_id", userID.String()),
		slog.String("month", month.String()),
		slog.String("catalog_version", catalog.Version()),
		slog.String("total_missed", result.TotalMissed.String()),
		slog.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

// GetResult returns the stored result for a (user, month).
func (s *Service) GetResult(ctx context.Context, userID uuid.UUID, month spend.MonthKey) (Result, error) {
	return s.results.GetResult(ctx, userID, month)
}

// ReloadCatalog installs a new catalog version for subsequent runs.
func (s *Service) ReloadCatalog(catalog *Catalog) {
	previous := s.holder.Load()
	s.holder.Swap(catalog)
	s.metrics.CatalogReloaded()
	s.logger.Info("reward catalog reloaded",
		slog.String("previous_version", previous.Version()),
		slog.String("version", catalog.Version()),
		slog.Int("cards", len(catalog.Cards())),
	)
}

// CatalogVersion reports the live catalog's version.
func (s *Service) CatalogVersion() string {
	return s.holder.Load().Version()
}
