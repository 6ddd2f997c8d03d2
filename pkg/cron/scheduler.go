// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/rewards"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/spend"
)

// UserLister finds users whose snapshots need recomputing.
type UserLister interface {
	UsersWithTransactions(ctx context.Context, from, to time.Time) ([]uuid.UUID, error)
}

// SnapshotRecomputer rebuilds one user's monthly snapshot from stored
// transactions.
type SnapshotRecomputer interface {
	RecomputeMonth(ctx context.Context, userID uuid.UUID, month spend.MonthKey) error
}

// RewardOptimizer reruns the optimizer and swaps in new catalogs.
type RewardOptimizer interface {
	Optimize(ctx context.Context, userID uuid.UUID, month spend.MonthKey) (rewards.Result, error)
	ReloadCatalog(catalog *rewards.Catalog)
	CatalogVersion() string
}

// Config carries the schedules and the catalog location.
type Config struct {
	RecomputeSchedule     string // monthly close-out, e.g. "0 3 1 * *"
	CatalogReloadSchedule string // e.g. "0 1 * * *"
	CatalogPath           string
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	cfg       Config
	users     UserLister
	snapshots SnapshotRecomputer
	rewards   RewardOptimizer
	logger    *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(cfg Config, users UserLister, snapshots SnapshotRecomputer, rewards RewardOptimizer, logger *slog.Logger) *Scheduler {
	// Standard 5-field format, no seconds
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		cfg:       cfg,
		users:     users,
		snapshots: snapshots,
		rewards:   rewards,
		logger:    logger,
	}
}

// Start registers and begins the scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.RecomputeSchedule, s.closeOutPreviousMonth); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.CatalogReloadSchedule, s.reloadCatalog); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the monthly close-out (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.closeOutPreviousMonth()
}

// closeOutPreviousMonth recomputes last month's snapshot and reruns the
// optimizer for every user who transacted in it. Statements often arrive days
// after the month ends, so the close-out catches rows ingested since the last
// upload-triggered recompute.
func (s *Scheduler) closeOutPreviousMonth() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	month := spend.MonthKey(time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"))
	from, to := month.Window()

	s.logger.Info("starting monthly close-out", slog.String("month", month.String()))

	users, err := s.users.UsersWithTransactions(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to list users for close-out", slog.Any("error", err))
		return
	}

	recomputed := 0
	failed := 0

	for _, userID := range users {
		if err := s.snapshots.RecomputeMonth(ctx, userID, month); err != nil {
			s.logger.Warn("failed to recompute snapshot",
				slog.String("user_id", userID.String()),
				slog.String("month", month.String()),
				slog.Any("error", err),
			)
			failed++
			continue
		}

		result, err := s.rewards.Optimize(ctx, userID, month)
		if err != nil {
			s.logger.Warn("failed to rerun optimizer",
				slog.String("user_id", userID.String()),
				slog.String("month", month.String()),
				slog.Any("error", err),
			)
			failed++
			continue
		}

		s.logger.Debug("closed out month",
			slog.String("user_id", userID.String()),
			slog.String("total_missed", result.TotalMissed.String()),
		)
		recomputed++
	}

	s.logger.Info("monthly close-out completed",
		slog.String("month", month.String()),
		slog.Int("users_recomputed", recomputed),
		slog.Int("users_failed", failed),
	)
}

// reloadCatalog reads the catalog file and swaps it in when its content
// changed. The content hash doubles as the version, so an unchanged file is a
// no-op and a load failure keeps the current catalog serving.
func (s *Scheduler) reloadCatalog() {
	data, err := os.ReadFile(s.cfg.CatalogPath)
	if err != nil {
		s.logger.Error("failed to read reward catalog",
			slog.String("path", s.cfg.CatalogPath),
			slog.Any("error", err),
		)
		return
	}

	sum := sha256.Sum256(data)
	version := hex.EncodeToString(sum[:])[:12]
	if version == s.rewards.CatalogVersion() {
		s.logger.Debug("reward catalog unchanged", slog.String("version", version))
		return
	}

	catalog, err := rewards.LoadCatalog(bytes.NewReader(data), version)
	if err != nil {
		s.logger.Error("failed to reload reward catalog",
			slog.String("path", s.cfg.CatalogPath),
			slog.Any("error", err),
		)
		return
	}
	s.rewards.ReloadCatalog(catalog)
}
