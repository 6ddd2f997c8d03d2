package rewards

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/spend"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

// BucketResult is one bucket's line in an optimization result.
type BucketResult struct {
	Bucket       taxonomy.Bucket `json:"bucket"`
	Spend        decimal.Decimal `json:"spend"`
	ActualReward decimal.Decimal `json:"actual_reward"`
	BestReward   decimal.Decimal `json:"best_reward"`
	BestCardID   CardID          `json:"best_card_id"`
	Missed       decimal.Decimal `json:"missed"`
}

// Payload is the detailed body of a result.
type Payload struct {
	PerBucket         []BucketResult  `json:"per_bucket"`
	TotalActualReward decimal.Decimal `json:"total_actual_reward"`
	TotalBestReward   decimal.Decimal `json:"total_best_reward"`
}

// Result is one optimization run for a (user, month). Immutable; a later run
// for the same key supersedes it wholesale. Invariants: every monetary value
// is non-negative, and TotalMissed equals both TotalBestReward minus
// TotalActualReward and the sum of per-bucket missed values.
type Result struct {
	UserID         uuid.UUID       `json:"user_id"`
	Month          spend.MonthKey  `json:"month"`
	TotalMissed    decimal.Decimal `json:"total_missed"`
	Payload        Payload         `json:"payload"`
	CatalogVersion string          `json:"catalog_version"`
	Warnings       []string        `json:"warnings,omitempty"`
	ComputedAt     time.Time       `json:"computed_at"`
}
