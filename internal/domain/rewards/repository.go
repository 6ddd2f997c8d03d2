package rewards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/spend"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

// ErrResultNotFound is returned when no result exists for a (user, month).
var ErrResultNotFound = errors.New("optimizer result not found")

// DB is the pool surface the repository uses; pgxmock satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists optimizer results and the user's card holdings.
type Repository struct {
	db DB
}

// NewRepository creates a rewards repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// SaveResult upserts a result keyed by (user_id, month). A rerun supersedes
// the stored row wholesale.
func (r *Repository) SaveResult(ctx context.Context, result Result) error {
	payload, err := json.Marshal(result.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode result payload: %w", err)
	}
	warnings, err := json.Marshal(result.Warnings)
	if err != nil {
		return fmt.Errorf("failed to encode result warnings: %w", err)
	}

	query := `
		INSERT INTO optimizer_results (
			user_id, month, total_missed, payload, catalog_version, warnings, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, month) DO UPDATE SET
			total_missed = EXCLUDED.total_missed,
			payload = EXCLUDED.payload,
			catalog_version = EXCLUDED.catalog_version,
			warnings = EXCLUDED.warnings,
			computed_at = EXCLUDED.computed_at
	`

	_, err = r.db.Exec(ctx, query,
		result.UserID,
		string(result.Month),
		result.TotalMissed,
		payload,
		result.CatalogVersion,
		warnings,
		result.ComputedAt,
	)
	return err
}

// GetResult loads the stored result for a (user, month).
func (r *Repository) GetResult(ctx context.Context, userID uuid.UUID, month spend.MonthKey) (Result, error) {
	query := `
		SELECT total_missed, payload, catalog_version, warnings, computed_at
		FROM optimizer_results
		WHERE user_id = $1 AND month = $2
	`

	result := Result{UserID: userID, Month: month}
	var payload, warnings []byte

	err := r.db.QueryRow(ctx, query, userID, string(month)).Scan(
		&result.TotalMissed,
		&payload,
		&result.CatalogVersion,
		&warnings,
		&result.ComputedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{}, ErrResultNotFound
	}
	if err != nil {
		return Result{}, err
	}

	if err := json.Unmarshal(payload, &result.Payload); err != nil {
		return Result{}, fmt.Errorf("failed to decode result payload: %w", err)
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &result.Warnings); err != nil {
			return Result{}, fmt.Errorf("failed to decode result warnings: %w", err)
		}
	}
	return result, nil
}

// GetHoldings loads which cards the user currently pays with. Rows with a
// bucket are per-bucket overrides; the row flagged default covers the rest.
func (r *Repository) GetHoldings(ctx context.Context, userID uuid.UUID) (Holdings, error) {
	query := `
		SELECT card_id, bucket, is_default
		FROM user_cards
		WHERE user_id = $1
		ORDER BY card_id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return Holdings{}, err
	}
	defer rows.Close()

	holdings := Holdings{PerBucket: make(map[taxonomy.Bucket]CardID)}
	for rows.Next() {
		var cardID string
		var bucket *string
		var isDefault bool
		if err := rows.Scan(&cardID, &bucket, &isDefault); err != nil {
			return Holdings{}, err
		}
		if isDefault {
			holdings.Default = CardID(cardID)
		}
		if bucket != nil {
			holdings.PerBucket[taxonomy.ParseBucket(*bucket)] = CardID(cardID)
		}
	}
	return holdings, rows.Err()
}

// SetHolding records a card the user holds, optionally pinned to one bucket.
func (r *Repository) SetHolding(ctx context.Context, userID uuid.UUID, cardID CardID, bucket *taxonomy.Bucket, isDefault bool) error {
	query := `
		INSERT INTO user_cards (user_id, card_id, bucket, is_default)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, card_id, bucket) DO UPDATE SET
			is_default = EXCLUDED.is_default
	`

	var bucketValue *string
	if bucket != nil {
		s := string(*bucket)
		bucketValue = &s
	}

	_, err := r.db.Exec(ctx, query, userID, string(cardID), bucketValue, isDefault)
	return err
}
