package spend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a (user, month).
var ErrSnapshotNotFound = errors.New("snapshot not found")

// DB is the pool surface the repository uses; pgxmock satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists monthly spend snapshots as JSONB keyed by
// (user_id, month). A save replaces the previous snapshot wholesale.
type Repository struct {
	db DB
}

// NewRepository creates a snapshot repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// Save upserts a snapshot.
func (r *Repository) Save(ctx context.Context, snapshot Snapshot) error {
	buckets, err := json.Marshal(snapshot.Buckets)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot buckets: %w", err)
	}

	query := `
		INSERT INTO spend_snapshots (user_id, month, source, buckets, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, month) DO UPDATE SET
			source = EXCLUDED.source,
			buckets = EXCLUDED.buckets,
			updated_at = now()
	`

	_, err = r.db.Exec(ctx, query, snapshot.UserID, string(snapshot.Month), snapshot.Source, buckets)
	return err
}

// Get loads the snapshot for a (user, month).
func (r *Repository) Get(ctx context.Context, userID uuid.UUID, month MonthKey) (Snapshot, error) {
	query := `
		SELECT source, buckets
		FROM spend_snapshots
		WHERE user_id = $1 AND month = $2
	`

	var source string
	var raw []byte
	err := r.db.QueryRow(ctx, query, userID, string(month)).Scan(&source, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := NewSnapshot(userID, month, source)
	if err := json.Unmarshal(raw, &snapshot.Buckets); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot buckets: %w", err)
	}

	// Older rows may predate a bucket added to the taxonomy; keep the map
	// fully populated.
	for _, b := range taxonomy.AllBuckets() {
		if _, ok := snapshot.Buckets[b]; !ok {
			snapshot.Buckets[b] = decimal.Zero
		}
	}
	return snapshot, nil
}
