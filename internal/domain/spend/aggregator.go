package spend

import (
	"github.com/google/uuid"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement"
)

// Aggregator folds transactions into monthly snapshots. Stateless; one
// instance serves all users.
type Aggregator struct{}

// NewAggregator creates an aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate builds the snapshot for one user and month. Only debit
// transactions dated inside the month contribute; credits and out-of-window
// rows are skipped. Duplicate dedup keys count once, so feeding the same
// statement twice yields the same snapshot. A month with no qualifying
// transactions yields an all-zero snapshot, not an error.
//
// Snapshots are always recomputed wholesale from the full transaction set,
// never patched incrementally.
func (a *Aggregator) Aggregate(userID uuid.UUID, month MonthKey, transactions []statement.Transaction, source string) Snapshot {
	snapshot := NewSnapshot(userID, month, source)

	seen := make(map[string]struct{}, len(transactions))
	for _, tx := range transactions {
		if !tx.IsDebit() {
			continue
		}
		if !month.Contains(tx.Date) {
			continue
		}
		key := tx.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		snapshot.Buckets[tx.Bucket] = snapshot.Buckets[tx.Bucket].Add(tx.Amount)
	}
	return snapshot
}
