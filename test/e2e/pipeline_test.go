// Package e2e exercises the full flow in memory: a generated statement file
// is ingested, snapshots are recomputed, and an optimization runs against a
// catalog loaded from CSV.
package e2e

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/rewards"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/spend"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement/service"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
	"github.com/FACorreiaa/card-reward-tracker/pkg/fixtures"
)

type memTransactionStore struct {
	byKey map[string]statement.Transaction
}

func (m *memTransactionStore) SaveBatch(_ context.Context, transactions []statement.Transaction) (int64, error) {
	var affected int64
	for _, tx := range transactions {
		key := tx.UserID.String() + "/" + tx.DedupKey()
		if existing, ok := m.byKey[key]; ok && existing.ContentHash() == tx.ContentHash() {
			continue
		}
		m.byKey[key] = tx
		affected++
	}
	return affected, nil
}

func (m *memTransactionStore) ListByMonth(_ context.Context, userID uuid.UUID, from, to time.Time) ([]statement.Transaction, error) {
	var out []statement.Transaction
	for _, tx := range m.byKey {
		if tx.UserID == userID && !tx.Date.Before(from) && tx.Date.Before(to) {
			out = append(out, tx)
		}
	}
	return out, nil
}

type memSnapshotStore struct {
	byKey map[string]spend.Snapshot
}

func (m *memSnapshotStore) Save(_ context.Context, snapshot spend.Snapshot) error {
	m.byKey[snapshot.UserID.String()+"/"+snapshot.Month.String()] = snapshot
	return nil
}

func (m *memSnapshotStore) Get(_ context.Context, userID uuid.UUID, month spend.MonthKey) (spend.Snapshot, error) {
	s, ok := m.byKey[userID.String()+"/"+month.String()]
	if !ok {
		return spend.Snapshot{}, spend.ErrSnapshotNotFound
	}
	return s, nil
}

type memResultStore struct {
	holdings rewards.Holdings
	results  map[string]rewards.Result
}

func (m *memResultStore) SaveResult(_ context.Context, result rewards.Result) error {
	m.results[result.UserID.String()+"/"+result.Month.String()] = result
	return nil
}

func (m *memResultStore) GetResult(_ context.Context, userID uuid.UUID, month spend.MonthKey) (rewards.Result, error) {
	r, ok := m.results[userID.String()+"/"+month.String()]
	if !ok {
		return rewards.Result{}, rewards.ErrResultNotFound
	}
	return r, nil
}

func (m *memResultStore) GetHoldings(_ context.Context, _ uuid.UUID) (rewards.Holdings, error) {
	return m.holdings, nil
}

type noopMetrics struct{}

func (noopMetrics) StatementIngested(string) {}
func (noopMetrics) TransactionsIngested(int) {}
func (noopMetrics) RowsRejected(int)         {}
func (noopMetrics) OptimizerRun()            {}
func (noopMetrics) CatalogReloaded()         {}

const catalogCSV = `card_id,bucket,rate,cap
delivery-max,food-delivery,0.10,1500
delivery-max,other-offline,0.01,
flat-two,food-delivery,0.02,
flat-two,groceries,0.02,
flat-two,other-offline,0.02,
`

func TestStatementToOptimizationPipeline(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	month := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	txStore := &memTransactionStore{byKey: make(map[string]statement.Transaction)}
	snapStore := &memSnapshotStore{byKey: make(map[string]spend.Snapshot)}
	resultStore := &memResultStore{
		holdings: rewards.Holdings{Default: "flat-two"},
		results:  make(map[string]rewards.Result),
	}

	ingest := service.NewService(txStore, snapStore, taxonomy.NewDefaultClassifier(), noopMetrics{}, slog.Default())

	catalog, err := rewards.LoadCatalog(strings.NewReader(catalogCSV), "e2e-v1")
	require.NoError(t, err)
	optimizer := rewards.NewService(rewards.NewHolder(catalog), snapStore, resultStore, noopMetrics{}, slog.Default())

	generated := fixtures.NewGenerator(99).Statement(month, 30, []taxonomy.Bucket{
		taxonomy.BucketFoodDelivery,
		taxonomy.BucketGroceries,
	})

	result, err := ingest.Ingest(ctx, service.IngestRequest{
		UserID:      userID,
		StatementID: "stmt-2025-03",
		Filename:    "march.csv",
		File:        bytes.NewReader(generated.CSV),
	})
	require.NoError(t, err)
	assert.Empty(t, result.ParseErrors)
	assert.Empty(t, result.NormalizeErrors)
	assert.Equal(t, []spend.MonthKey{"2025-03"}, result.MonthsRecomputed)

	snapshot, err := snapStore.Get(ctx, userID, "2025-03")
	require.NoError(t, err)
	for bucket, want := range generated.DebitTotals {
		assert.True(t, want.Equal(snapshot.Buckets[bucket]),
			"bucket %s: want %s got %s", bucket, want, snapshot.Buckets[bucket])
	}

	optimized, err := optimizer.Optimize(ctx, userID, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, "e2e-v1", optimized.CatalogVersion)
	assert.Empty(t, optimized.Warnings)

	// The held flat-two card earns 2% on food delivery while delivery-max
	// earns 10% capped at 1500, so the missed amount on that bucket is
	// min(spend*0.10, 1500) - spend*0.02.
	foodSpend := generated.DebitTotals[taxonomy.BucketFoodDelivery]
	bestFood := decimal.Min(foodSpend.Mul(decimal.RequireFromString("0.10")), decimal.NewFromInt(1500))
	wantMissed := bestFood.Sub(foodSpend.Mul(decimal.RequireFromString("0.02")))

	var foodLine rewards.BucketResult
	for _, line := range optimized.Payload.PerBucket {
		if line.Bucket == taxonomy.BucketFoodDelivery {
			foodLine = line
		}
	}
	require.Equal(t, taxonomy.BucketFoodDelivery, foodLine.Bucket)
	assert.Equal(t, rewards.CardID("delivery-max"), foodLine.BestCardID)
	assert.True(t, wantMissed.Equal(foodLine.Missed),
		fmt.Sprintf("want missed %s got %s", wantMissed, foodLine.Missed))

	t.Run("re-ingesting the same file is a no-op", func(t *testing.T) {
		again, err := ingest.Ingest(ctx, service.IngestRequest{
			UserID:      userID,
			StatementID: "stmt-2025-03",
			Filename:    "march.csv",
			File:        bytes.NewReader(generated.CSV),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), again.Ingested)

		snapshot, err := snapStore.Get(ctx, userID, "2025-03")
		require.NoError(t, err)
		for bucket, want := range generated.DebitTotals {
			assert.True(t, want.Equal(snapshot.Buckets[bucket]))
		}
	})
}
