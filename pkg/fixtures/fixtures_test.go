package fixtures

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/spend"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement/parser"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

func TestGenerator_Reproducible(t *testing.T) {
	month := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	buckets := []taxonomy.Bucket{taxonomy.BucketFoodDelivery, taxonomy.BucketGroceries}

	a := NewGenerator(42).Statement(month, 20, buckets)
	b := NewGenerator(42).Statement(month, 20, buckets)

	assert.Equal(t, a.CSV, b.CSV)
	assert.Equal(t, a.DebitTotals, b.DebitTotals)
}

// The generated file should survive the whole pipeline with totals intact:
// parse, normalize, classify, aggregate.
func TestGenerator_RoundTripsThroughPipeline(t *testing.T) {
	month := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	buckets := []taxonomy.Bucket{
		taxonomy.BucketFoodDelivery,
		taxonomy.BucketGroceries,
		taxonomy.BucketTravel,
		taxonomy.BucketHealth,
	}

	generated := NewGenerator(7).Statement(month, 40, buckets)
	assert.Equal(t, 40, generated.Rows)
	assert.Equal(t, 4, generated.CreditRows)

	parsed, err := parser.NewParser(parser.Config{}).Parse(bytes.NewReader(generated.CSV))
	require.NoError(t, err)
	require.Empty(t, parsed.Errors)
	require.Len(t, parsed.Records, 40)

	userID := uuid.New()
	normalizer := statement.NewNormalizer(statement.ProfileFor(""), userID, "stmt-fixture")
	transactions, normErrs := normalizer.NormalizeBatch(parsed.Records)
	require.Empty(t, normErrs)

	classifier := taxonomy.NewClassifier(taxonomy.DefaultRules())
	for i := range transactions {
		transactions[i].Bucket = classifier.Classify(transactions[i].MerchantKey)
	}

	monthKey, err := spend.ParseMonth("2025-03")
	require.NoError(t, err)
	snapshot := spend.NewAggregator().Aggregate(userID, monthKey, transactions, "statements")

	for bucket, want := range generated.DebitTotals {
		assert.True(t, want.Equal(snapshot.Buckets[bucket]),
			"bucket %s: want %s got %s", bucket, want, snapshot.Buckets[bucket])
	}
}
