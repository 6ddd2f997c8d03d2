package rewards

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

func TestRepository_SaveResult(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	result := Result{
		UserID:         uuid.New(),
		Month:          "2025-03",
		TotalMissed:    dec("20"),
		CatalogVersion: "v1",
		ComputedAt:     time.Date(2025, 4, 1, 3, 0, 0, 0, time.UTC),
		Payload: Payload{
			TotalActualReward: dec("29"),
			TotalBestReward:   dec("49"),
		},
	}

	payload, err := json.Marshal(result.Payload)
	require.NoError(t, err)
	warnings, err := json.Marshal(result.Warnings)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO optimizer_results`).
		WithArgs(result.UserID, "2025-03", result.TotalMissed, payload,
			"v1", warnings, result.ComputedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.SaveResult(context.Background(), result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetResult(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	userID := uuid.New()
	computedAt := time.Date(2025, 4, 1, 3, 0, 0, 0, time.UTC)

	payload, err := json.Marshal(Payload{
		PerBucket: []BucketResult{{
			Bucket:     taxonomy.BucketFoodDelivery,
			Spend:      dec("500"),
			BestCardID: "CardB",
		}},
		TotalActualReward: dec("29"),
		TotalBestReward:   dec("49"),
	})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT (.+) FROM optimizer_results`).
		WithArgs(userID, "2025-03").
		WillReturnRows(pgxmock.NewRows([]string{
			"total_missed", "payload", "catalog_version", "warnings", "computed_at",
		}).AddRow(dec("20"), payload, "v1", []byte(`null`), computedAt))

	result, err := repo.GetResult(context.Background(), userID, "2025-03")
	require.NoError(t, err)

	assert.True(t, result.TotalMissed.Equal(dec("20")))
	assert.Equal(t, "v1", result.CatalogVersion)
	require.Len(t, result.Payload.PerBucket, 1)
	assert.Equal(t, CardID("CardB"), result.Payload.PerBucket[0].BestCardID)
}

func TestRepository_GetResultNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM optimizer_results`).
		WithArgs(userID, "2025-09").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetResult(context.Background(), userID, "2025-09")
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestRepository_GetHoldings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	userID := uuid.New()
	travel := "travel"

	mock.ExpectQuery(`SELECT card_id, bucket, is_default FROM user_cards`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"card_id", "bucket", "is_default"}).
			AddRow("CardA", (*string)(nil), true).
			AddRow("CardB", &travel, false))

	holdings, err := repo.GetHoldings(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, CardID("CardA"), holdings.Default)
	assert.Equal(t, CardID("CardB"), holdings.PerBucket[taxonomy.BucketTravel])
	assert.Equal(t, CardID("CardA"), holdings.CardFor(taxonomy.BucketFuel))
	assert.Equal(t, CardID("CardB"), holdings.CardFor(taxonomy.BucketTravel))
}
