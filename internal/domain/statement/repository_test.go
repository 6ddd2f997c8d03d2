package statement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

func TestRepository_SaveBatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	tx := Transaction{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		StatementID: "stmt-1",
		Ordinal:     0,
		Date:        time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(500),
		Direction:   DirectionDebit,
		RawDesc:     "SWIGGY ORDER",
		MerchantKey: "swiggy order",
		Bucket:      taxonomy.BucketFoodDelivery,
	}

	mock.ExpectExec(`INSERT INTO transactions`).
		WithArgs(tx.ID, tx.UserID, tx.StatementID, tx.Ordinal, tx.Date, tx.Amount,
			string(tx.Direction), tx.RawDesc, tx.MerchantKey, tx.CardLast4,
			string(tx.Bucket), tx.ContentHash()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	affected, err := repo.SaveBatch(context.Background(), []Transaction{tx})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A duplicate key with identical content affects zero rows, so re-ingesting
// the same statement is a no-op.
func TestRepository_SaveBatch_DuplicateIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	tx := Transaction{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		StatementID: "stmt-1",
		Ordinal:     0,
		Date:        time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(500),
		Direction:   DirectionDebit,
		Bucket:      taxonomy.BucketFoodDelivery,
	}

	mock.ExpectExec(`INSERT INTO transactions`).
		WithArgs(tx.ID, tx.UserID, tx.StatementID, tx.Ordinal, tx.Date, tx.Amount,
			string(tx.Direction), tx.RawDesc, tx.MerchantKey, tx.CardLast4,
			string(tx.Bucket), tx.ContentHash()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	affected, err := repo.SaveBatch(context.Background(), []Transaction{tx})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestRepository_ListByMonth(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	userID := uuid.New()
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "statement_id", "ordinal", "txn_date", "amount",
		"direction", "raw_description", "merchant_key", "card_last4", "bucket",
	}).AddRow(
		uuid.New(), userID, "stmt-1", 0,
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(500),
		"debit", "SWIGGY ORDER", "swiggy order", "", "food-delivery",
	).AddRow(
		uuid.New(), userID, "stmt-1", 1,
		time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(1200),
		"debit", "AMAZON.IN", "amazon in", "4242", "online-retail",
	)

	mock.ExpectQuery(`SELECT (.+) FROM transactions`).
		WithArgs(userID, from, to).
		WillReturnRows(rows)

	transactions, err := repo.ListByMonth(context.Background(), userID, from, to)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	assert.Equal(t, taxonomy.BucketFoodDelivery, transactions[0].Bucket)
	assert.Equal(t, DirectionDebit, transactions[0].Direction)
	assert.Equal(t, taxonomy.BucketOnlineRetail, transactions[1].Bucket)
	assert.Equal(t, "4242", transactions[1].CardLast4)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteStatement(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	userID := uuid.New()

	mock.ExpectExec(`DELETE FROM transactions`).
		WithArgs(userID, "stmt-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 12))

	deleted, err := repo.DeleteStatement(context.Background(), userID, "stmt-1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
}
