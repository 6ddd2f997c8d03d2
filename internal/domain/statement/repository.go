package statement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

// DB is the slice of pgxpool.Pool the repository uses. pgxmock satisfies it
// too, so repository tests run against expected SQL instead of a live
// database.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists normalized transactions.
type Repository struct {
	db DB
}

// NewRepository creates a transaction repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// SaveBatch inserts transactions, skipping rows whose (statement_id,
// ordinal) key is already present with the same content. A key collision
// with a different content hash means the statement changed between
// ingestions; the stored row is replaced so re-ingestion converges on the
// latest file.
func (r *Repository) SaveBatch(ctx context.Context, transactions []Transaction) (int64, error) {
	query := `
		INSERT INTO transactions (
			id, user_id, statement_id, ordinal, txn_date, amount, direction,
			raw_description, merchant_key, card_last4, bucket, content_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, statement_id, ordinal) DO UPDATE SET
			txn_date = EXCLUDED.txn_date,
			amount = EXCLUDED.amount,
			direction = EXCLUDED.direction,
			raw_description = EXCLUDED.raw_description,
			merchant_key = EXCLUDED.merchant_key,
			card_last4 = EXCLUDED.card_last4,
			bucket = EXCLUDED.bucket,
			content_hash = EXCLUDED.content_hash
		WHERE transactions.content_hash <> EXCLUDED.content_hash
	`

	var affected int64
	for _, tx := range transactions {
		tag, err := r.db.Exec(ctx, query,
			tx.ID,
			tx.UserID,
			tx.StatementID,
			tx.Ordinal,
			tx.Date,
			tx.Amount,
			string(tx.Direction),
			tx.RawDesc,
			tx.MerchantKey,
			tx.CardLast4,
			string(tx.Bucket),
			tx.ContentHash(),
		)
		if err != nil {
			return affected, err
		}
		affected += tag.RowsAffected()
	}
	return affected, nil
}

// ListByMonth returns a user's transactions dated inside [from, to), ordered
// for stable aggregation.
func (r *Repository) ListByMonth(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Transaction, error) {
	query := `
		SELECT id, user_id, statement_id, ordinal, txn_date, amount, direction,
			raw_description, merchant_key, card_last4, bucket
		FROM transactions
		WHERE user_id = $1 AND txn_date >= $2 AND txn_date < $3
		ORDER BY statement_id, ordinal
	`

	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var tx Transaction
		var direction, bucket string
		if err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.StatementID,
			&tx.Ordinal,
			&tx.Date,
			&tx.Amount,
			&direction,
			&tx.RawDesc,
			&tx.MerchantKey,
			&tx.CardLast4,
			&bucket,
		); err != nil {
			return nil, err
		}
		tx.Direction = Direction(direction)
		tx.Bucket = taxonomy.ParseBucket(bucket)
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

// UsersWithTransactions returns the distinct users with at least one
// transaction dated inside [from, to).
func (r *Repository) UsersWithTransactions(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT user_id
		FROM transactions
		WHERE txn_date >= $1 AND txn_date < $2
		ORDER BY user_id
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// CountForStatement reports how many rows one statement contributed.
func (r *Repository) CountForStatement(ctx context.Context, userID uuid.UUID, statementID string) (int64, error) {
	query := `SELECT count(*) FROM transactions WHERE user_id = $1 AND statement_id = $2`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID, statementID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteStatement removes every row a statement contributed, for re-ingestion
// after a bad upload.
func (r *Repository) DeleteStatement(ctx context.Context, userID uuid.UUID, statementID string) (int64, error) {
	query := `DELETE FROM transactions WHERE user_id = $1 AND statement_id = $2`

	tag, err := r.db.Exec(ctx, query, userID, statementID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
