// Package statement models bank-statement transactions and their
// normalization from raw extracted rows into canonical form.
package statement

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

// Direction says which way money moved. Amounts are always non-negative;
// the sign lives here.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// RawRecord is one extracted statement row before normalization. Parsers
// produce these; the Normalizer consumes them. All fields are strings as
// they appeared in the file.
type RawRecord struct {
	Ordinal     int // position within the statement, part of the dedup key
	Date        string
	Description string
	Amount      string
	TypeFlag    string // "debit"/"credit"/"dr"/"cr" when the file carries one
	CardLast4   string
}

// Transaction is a normalized statement row. Immutable once built.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	StatementID string          `json:"statement_id"`
	Ordinal     int             `json:"ordinal"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"` // always >= 0
	Direction   Direction       `json:"direction"`
	RawDesc     string          `json:"raw_description"`
	MerchantKey string          `json:"merchant_key"`
	CardLast4   string          `json:"card_last4,omitempty"`
	Bucket      taxonomy.Bucket `json:"bucket"`
}

// DedupKey identifies a transaction within an ingestion run. Statement plus
// ordinal is the true dedup key; merchant key and amount are only weak
// signals and never used alone.
func (t Transaction) DedupKey() string {
	return fmt.Sprintf("%s:%d", t.StatementID, t.Ordinal)
}

// ContentHash fingerprints the transaction's observable content so a
// re-ingested statement with changed rows can be detected.
func (t Transaction) ContentHash() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%s|%s|%s|%s|%s",
		t.StatementID, t.Ordinal, t.Date.Format("2006-01-02"),
		t.Amount.String(), t.Direction, t.RawDesc, t.CardLast4)
	return hex.EncodeToString(h.Sum(nil))
}

// IsDebit reports whether the transaction contributes to spend totals.
func (t Transaction) IsDebit() bool {
	return t.Direction == DirectionDebit
}
