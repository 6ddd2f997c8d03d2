package statement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Normalization failure codes.
const (
	ErrCodeMalformedAmount = "MalformedAmount"
	ErrCodeMalformedDate   = "MalformedDate"
)

// NormalizeError records why one raw row could not become a Transaction.
// Failed rows are excluded from aggregation but surfaced in the ingestion
// report, never silently dropped.
type NormalizeError struct {
	Ordinal  int    `json:"ordinal"`
	Code     string `json:"code"`
	Field    string `json:"field"`
	Message  string `json:"message"`
	RawValue string `json:"raw_value"`
}

func (e NormalizeError) Error() string {
	return fmt.Sprintf("row %d, field %s: %s (%s)", e.Ordinal, e.Field, e.Message, e.Code)
}

// Description substrings that mark a credit when the file carries no
// explicit type flag.
var creditMarkers = []string{
	"payment received",
	"refund",
	"reversal",
	"cashback credited",
	"credited",
	"reimbursement",
}

// Normalizer turns raw statement rows into canonical Transactions. One
// normalizer serves one statement; it carries the bank profile and the
// identity shared by every row.
type Normalizer struct {
	profile     BankProfile
	userID      uuid.UUID
	statementID string
}

// NewNormalizer builds a normalizer for one statement.
func NewNormalizer(profile BankProfile, userID uuid.UUID, statementID string) *Normalizer {
	return &Normalizer{
		profile:     profile,
		userID:      userID,
		statementID: statementID,
	}
}

// Normalize converts one raw row. On failure the returned error classifies
// the failing field; the zero Transaction accompanies it.
func (n *Normalizer) Normalize(raw RawRecord) (Transaction, *NormalizeError) {
	amount, direction, amtErr := n.parseAmount(raw)
	if amtErr != nil {
		return Transaction{}, amtErr
	}

	date, dateErr := n.parseDate(raw)
	if dateErr != nil {
		return Transaction{}, dateErr
	}

	return Transaction{
		ID:          uuid.New(),
		UserID:      n.userID,
		StatementID: n.statementID,
		Ordinal:     raw.Ordinal,
		Date:        date,
		Amount:      amount,
		Direction:   direction,
		RawDesc:     raw.Description,
		MerchantKey: MerchantKey(raw.Description),
		CardLast4:   raw.CardLast4,
	}, nil
}

// NormalizeBatch converts a whole statement, partitioning rows into
// transactions and row-level errors.
func (n *Normalizer) NormalizeBatch(raws []RawRecord) ([]Transaction, []NormalizeError) {
	transactions := make([]Transaction, 0, len(raws))
	var errs []NormalizeError

	for _, raw := range raws {
		tx, err := n.Normalize(raw)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions, errs
}

// parseAmount parses the amount string and infers direction. The amount in
// the resulting transaction is always non-negative; a negative raw value
// only flips direction.
func (n *Normalizer) parseAmount(raw RawRecord) (decimal.Decimal, Direction, *NormalizeError) {
	cleaned := strings.TrimSpace(raw.Amount)
	if cleaned == "" {
		return decimal.Zero, "", &NormalizeError{
			Ordinal:  raw.Ordinal,
			Code:     ErrCodeMalformedAmount,
			Field:    "amount",
			Message:  "amount is empty",
			RawValue: raw.Amount,
		}
	}

	cleaned = stripCurrency(cleaned)
	if n.profile.DecimalComma {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, "", &NormalizeError{
			Ordinal:  raw.Ordinal,
			Code:     ErrCodeMalformedAmount,
			Field:    "amount",
			Message:  "amount is not numeric",
			RawValue: raw.Amount,
		}
	}

	direction := n.inferDirection(raw, amount)
	if amount.IsNegative() {
		amount = amount.Neg()
	}
	return amount, direction, nil
}

// inferDirection resolves the transaction direction. An explicit type flag
// wins; otherwise a negative raw amount or a credit marker in the
// description means credit; the default is debit.
func (n *Normalizer) inferDirection(raw RawRecord, amount decimal.Decimal) Direction {
	switch strings.ToLower(strings.TrimSpace(raw.TypeFlag)) {
	case "debit", "dr", "d", "withdrawal":
		return DirectionDebit
	case "credit", "cr", "c", "deposit":
		return DirectionCredit
	}

	if amount.IsNegative() {
		return DirectionCredit
	}

	desc := strings.ToLower(raw.Description)
	for _, marker := range creditMarkers {
		if strings.Contains(desc, marker) {
			return DirectionCredit
		}
	}
	return DirectionDebit
}

// parseDate tries the profile's layout first, then the shared fallbacks.
func (n *Normalizer) parseDate(raw RawRecord) (time.Time, *NormalizeError) {
	value := strings.TrimSpace(raw.Date)
	if value == "" {
		return time.Time{}, &NormalizeError{
			Ordinal:  raw.Ordinal,
			Code:     ErrCodeMalformedDate,
			Field:    "date",
			Message:  "date is empty",
			RawValue: raw.Date,
		}
	}

	layouts := make([]string, 0, len(fallbackDateFormats)+1)
	if n.profile.DateFormat != "" {
		layouts = append(layouts, n.profile.DateFormat)
	}
	layouts = append(layouts, fallbackDateFormats...)

	for _, layout := range layouts {
		if date, err := time.Parse(layout, value); err == nil {
			return date, nil
		}
	}

	return time.Time{}, &NormalizeError{
		Ordinal:  raw.Ordinal,
		Code:     ErrCodeMalformedDate,
		Field:    "date",
		Message:  "date matches no known layout",
		RawValue: raw.Date,
	}
}

// stripCurrency drops currency symbols, codes and grouping spaces, keeping
// only digits, separators and the sign ("Rs. 1,234.56" -> "1,234.56").
// Separators survive only between digits, so the dot in a currency token
// like "Rs." is dropped rather than glued onto the number. A sign survives
// only before the first digit.
func stripCurrency(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == ',':
			if i > 0 && isDigit(runes[i-1]) && i+1 < len(runes) && isDigit(runes[i+1]) {
				b.WriteRune(r)
			}
		case r == '-' || r == '+':
			if b.Len() == 0 && hasDigit(runes[i+1:]) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func hasDigit(runes []rune) bool {
	for _, r := range runes {
		if isDigit(r) {
			return true
		}
	}
	return false
}
