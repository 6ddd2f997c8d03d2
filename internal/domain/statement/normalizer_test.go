package statement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(DefaultProfile(), uuid.New(), "stmt-2025-03")
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newTestNormalizer()

	t.Run("debit row", func(t *testing.T) {
		tx, err := n.Normalize(RawRecord{
			Ordinal:     0,
			Date:        "15/03/2025",
			Description: "UPI SWIGGY ORDER 8842199",
			Amount:      "500.00",
			TypeFlag:    "Dr",
		})
		require.Nil(t, err)

		assert.Equal(t, DirectionDebit, tx.Direction)
		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), tx.Date)
		assert.Equal(t, "swiggy order", tx.MerchantKey)
		assert.Equal(t, "stmt-2025-03", tx.StatementID)
		assert.Equal(t, "stmt-2025-03:0", tx.DedupKey())
	})

	t.Run("explicit type flag wins over credit markers", func(t *testing.T) {
		tx, err := n.Normalize(RawRecord{
			Date:        "01/03/2025",
			Description: "REFUND PROCESSING FEE",
			Amount:      "50",
			TypeFlag:    "debit",
		})
		require.Nil(t, err)
		assert.Equal(t, DirectionDebit, tx.Direction)
	})

	t.Run("credit marker infers credit without flag", func(t *testing.T) {
		tx, err := n.Normalize(RawRecord{
			Date:        "02/03/2025",
			Description: "PAYMENT RECEIVED THANK YOU",
			Amount:      "2000",
		})
		require.Nil(t, err)
		assert.Equal(t, DirectionCredit, tx.Direction)
	})

	t.Run("negative raw amount infers credit and is stored positive", func(t *testing.T) {
		tx, err := n.Normalize(RawRecord{
			Date:        "03/03/2025",
			Description: "AMAZON.IN",
			Amount:      "-1200.00",
		})
		require.Nil(t, err)
		assert.Equal(t, DirectionCredit, tx.Direction)
		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(1200)))
		assert.False(t, tx.Amount.IsNegative())
	})

	t.Run("currency symbols and grouping are stripped", func(t *testing.T) {
		tx, err := n.Normalize(RawRecord{
			Date:        "04/03/2025",
			Description: "MAKEMYTRIP FLIGHT",
			Amount:      "Rs. 12,345.50",
		})
		require.Nil(t, err)
		assert.True(t, tx.Amount.Equal(decimal.RequireFromString("12345.50")))
	})

	t.Run("iso date fallback", func(t *testing.T) {
		tx, err := n.Normalize(RawRecord{
			Date:        "2025-03-20",
			Description: "NETFLIX",
			Amount:      "649",
		})
		require.Nil(t, err)
		assert.Equal(t, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), tx.Date)
	})
}

func TestNormalizer_Failures(t *testing.T) {
	n := newTestNormalizer()

	t.Run("malformed amount", func(t *testing.T) {
		_, err := n.Normalize(RawRecord{
			Ordinal:     7,
			Date:        "01/03/2025",
			Description: "SOMETHING",
			Amount:      "abc",
		})
		require.NotNil(t, err)
		assert.Equal(t, ErrCodeMalformedAmount, err.Code)
		assert.Equal(t, "amount", err.Field)
		assert.Equal(t, 7, err.Ordinal)
		assert.Equal(t, "abc", err.RawValue)
	})

	t.Run("malformed date", func(t *testing.T) {
		_, err := n.Normalize(RawRecord{
			Ordinal:     3,
			Date:        "sometime in march",
			Description: "SOMETHING",
			Amount:      "100",
		})
		require.NotNil(t, err)
		assert.Equal(t, ErrCodeMalformedDate, err.Code)
		assert.Equal(t, "date", err.Field)
	})

	t.Run("empty amount", func(t *testing.T) {
		_, err := n.Normalize(RawRecord{Date: "01/03/2025", Description: "X"})
		require.NotNil(t, err)
		assert.Equal(t, ErrCodeMalformedAmount, err.Code)
	})
}

func TestNormalizer_DecimalCommaProfile(t *testing.T) {
	profile := BankProfile{Name: "n26", DateFormat: "2006-01-02", DecimalComma: true}
	n := NewNormalizer(profile, uuid.New(), "stmt-eu")

	tx, err := n.Normalize(RawRecord{
		Date:        "2025-03-10",
		Description: "CONTINENTE LISBOA",
		Amount:      "1.234,56",
	})
	require.Nil(t, err)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("1234.56")))
}

// Failed rows land in the error list, never silently vanish.
func TestNormalizer_BatchPartitionsErrors(t *testing.T) {
	n := newTestNormalizer()

	raws := []RawRecord{
		{Ordinal: 0, Date: "01/03/2025", Description: "SWIGGY", Amount: "500"},
		{Ordinal: 1, Date: "bad-date", Description: "ZOMATO", Amount: "300"},
		{Ordinal: 2, Date: "02/03/2025", Description: "AMAZON", Amount: "not-a-number"},
		{Ordinal: 3, Date: "03/03/2025", Description: "IRCTC", Amount: "1500"},
	}

	transactions, errs := n.NormalizeBatch(raws)

	require.Len(t, transactions, 2)
	require.Len(t, errs, 2)
	assert.Equal(t, len(raws), len(transactions)+len(errs), "every row is accounted for")
	assert.Equal(t, 1, errs[0].Ordinal)
	assert.Equal(t, ErrCodeMalformedDate, errs[0].Code)
	assert.Equal(t, 2, errs[1].Ordinal)
	assert.Equal(t, ErrCodeMalformedAmount, errs[1].Code)
}

func TestStripCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Rs. 12,345.50", "12,345.50"},
		{"INR 450.00", "450.00"},
		{"₹1,200", "1,200"},
		{"- Rs. 99.50", "-99.50"},
		{"Rs.-45", "-45"},
		{"1.234,56", "1.234,56"},
		{"500.00 Dr.", "500.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCurrency(tt.in))
		})
	}
}

func TestTransaction_ContentHash(t *testing.T) {
	base := Transaction{
		StatementID: "stmt-1",
		Ordinal:     4,
		Date:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.NewFromInt(500),
		Direction:   DirectionDebit,
		RawDesc:     "SWIGGY ORDER",
	}

	same := base
	assert.Equal(t, base.ContentHash(), same.ContentHash())

	changed := base
	changed.Amount = decimal.NewFromInt(501)
	assert.NotEqual(t, base.ContentHash(), changed.ContentHash())
}
