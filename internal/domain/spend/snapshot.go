// Package spend aggregates normalized transactions into per-month,
// per-bucket spend snapshots.
package spend

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

// MonthKey identifies a calendar month as "YYYY-MM".
type MonthKey string

// ParseMonth validates a month key and returns it in canonical form.
func ParseMonth(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", fmt.Errorf("invalid month %q, want YYYY-MM: %w", s, err)
	}
	return MonthKey(t.Format("2006-01")), nil
}

// Window returns the month's [start, end) interval in UTC.
func (m MonthKey) Window() (time.Time, time.Time) {
	start, _ := time.Parse("2006-01", string(m))
	return start, start.AddDate(0, 1, 0)
}

// Contains reports whether a date falls inside the month.
func (m MonthKey) Contains(date time.Time) bool {
	start, end := m.Window()
	return !date.Before(start) && date.Before(end)
}

func (m MonthKey) String() string {
	return string(m)
}

// Snapshot is the per-bucket spend total for one user and month. Buckets is
// always fully populated: a bucket with no spend holds zero, so consumers
// never test for key presence.
type Snapshot struct {
	UserID  uuid.UUID                           `json:"user_id"`
	Month   MonthKey                            `json:"month"`
	Source  string                              `json:"source"`
	Buckets map[taxonomy.Bucket]decimal.Decimal `json:"buckets"`
}

// NewSnapshot builds a zero-valued snapshot with every bucket present.
func NewSnapshot(userID uuid.UUID, month MonthKey, source string) Snapshot {
	buckets := make(map[taxonomy.Bucket]decimal.Decimal, len(taxonomy.AllBuckets()))
	for _, b := range taxonomy.AllBuckets() {
		buckets[b] = decimal.Zero
	}
	return Snapshot{
		UserID:  userID,
		Month:   month,
		Source:  source,
		Buckets: buckets,
	}
}

// Total is the sum of all bucket spends.
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, b := range taxonomy.AllBuckets() {
		total = total.Add(s.Buckets[b])
	}
	return total
}

// IsZero reports whether no bucket carries spend.
func (s Snapshot) IsZero() bool {
	return s.Total().IsZero()
}
