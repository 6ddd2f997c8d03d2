package rewards

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

// catalogRow is one CSV line of the reward catalog file. The tier column is
// parsed so tiered-rate files load cleanly, but tiers beyond the first are
// rejected until the evaluator prices them.
type catalogRow struct {
	CardID string `csv:"card_id"`
	Bucket string `csv:"bucket"`
	Rate   string `csv:"rate"`
	Cap    string `csv:"cap"`
	Tier   string `csv:"tier"`
}

// LoadCatalog reads a reward catalog from CSV. Every row must carry a known
// bucket and a non-negative rate; the whole file is rejected on the first bad
// row since a half-loaded catalog would skew every optimization against it.
func LoadCatalog(reader io.Reader, version string) (*Catalog, error) {
	var rows []catalogRow
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse catalog CSV: %w", err)
	}

	rules := make([]Rule, 0, len(rows))
	for i, row := range rows {
		cardID := CardID(strings.TrimSpace(row.CardID))
		if cardID == "" {
			return nil, fmt.Errorf("catalog row %d: empty card_id", i)
		}

		bucket := taxonomy.Bucket(strings.TrimSpace(row.Bucket))
		if !bucket.Valid() {
			return nil, fmt.Errorf("catalog row %d: unknown bucket %q", i, row.Bucket)
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(row.Rate))
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: bad rate %q: %w", i, row.Rate, err)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("catalog row %d: negative rate %s", i, rate)
		}

		rule := Rule{CardID: cardID, Bucket: bucket, Rate: rate}

		if capValue := strings.TrimSpace(row.Cap); capValue != "" {
			capAmount, err := decimal.NewFromString(capValue)
			if err != nil {
				return nil, fmt.Errorf("catalog row %d: bad cap %q: %w", i, row.Cap, err)
			}
			if capAmount.IsNegative() {
				return nil, fmt.Errorf("catalog row %d: negative cap %s", i, capAmount)
			}
			rule.Cap = &capAmount
		}

		if tier := strings.TrimSpace(row.Tier); tier != "" && tier != "1" {
			return nil, fmt.Errorf("catalog row %d: tiered rates are not supported yet (tier %q)", i, tier)
		}

		rules = append(rules, rule)
	}

	return NewCatalog(version, rules), nil
}

// LoadCatalogFile loads a catalog from disk, using the file path as the
// version when none is given.
func LoadCatalogFile(path, version string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	if version == "" {
		version = path
	}
	return LoadCatalog(f, version)
}
