// Package rewards evaluates what a user's spending earned on their current
// cards and what the best card in the catalog would have earned instead.
package rewards

import (
	"sort"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

// CardID identifies a card product in the catalog.
type CardID string

// Rule is one card's reward terms for one bucket: a flat rate with an
// optional monthly cap on earned reward. Spend beyond the cap earns nothing
// extra. Tiered rates are a catalog data-shape extension the loader accepts
// but the evaluator does not yet price.
type Rule struct {
	CardID CardID           `json:"card_id"`
	Bucket taxonomy.Bucket  `json:"bucket"`
	Rate   decimal.Decimal  `json:"rate"`
	Cap    *decimal.Decimal `json:"cap,omitempty"`
}

// Reward prices a bucket spend under this rule: min(rate*spend, cap).
func (r Rule) Reward(spend decimal.Decimal) decimal.Decimal {
	reward := r.Rate.Mul(spend)
	if r.Cap != nil && reward.GreaterThan(*r.Cap) {
		reward = *r.Cap
	}
	return reward
}

// Catalog is a read-only table of card reward rules. Immutable once built;
// hot reloads swap a whole new catalog in through Holder, so in-flight
// computations keep the version they started with.
type Catalog struct {
	version string
	rules   map[CardID]map[taxonomy.Bucket]Rule
	cards   []CardID // sorted, for deterministic iteration
}

// NewCatalog builds a catalog from a rule list. Later duplicates of a
// (card, bucket) pair win, matching file order.
func NewCatalog(version string, rules []Rule) *Catalog {
	c := &Catalog{
		version: version,
		rules:   make(map[CardID]map[taxonomy.Bucket]Rule),
	}
	for _, rule := range rules {
		if _, ok := c.rules[rule.CardID]; !ok {
			c.rules[rule.CardID] = make(map[taxonomy.Bucket]Rule)
			c.cards = append(c.cards, rule.CardID)
		}
		c.rules[rule.CardID][rule.Bucket] = rule
	}
	sort.Slice(c.cards, func(i, j int) bool { return c.cards[i] < c.cards[j] })
	return c
}

// Version labels the catalog build, carried into every result computed
// against it.
func (c *Catalog) Version() string {
	return c.version
}

// Cards lists every card, lexicographically.
func (c *Catalog) Cards() []CardID {
	return c.cards
}

// Rule returns a card's terms for a bucket. Absent terms mean the card earns
// nothing there; callers treat that as rate zero, not an error.
func (c *Catalog) Rule(card CardID, bucket taxonomy.Bucket) (Rule, bool) {
	byBucket, ok := c.rules[card]
	if !ok {
		return Rule{}, false
	}
	rule, ok := byBucket[bucket]
	return rule, ok
}

// HasCard reports whether the catalog knows a card at all.
func (c *Catalog) HasCard(card CardID) bool {
	_, ok := c.rules[card]
	return ok
}

// IsEmpty reports whether the catalog carries no cards.
func (c *Catalog) IsEmpty() bool {
	return len(c.cards) == 0
}

// Holder publishes the current catalog. Reads take a consistent reference;
// Swap installs a reloaded catalog without disturbing computations already
// holding the old one.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder starts with the given catalog.
func NewHolder(catalog *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(catalog)
	return h
}

// Load returns the current catalog.
func (h *Holder) Load() *Catalog {
	return h.current.Load()
}

// Swap installs a new catalog.
func (h *Holder) Swap(catalog *Catalog) {
	h.current.Store(catalog)
}
