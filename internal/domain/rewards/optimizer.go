package rewards

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/spend"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

// Holdings describes which card the user currently puts each bucket's spend
// on. PerBucket overrides win; Default covers everything else. A holding the
// catalog does not know earns rate zero, reported as a warning rather than an
// error.
type Holdings struct {
	Default   CardID
	PerBucket map[taxonomy.Bucket]CardID
}

// CardFor resolves the card currently used for a bucket.
func (h Holdings) CardFor(bucket taxonomy.Bucket) CardID {
	if card, ok := h.PerBucket[bucket]; ok {
		return card
	}
	return h.Default
}

// Optimizer prices a spend snapshot against the catalog. Pure computation:
// no I/O, no shared state; one instance serves all callers concurrently.
type Optimizer struct{}

// NewOptimizer creates an optimizer.
func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

// Optimize computes, per bucket independently, the reward the current card
// earned and the best reward any single catalog card could have earned, with
// the gap between the totals as the missed reward.
//
// Determinism: reward ties resolve by higher raw rate then lower card id, so
// identical inputs always name the identical best card, including in buckets
// with zero spend. An empty catalog or an all-zero snapshot produces a valid
// zero result, not an error.
func (o *Optimizer) Optimize(snapshot spend.Snapshot, holdings Holdings, catalog *Catalog) Result {
	result := Result{
		UserID:         snapshot.UserID,
		Month:          snapshot.Month,
		TotalMissed:    decimal.Zero,
		CatalogVersion: catalog.Version(),
		ComputedAt:     time.Now().UTC(),
		Payload: Payload{
			PerBucket:         make([]BucketResult, 0, len(taxonomy.AllBuckets())),
			TotalActualReward: decimal.Zero,
			TotalBestReward:   decimal.Zero,
		},
	}

	warned := make(map[CardID]bool)

	for _, bucket := range taxonomy.AllBuckets() {
		bucketSpend := snapshot.Buckets[bucket]

		currentCard := holdings.CardFor(bucket)
		actual := decimal.Zero
		if currentCard != "" {
			if rule, ok := catalog.Rule(currentCard, bucket); ok {
				actual = rule.Reward(bucketSpend)
			} else if !catalog.HasCard(currentCard) && !warned[currentCard] && !catalog.IsEmpty() {
				warned[currentCard] = true
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("card %s is not in the catalog; treating its rate as zero", currentCard))
			}
		}

		best, bestCard := o.bestFor(bucket, bucketSpend, catalog)

		// Best ranges over the whole catalog, current card included, so the
		// gap cannot go negative; the clamp guards the invariant anyway.
		missed := best.Sub(actual)
		if missed.IsNegative() {
			missed = decimal.Zero
			best = actual
			bestCard = currentCard
		}

		result.Payload.PerBucket = append(result.Payload.PerBucket, BucketResult{
			Bucket:       bucket,
			Spend:        bucketSpend,
			ActualReward: actual,
			BestReward:   best,
			BestCardID:   bestCard,
			Missed:       missed,
		})

		result.Payload.TotalActualReward = result.Payload.TotalActualReward.Add(actual)
		result.Payload.TotalBestReward = result.Payload.TotalBestReward.Add(best)
		result.TotalMissed = result.TotalMissed.Add(missed)
	}

	return result
}

// bestFor picks the catalog card maximizing the bucket's reward. Cards with
// no rule for the bucket compete at rate zero. Ties break by higher raw rate
// then lexicographically lower card id; an empty catalog yields zero and no
// card.
func (o *Optimizer) bestFor(bucket taxonomy.Bucket, bucketSpend decimal.Decimal, catalog *Catalog) (decimal.Decimal, CardID) {
	bestReward := decimal.Zero
	bestRate := decimal.Zero
	var bestCard CardID

	for _, card := range catalog.Cards() {
		rate := decimal.Zero
		reward := decimal.Zero
		if rule, ok := catalog.Rule(card, bucket); ok {
			rate = rule.Rate
			reward = rule.Reward(bucketSpend)
		}

		if bestCard == "" ||
			reward.GreaterThan(bestReward) ||
			(reward.Equal(bestReward) && rate.GreaterThan(bestRate)) {
			bestReward = reward
			bestRate = rate
			bestCard = card
		}
	}

	return bestReward, bestCard
}
