package taxonomy

// DefaultFuzzyThreshold is the similarity score a fuzzy match must reach
// before it is trusted over the catch-all bucket.
const DefaultFuzzyThreshold = 85

// Classification explains how a merchant key landed in its bucket.
type Classification struct {
	Bucket      Bucket
	Pattern     string // empty for the catch-all
	RuleIndex   int    // -1 for the catch-all
	FuzzyScore  int    // 0 for exact matches and the catch-all
	ViaFallback bool   // true when neither exact nor fuzzy rules matched
}

// Classifier maps merchant keys to buckets. Classification is total: every
// input resolves to exactly one bucket, with BucketOtherOffline as the floor.
// Resolution order is exact ordered rules, then the fuzzy matcher, then the
// catch-all. Given the same rule table the result is deterministic.
type Classifier struct {
	engine    *Engine
	fuzzy     *FuzzyMatcher
	threshold int
}

// NewClassifier builds a classifier over a rule table. A nil or empty table
// classifies everything into the catch-all bucket.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{
		engine:    NewEngine(rules),
		fuzzy:     NewFuzzyMatcher(rules),
		threshold: DefaultFuzzyThreshold,
	}
}

// NewDefaultClassifier builds a classifier over the built-in rule table.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultRules())
}

// WithFuzzyThreshold overrides the fuzzy acceptance threshold.
func (c *Classifier) WithFuzzyThreshold(threshold int) *Classifier {
	c.threshold = threshold
	return c
}

// Classify returns the bucket for a merchant key.
func (c *Classifier) Classify(merchantKey string) Bucket {
	return c.Explain(merchantKey).Bucket
}

// Explain returns the bucket together with the rule that produced it, for
// debugging and the lookup API.
func (c *Classifier) Explain(merchantKey string) Classification {
	if m := c.engine.Match(merchantKey); m != nil {
		return Classification{
			Bucket:    m.Bucket,
			Pattern:   m.Pattern,
			RuleIndex: m.Index,
		}
	}

	if m := c.fuzzy.Match(merchantKey, c.threshold); m != nil {
		return Classification{
			Bucket:     m.Bucket,
			Pattern:    m.Pattern,
			RuleIndex:  m.Index,
			FuzzyScore: m.Score,
		}
	}

	return Classification{
		Bucket:      BucketOtherOffline,
		RuleIndex:   -1,
		ViaFallback: true,
	}
}

// ClassifyBatch classifies many merchant keys, resolving exact matches in a
// single engine pass.
func (c *Classifier) ClassifyBatch(merchantKeys []string) []Bucket {
	buckets := make([]Bucket, len(merchantKeys))

	exact := c.engine.MatchBatch(merchantKeys)
	for i, m := range exact {
		if m != nil {
			buckets[i] = m.Bucket
			continue
		}
		if fm := c.fuzzy.Match(merchantKeys[i], c.threshold); fm != nil {
			buckets[i] = fm.Bucket
			continue
		}
		buckets[i] = BucketOtherOffline
	}

	return buckets
}
