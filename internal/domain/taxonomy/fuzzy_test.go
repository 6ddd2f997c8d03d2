package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzyMatcher_Match(t *testing.T) {
	matcher := NewFuzzyMatcher([]Rule{
		{Pattern: "SWIGGY", Bucket: BucketFoodDelivery},
		{Pattern: "ZOMATO", Bucket: BucketFoodDelivery},
		{Pattern: "BIGBASKET", Bucket: BucketGroceries},
	})

	t.Run("single typo matches", func(t *testing.T) {
		m := matcher.Match("swigy", DefaultFuzzyThreshold)
		require.NotNil(t, m)
		assert.Equal(t, "SWIGGY", m.Pattern)
		assert.Equal(t, BucketFoodDelivery, m.Bucket)
		assert.GreaterOrEqual(t, m.Score, DefaultFuzzyThreshold)
	})

	t.Run("typo inside a noisy key matches", func(t *testing.T) {
		m := matcher.Match("bigbaskt order 52", DefaultFuzzyThreshold)
		require.NotNil(t, m)
		assert.Equal(t, "BIGBASKET", m.Pattern)
		assert.Equal(t, BucketGroceries, m.Bucket)
	})

	t.Run("two typos miss the threshold", func(t *testing.T) {
		assert.Nil(t, matcher.Match("swgy", DefaultFuzzyThreshold))
	})

	t.Run("unrelated key does not match", func(t *testing.T) {
		assert.Nil(t, matcher.Match("corner tea stall", DefaultFuzzyThreshold))
	})

	t.Run("truncated brand matches", func(t *testing.T) {
		m := matcher.Match("bigbaske", DefaultFuzzyThreshold)
		require.NotNil(t, m)
		assert.Equal(t, "BIGBASKET", m.Pattern)
	})

	t.Run("empty key does not match", func(t *testing.T) {
		assert.Nil(t, matcher.Match("", DefaultFuzzyThreshold))
	})
}

func TestFuzzyMatcher_TieBreaksByRuleIndex(t *testing.T) {
	// Identical patterns under different buckets force a score tie; the
	// earlier rule must win every time.
	matcher := NewFuzzyMatcher([]Rule{
		{Pattern: "STARCART", Bucket: BucketGroceries},
		{Pattern: "STARCART", Bucket: BucketOnlineRetail},
	})

	for i := 0; i < 10; i++ {
		m := matcher.Match("starcrt", DefaultFuzzyThreshold)
		require.NotNil(t, m)
		assert.Equal(t, 0, m.Index)
		assert.Equal(t, BucketGroceries, m.Bucket)
	}
}

func TestFuzzyMatcher_Empty(t *testing.T) {
	matcher := NewFuzzyMatcher(nil)
	assert.Equal(t, 0, matcher.PatternCount())
	assert.Nil(t, matcher.Match("swiggy", DefaultFuzzyThreshold))
}

func TestSimilarityScore(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		pattern string
		want    int
	}{
		{"exact", "SWIGGY", "SWIGGY", 100},
		{"containment", "UPI SWIGGY ORDER", "SWIGGY", 75 + 25*6/16},
		{"one edit", "SWIGY", "SWIGGY", 90},
		{"two edits", "SWGY", "SWIGGY", 80},
		{"truncated brand", "SWIGG", "SWIGGY", 50 + 50*5/6},
		{"short word inside a pattern", "TEA", "STEAM", 80},
		{"short word inside a longer pattern", "SHOP", "SHOPIFY", 70},
		{"empty both", "", "", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, similarityScore(tt.key, tt.pattern))
		})
	}
}
