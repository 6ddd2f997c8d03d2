package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuleIndex(t *testing.T) *RuleIndex {
	t.Helper()
	ri, err := NewRuleIndex([]Rule{
		{Pattern: "SWIGGY", Bucket: BucketFoodDelivery},
		{Pattern: "SWIGGY INSTAMART", Bucket: BucketGroceries},
		{Pattern: "ZOMATO", Bucket: BucketFoodDelivery},
		{Pattern: "NETFLIX", Bucket: BucketEntertainment},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ri.Close() })
	return ri
}

func TestRuleIndex_Search(t *testing.T) {
	ri := newTestRuleIndex(t)

	t.Run("finds rules by pattern text", func(t *testing.T) {
		results, err := ri.Search("swiggy", 10)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		for _, r := range results {
			assert.Contains(t, r.Document.Pattern, "SWIGGY")
		}
	})

	t.Run("tolerates one typo", func(t *testing.T) {
		results, err := ri.Search("netflx", 10)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "NETFLIX", results[0].Document.Pattern)
		assert.Equal(t, BucketEntertainment, results[0].Bucket)
	})

	t.Run("no hits for unrelated query", func(t *testing.T) {
		results, err := ri.Search("quarry", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestRuleIndex_SearchByBucket(t *testing.T) {
	ri := newTestRuleIndex(t)

	results, err := ri.SearchByBucket(BucketFoodDelivery, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, BucketFoodDelivery, r.Bucket)
	}
}

func TestRuleIndex_Reindex(t *testing.T) {
	ri := newTestRuleIndex(t)

	count, err := ri.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	// Reindexing a larger table replaces every rule_N document and adds
	// the new positions.
	rules := DefaultRules()
	require.NoError(t, ri.Reindex(rules))

	count, err = ri.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(rules)), count)
}
