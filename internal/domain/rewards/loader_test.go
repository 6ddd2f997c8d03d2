package rewards

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

func TestLoadCatalog(t *testing.T) {
	csvData := `card_id,bucket,rate,cap,tier
CardA,food-delivery,0.01,,
CardA,online-retail,0.02,,
CardB,food-delivery,0.05,250,1
`

	catalog, err := LoadCatalog(strings.NewReader(csvData), "2025-03-01")
	require.NoError(t, err)

	assert.Equal(t, "2025-03-01", catalog.Version())
	assert.Equal(t, []CardID{"CardA", "CardB"}, catalog.Cards())

	rule, ok := catalog.Rule("CardB", taxonomy.BucketFoodDelivery)
	require.True(t, ok)
	assert.True(t, rule.Rate.Equal(dec("0.05")))
	require.NotNil(t, rule.Cap)
	assert.True(t, rule.Cap.Equal(dec("250")))

	_, ok = catalog.Rule("CardB", taxonomy.BucketTravel)
	assert.False(t, ok, "absent terms mean rate zero, not a rule")
}

func TestLoadCatalog_Rejections(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"unknown bucket", "card_id,bucket,rate\nCardA,crypto,0.01\n"},
		{"bad rate", "card_id,bucket,rate\nCardA,travel,lots\n"},
		{"negative rate", "card_id,bucket,rate\nCardA,travel,-0.01\n"},
		{"negative cap", "card_id,bucket,rate,cap\nCardA,travel,0.01,-5\n"},
		{"empty card id", "card_id,bucket,rate\n,travel,0.01\n"},
		{"unsupported tier", "card_id,bucket,rate,cap,tier\nCardA,travel,0.01,,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(strings.NewReader(tt.csv), "v1")
			assert.Error(t, err)
		})
	}
}

func TestCatalog_DuplicateRuleLastWins(t *testing.T) {
	catalog := NewCatalog("v1", []Rule{
		{CardID: "CardA", Bucket: taxonomy.BucketTravel, Rate: dec("0.01")},
		{CardID: "CardA", Bucket: taxonomy.BucketTravel, Rate: dec("0.03")},
	})

	rule, ok := catalog.Rule("CardA", taxonomy.BucketTravel)
	require.True(t, ok)
	assert.True(t, rule.Rate.Equal(dec("0.03")))
}

func TestHolder_SwapIsolation(t *testing.T) {
	v1 := NewCatalog("v1", []Rule{{CardID: "CardA", Bucket: taxonomy.BucketTravel, Rate: dec("0.01")}})
	v2 := NewCatalog("v2", []Rule{{CardID: "CardB", Bucket: taxonomy.BucketTravel, Rate: dec("0.05")}})

	holder := NewHolder(v1)

	held := holder.Load()
	holder.Swap(v2)

	// The reference taken before the swap still sees v1.
	assert.Equal(t, "v1", held.Version())
	assert.Equal(t, "v2", holder.Load().Version())
}
