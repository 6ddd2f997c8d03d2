package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

func newTestHandler(t *testing.T) *TaxonomyHandler {
	t.Helper()

	rules := taxonomy.DefaultRules()
	index, err := taxonomy.NewRuleIndex(rules)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return NewTaxonomyHandler(taxonomy.NewClassifier(rules), index, slog.Default())
}

func get(h http.HandlerFunc, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestTaxonomyHandler_ListBuckets(t *testing.T) {
	h := newTestHandler(t)

	rec := get(h.ListBuckets, "/v1/taxonomy/buckets")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Buckets []taxonomy.Bucket `json:"buckets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Buckets, 10)
	assert.Equal(t, taxonomy.BucketOtherOffline, resp.Buckets[len(resp.Buckets)-1])
}

func TestTaxonomyHandler_Classify(t *testing.T) {
	h := newTestHandler(t)

	rec := get(h.Classify, "/v1/taxonomy/classify?merchant="+url.QueryEscape("UPI PAYMENT TO SWIGGY ORDER 8842199"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		MerchantKey string          `json:"merchant_key"`
		Bucket      taxonomy.Bucket `json:"bucket"`
		ViaFallback bool            `json:"via_fallback"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "swiggy order", resp.MerchantKey)
	assert.Equal(t, taxonomy.BucketFoodDelivery, resp.Bucket)
	assert.False(t, resp.ViaFallback)

	t.Run("unknown merchant falls back", func(t *testing.T) {
		rec := get(h.Classify, "/v1/taxonomy/classify?merchant=MYSTERY+SHOP+42")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), string(taxonomy.BucketOtherOffline))
	})

	t.Run("missing merchant is 400", func(t *testing.T) {
		rec := get(h.Classify, "/v1/taxonomy/classify")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaxonomyHandler_SearchRules(t *testing.T) {
	h := newTestHandler(t)

	t.Run("typo tolerant pattern search", func(t *testing.T) {
		rec := get(h.SearchRules, "/v1/taxonomy/rules?q=netflx")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "NETFLIX")
	})

	t.Run("bucket listing", func(t *testing.T) {
		rec := get(h.SearchRules, "/v1/taxonomy/rules?bucket=fuel")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Results []taxonomy.RuleSearchResult `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Results)
		for _, r := range resp.Results {
			assert.Equal(t, taxonomy.BucketFuel, r.Bucket)
		}
	})

	t.Run("unknown bucket is 400", func(t *testing.T) {
		rec := get(h.SearchRules, "/v1/taxonomy/rules?bucket=yachts")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no parameters is 400", func(t *testing.T) {
		rec := get(h.SearchRules, "/v1/taxonomy/rules")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
