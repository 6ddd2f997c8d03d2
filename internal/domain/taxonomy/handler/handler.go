// Package handler exposes the bucket taxonomy and rule lookup over HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/statement"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
)

// TaxonomyHandler handles taxonomy inspection endpoints.
type TaxonomyHandler struct {
	classifier *taxonomy.Classifier
	rules      *taxonomy.RuleIndex
	logger     *slog.Logger
}

// NewTaxonomyHandler creates a taxonomy handler.
func NewTaxonomyHandler(classifier *taxonomy.Classifier, rules *taxonomy.RuleIndex, logger *slog.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{
		classifier: classifier,
		rules:      rules,
		logger:     logger,
	}
}

// ListBuckets handles GET /v1/taxonomy/buckets.
func (h *TaxonomyHandler) ListBuckets(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"buckets": taxonomy.AllBuckets()})
}

// Classify handles GET /v1/taxonomy/classify?merchant=... and explains how a
// raw descriptor would be bucketed.
func (h *TaxonomyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	merchant := r.URL.Query().Get("merchant")
	if merchant == "" {
		respondError(w, http.StatusBadRequest, "merchant query parameter is required")
		return
	}

	key := statement.MerchantKey(merchant)
	classification := h.classifier.Explain(key)

	respondJSON(w, http.StatusOK, map[string]any{
		"merchant_key": key,
		"bucket":       classification.Bucket,
		"pattern":      classification.Pattern,
		"rule_index":   classification.RuleIndex,
		"fuzzy_score":  classification.FuzzyScore,
		"via_fallback": classification.ViaFallback,
	})
}

// SearchRules handles GET /v1/taxonomy/rules?q=...&bucket=...&limit=N.
// A query searches pattern text typo-tolerantly; a bucket lists its rules.
func (h *TaxonomyHandler) SearchRules(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	if q := r.URL.Query().Get("q"); q != "" {
		results, err := h.rules.Search(q, limit)
		if err != nil {
			h.logger.Error("rule search failed", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "rule search failed")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"results": results})
		return
	}

	if b := r.URL.Query().Get("bucket"); b != "" {
		bucket := taxonomy.Bucket(b)
		if !bucket.Valid() {
			respondError(w, http.StatusBadRequest, "unknown bucket")
			return
		}
		results, err := h.rules.SearchByBucket(bucket, limit)
		if err != nil {
			h.logger.Error("bucket rule listing failed", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "rule search failed")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"results": results})
		return
	}

	respondError(w, http.StatusBadRequest, "q or bucket query parameter is required")
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
