package taxonomy

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// RuleDocument is the searchable form of a classification rule.
type RuleDocument struct {
	ID      string  `json:"id"`
	Pattern string  `json:"pattern"`
	Bucket  string  `json:"bucket"`
	Index   float64 `json:"index"` // rule-table position, for ordering hits
}

// RuleSearchResult is a search hit with its relevance score.
type RuleSearchResult struct {
	Document RuleDocument
	Score    float64
	Bucket   Bucket
}

// RuleIndex is a full-text index over the classification rule table. It backs
// the "which rules could claim this merchant" lookup the admin API exposes —
// the classifier itself never consults it.
type RuleIndex struct {
	index bleve.Index
	mu    sync.RWMutex
}

// NewRuleIndex builds an in-memory index over a rule table.
func NewRuleIndex(rules []Rule) (*RuleIndex, error) {
	index, err := bleve.NewMemOnly(buildRuleIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create rule index: %w", err)
	}

	ri := &RuleIndex{index: index}
	if err := ri.Reindex(rules); err != nil {
		_ = index.Close()
		return nil, err
	}
	return ri, nil
}

func buildRuleIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("pattern", textFieldMapping)
	docMapping.AddFieldMappingsAt("bucket", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("index", bleve.NewNumericFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// Reindex replaces the indexed rule set.
func (ri *RuleIndex) Reindex(rules []Rule) error {
	ri.mu.Lock()
	defer ri.mu.Unlock()

	batch := ri.index.NewBatch()
	for i, rule := range rules {
		doc := RuleDocument{
			ID:      fmt.Sprintf("rule_%d", i),
			Pattern: rule.Pattern,
			Bucket:  string(rule.Bucket),
			Index:   float64(i),
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to index rule %d: %w", i, err)
		}
	}

	if err := ri.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}
	return nil
}

// Search finds rules whose pattern text matches the query, typo-tolerant.
func (ri *RuleIndex) Search(query string, limit int) ([]RuleSearchResult, error) {
	ri.mu.RLock()
	defer ri.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := ri.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("rule search failed: %w", err)
	}

	return convertRuleHits(searchResults), nil
}

// SearchByBucket lists all rules assigned to one bucket.
func (ri *RuleIndex) SearchByBucket(bucket Bucket, limit int) ([]RuleSearchResult, error) {
	ri.mu.RLock()
	defer ri.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	termQuery := bleve.NewTermQuery(string(bucket))
	termQuery.SetField("bucket")

	searchRequest := bleve.NewSearchRequest(termQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := ri.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bucket search failed: %w", err)
	}

	return convertRuleHits(searchResults), nil
}

func convertRuleHits(searchResults *bleve.SearchResult) []RuleSearchResult {
	results := make([]RuleSearchResult, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		doc := RuleDocument{ID: hit.ID}
		if pattern, ok := hit.Fields["pattern"].(string); ok {
			doc.Pattern = pattern
		}
		if bucket, ok := hit.Fields["bucket"].(string); ok {
			doc.Bucket = bucket
		}
		if index, ok := hit.Fields["index"].(float64); ok {
			doc.Index = index
		}

		results = append(results, RuleSearchResult{
			Document: doc,
			Score:    hit.Score,
			Bucket:   ParseBucket(doc.Bucket),
		})
	}
	return results
}

// DocumentCount returns the number of indexed rules.
func (ri *RuleIndex) DocumentCount() (uint64, error) {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	return ri.index.DocCount()
}

// Close releases the index.
func (ri *RuleIndex) Close() error {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	if ri.index != nil {
		return ri.index.Close()
	}
	return nil
}
