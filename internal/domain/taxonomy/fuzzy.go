package taxonomy

import (
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FuzzyMatch reports an inexact rule match with its similarity score.
type FuzzyMatch struct {
	Pattern string
	Bucket  Bucket
	Index   int // position in the rule table, used as the tie-break
	Score   int // similarity score 0-100, higher is closer
}

// FuzzyMatcher catches merchant keys that miss the exact rule table by a few
// characters ("swigy order", "amazn in"). It is fully deterministic: the best
// score wins, and equal scores resolve to the lowest rule-table index, so the
// same input always yields the same bucket.
type FuzzyMatcher struct {
	patterns []fuzzyPattern
	mu       sync.RWMutex
}

type fuzzyPattern struct {
	normalized string
	bucket     Bucket
	index      int
}

// NewFuzzyMatcher builds a fuzzy matcher over the rule table.
func NewFuzzyMatcher(rules []Rule) *FuzzyMatcher {
	fm := &FuzzyMatcher{}
	fm.Build(rules)
	return fm
}

// Build reloads the pattern set from a rule table.
func (fm *FuzzyMatcher) Build(rules []Rule) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	fm.patterns = make([]fuzzyPattern, 0, len(rules))
	for i, rule := range rules {
		pattern := strings.ToUpper(strings.TrimSpace(rule.Pattern))
		if pattern == "" {
			continue
		}
		fm.patterns = append(fm.patterns, fuzzyPattern{
			normalized: pattern,
			bucket:     rule.Bucket,
			index:      i,
		})
	}
}

// Match returns the best fuzzy match at or above threshold, or nil.
// Threshold is a similarity score (0-100); 100 is an exact match.
//
// Merchant keys usually wrap the brand in noise ("swigy order 8842199"), so
// each pattern is scored against every window of the same word count in the
// key, not just the key as a whole.
func (fm *FuzzyMatcher) Match(merchantKey string, threshold int) *FuzzyMatch {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	if len(fm.patterns) == 0 {
		return nil
	}

	normalized := strings.ToUpper(merchantKey)
	words := strings.Fields(normalized)

	var best *FuzzyMatch
	for _, p := range fm.patterns {
		score := patternScore(normalized, words, p.normalized)
		if score < threshold {
			continue
		}
		if best == nil || score > best.Score || (score == best.Score && p.index < best.Index) {
			best = &FuzzyMatch{
				Pattern: p.normalized,
				Bucket:  p.bucket,
				Index:   p.index,
				Score:   score,
			}
		}
	}

	return best
}

// PatternCount returns the number of loaded patterns.
func (fm *FuzzyMatcher) PatternCount() int {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	return len(fm.patterns)
}

// patternScore scores a pattern against a merchant key (0-100), taking the
// best score across all same-width word windows of the key.
func patternScore(key string, keyWords []string, pattern string) int {
	best := similarityScore(key, pattern)
	if best == 100 {
		return best
	}

	width := len(strings.Fields(pattern))
	if width == 0 || width > len(keyWords) {
		return best
	}
	for i := 0; i+width <= len(keyWords); i++ {
		window := strings.Join(keyWords[i:i+width], " ")
		if score := similarityScore(window, pattern); score > best {
			best = score
			if best == 100 {
				return best
			}
		}
	}
	return best
}

// minTruncationLen is the shortest key fragment the reverse-containment
// branch accepts. Shorter fragments sit inside too many brand names ("tea"
// inside STEAM, "shop" inside SHOPIFY) to mean anything.
const minTruncationLen = 5

// similarityScore scores how close a string is to a rule pattern (0-100).
// A pattern contained in the key scores highest. The reverse, a key
// contained in the pattern, only counts as a truncated brand: the key must
// be at least minTruncationLen long and cover most of the pattern to clear
// the matching threshold. Otherwise each Levenshtein edit costs 10 points,
// so a single typo in a brand of five or more characters still clears the
// default threshold while two typos do not. Very short strings pay more per
// edit since one edit there changes most of the word. Subsequence rank is a
// weak fallback signal.
func similarityScore(key, pattern string) int {
	if key == pattern {
		return 100
	}

	if strings.Contains(key, pattern) {
		return 75 + (25 * len(pattern) / len(key))
	}
	if len(key) >= minTruncationLen && strings.Contains(pattern, key) {
		return 50 + (50 * len(key) / len(pattern))
	}

	maxLen := len(key)
	if len(pattern) > maxLen {
		maxLen = len(pattern)
	}
	if maxLen == 0 {
		return 0
	}

	editCost := 10
	if maxLen < 5 {
		editCost = 25
	}
	levScore := 100 - fuzzy.LevenshteinDistance(key, pattern)*editCost
	if levScore < 0 {
		levScore = 0
	}

	rankScore := 0
	if rank := fuzzy.RankMatch(pattern, key); rank >= 0 && rank < len(key) {
		// Lower rank means the pattern starts matching earlier in the key.
		rankScore = 60 - (rank * 40 / len(key))
	}

	if levScore > rankScore {
		return levScore
	}
	return rankScore
}
