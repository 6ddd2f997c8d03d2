package taxonomy

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// RuleMatch reports which rule claimed a merchant key.
type RuleMatch struct {
	Pattern string // the pattern that matched
	Bucket  Bucket
	Index   int // position in the rule table; lower wins
}

// Engine matches merchant keys against the rule table using the Aho-Corasick
// algorithm: all patterns are compiled into one state machine, so a lookup is
// a single pass over the input regardless of table size.
//
// First-match-wins semantics are preserved by resolving overlapping hits to
// the rule with the lowest table index, which is equivalent to scanning the
// ordered table and stopping at the first hit.
type Engine struct {
	matcher  *ahocorasick.Matcher
	patterns []string
	rules    []RuleMatch // metadata per pattern, same order as patterns
	mu       sync.RWMutex
}

// NewEngine compiles the rule table into a matching engine.
func NewEngine(rules []Rule) *Engine {
	e := &Engine{}
	e.Build(rules)
	return e
}

// Build recompiles the engine from a rule table. Safe to call again when the
// table changes; in-flight Match calls finish against the old state machine.
func (e *Engine) Build(rules []Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(rules) == 0 {
		e.matcher = nil
		e.patterns = nil
		e.rules = nil
		return
	}

	patterns := make([]string, 0, len(rules))
	meta := make([]RuleMatch, 0, len(rules))

	for i, rule := range rules {
		pattern := strings.ToUpper(strings.TrimSpace(rule.Pattern))
		if pattern == "" {
			continue
		}
		patterns = append(patterns, pattern)
		meta = append(meta, RuleMatch{
			Pattern: pattern,
			Bucket:  rule.Bucket,
			Index:   i,
		})
	}

	e.patterns = patterns
	e.rules = meta

	if len(patterns) == 0 {
		e.matcher = nil
		return
	}

	bytePatterns := make([][]byte, len(patterns))
	for i, p := range patterns {
		bytePatterns[i] = []byte(p)
	}
	e.matcher = ahocorasick.NewMatcher(bytePatterns)
}

// Match returns the winning rule for a merchant key, or nil when no rule
// matches. The winner is the matching rule with the lowest table index.
func (e *Engine) Match(merchantKey string) *RuleMatch {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.matcher == nil || len(e.rules) == 0 {
		return nil
	}

	normalized := strings.ToUpper(merchantKey)
	hits := e.matcher.Match([]byte(normalized))
	if len(hits) == 0 {
		return nil
	}

	var best *RuleMatch
	for _, idx := range hits {
		if idx < 0 || idx >= len(e.rules) {
			continue
		}
		m := &e.rules[idx]
		if best == nil || m.Index < best.Index {
			matchCopy := *m
			best = &matchCopy
		}
	}

	return best
}

// MatchBatch resolves many merchant keys under a single read lock. Entries
// with no matching rule are nil.
func (e *Engine) MatchBatch(merchantKeys []string) []*RuleMatch {
	e.mu.RLock()
	defer e.mu.RUnlock()

	results := make([]*RuleMatch, len(merchantKeys))
	if e.matcher == nil || len(e.rules) == 0 {
		return results
	}

	for i, key := range merchantKeys {
		normalized := strings.ToUpper(key)
		hits := e.matcher.Match([]byte(normalized))
		if len(hits) == 0 {
			continue
		}

		var best *RuleMatch
		for _, idx := range hits {
			if idx < 0 || idx >= len(e.rules) {
				continue
			}
			m := &e.rules[idx]
			if best == nil || m.Index < best.Index {
				matchCopy := *m
				best = &matchCopy
			}
		}
		results[i] = best
	}

	return results
}

// PatternCount returns the number of compiled patterns.
func (e *Engine) PatternCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.patterns)
}

// IsEmpty reports whether the engine has no patterns loaded.
func (e *Engine) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matcher == nil || len(e.patterns) == 0
}
