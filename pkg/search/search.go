// Package search ranks identity-field matches for search and autocomplete.
// Ranking is the single canonical implementation, independent of any
// storage-layer sort support.
package search

import (
	"sort"
	"strings"

	"github.com/cinegraph/cinegraph/pkg/types"
)

// Relevance tiers, ascending (lower is more relevant).
const (
	TierExact     = 0 // exact case-insensitive match
	TierPrefix    = 1 // prefix match
	TierSubstring = 2 // other substring match
	TierNone      = -1
)

// Result caps.
const (
	SearchLimit       = 20
	AutocompleteLimit = 10
)

// Tier classifies how identity matches query, case-insensitively. Returns
// TierNone if identity does not contain query at all.
func Tier(identity, query string) int {
	id := strings.ToLower(identity)
	q := strings.ToLower(query)
	switch {
	case id == q:
		return TierExact
	case strings.HasPrefix(id, q):
		return TierPrefix
	case strings.Contains(id, q):
		return TierSubstring
	}
	return TierNone
}

// Rank orders candidates ascending by tier, then ascending by identity,
// drops non-matches, and caps the result at limit. The input slice is not
// modified.
func Rank(candidates []types.Identifiable, query string, limit int) []types.Identifiable {
	type ranked struct {
		entity types.Identifiable
		tier   int
	}

	matches := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		if tier := Tier(c.IdentityKey(), query); tier != TierNone {
			matches = append(matches, ranked{entity: c, tier: tier})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].tier != matches[j].tier {
			return matches[i].tier < matches[j].tier
		}
		return matches[i].entity.IdentityKey() < matches[j].entity.IdentityKey()
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]types.Identifiable, len(matches))
	for i, m := range matches {
		results[i] = m.entity
	}
	return results
}
