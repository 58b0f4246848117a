// Package fuzzy ranks palette items against a typed query using edit distance.
package fuzzy

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"cmdpalette/internal/domain"
)

// MaxDistance is the largest edit distance that still counts as a match
const MaxDistance = 2

// Infinite is returned when there is nothing to compare against
const Infinite = math.MaxInt

// Levenshtein returns the case-insensitive edit distance between a and b
func Levenshtein(a, b string) int {
	return levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b))
}

// SubstringDistance returns the smallest edit distance between query and any
// window of text with the same length as query, or the whole text.
func SubstringDistance(query, text string) int {
	if query == "" || text == "" {
		return Infinite
	}

	q := []rune(query)
	t := []rune(text)
	best := Infinite
	for i := 0; i+len(q) <= len(t); i++ {
		if d := Levenshtein(query, string(t[i:i+len(q)])); d < best {
			best = d
		}
	}
	if d := Levenshtein(query, text); d < best {
		best = d
	}
	return best
}

// Score is the ranking data computed for one item
type Score struct {
	Distance       int
	SubstringMatch bool
}

// Keep reports whether the score qualifies the item for the results
func (s Score) Keep() bool {
	return s.SubstringMatch || s.Distance <= MaxDistance
}

// ScoreItem computes the ranking of item for an already normalized query
func ScoreItem(query string, item domain.Item) Score {
	name := strings.ToLower(item.Name)
	subtitle := strings.ToLower(item.Subtitle)

	dist := SubstringDistance(query, name)
	if subtitle != "" {
		dist = min(dist, SubstringDistance(query, subtitle))
	}

	return Score{
		Distance:       dist,
		SubstringMatch: strings.Contains(name, query) || (subtitle != "" && strings.Contains(subtitle, query)),
	}
}

// Filter returns the items matching query, substring matches first and then
// by ascending distance. An empty query returns the items unchanged.
func Filter(query string, items []domain.Item) []domain.Item {
	if query == "" {
		return append([]domain.Item(nil), items...)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return append([]domain.Item(nil), items...)
	}

	type scored struct {
		item  domain.Item
		score Score
	}
	kept := make([]scored, 0, len(items))
	for _, item := range items {
		s := ScoreItem(query, item)
		if s.Keep() {
			kept = append(kept, scored{item: item, score: s})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i].score, kept[j].score
		if a.SubstringMatch != b.SubstringMatch {
			return a.SubstringMatch
		}
		return a.Distance < b.Distance
	})

	out := make([]domain.Item, len(kept))
	for i, s := range kept {
		out[i] = s.item
	}
	return out
}
