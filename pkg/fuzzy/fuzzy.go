package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// LevenshteinDistance calculates the edit distance between two strings after
// normalization (lowercase, accents removed, whitespace collapsed).
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(normalizeString(s1))
	r2 := []rune(normalizeString(s2))
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

// threshold is the typo tolerance for a query of the given length.
func threshold(query string) int {
	switch n := len([]rune(query)); {
	case n <= 3:
		return 1
	case n >= 8:
		return 3
	default:
		return 2
	}
}

// Match reports whether query fuzzy-matches any word of text.
func Match(query, text string) bool {
	return Score(query, text) > 0
}

// Score rates how well query matches text. Zero means no match; substring
// hits outrank prefix hits, which outrank typo-tolerant word hits.
func Score(query, text string) float64 {
	query = normalizeString(query)
	text = normalizeString(text)
	if query == "" || text == "" {
		return 0
	}

	if strings.Contains(text, query) {
		score := 100.0
		if containsWord(text, query) {
			score += 50
		}
		return score
	}

	best := 0.0
	limit := threshold(query)
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, query) {
			best = max(best, 60)
			continue
		}
		if dist := LevenshteinDistance(query, word); dist <= limit {
			best = max(best, 50-float64(dist)*15)
		}
	}
	return best
}

// Candidate is one searchable record; Fields are weighted in order, the
// first field counting most.
type Candidate struct {
	ID     string
	Fields []string
}

// Rank returns the ids of matching candidates, best match first. Ties keep
// the input order.
func Rank(query string, candidates []Candidate) []string {
	type scored struct {
		id    string
		score float64
		order int
	}
	var hits []scored
	for i, c := range candidates {
		total := 0.0
		weight := 1.0
		for _, field := range c.Fields {
			total += Score(query, field) * weight
			weight *= 0.6
		}
		if total > 0 {
			hits = append(hits, scored{id: c.ID, score: total, order: i})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

func normalizeString(s string) string {
	s = strings.ToLower(removeAccents(s))
	return strings.Join(strings.Fields(s), " ")
}

func containsWord(text, query string) bool {
	for _, word := range strings.Fields(text) {
		if word == query {
			return true
		}
	}
	return false
}

// removeAccents strips diacritical marks so "Müller" matches "muller".
func removeAccents(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		switch r {
		case 'đ':
			r = 'd'
		case 'Đ':
			r = 'D'
		case 'ø':
			r = 'o'
		case 'ß':
			b.WriteString("ss")
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
