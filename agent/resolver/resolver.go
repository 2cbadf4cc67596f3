// Package resolver maps a free-text outlet reference onto one of a list of
// candidate outlets.
package resolver

import (
	"strings"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

// MinScore is the lowest score accepted as a match.
const MinScore = 20

const (
	scoreExactName     = 100
	scoreNameContains  = 90
	scoreLocationHit   = 70
	scoreDistrictHit   = 60
	weightNameWord     = 20
	weightLocationWord = 10
	weightDistrictWord = 5
	minWordLength      = 3
)

var (
	normalizer = strings.NewReplacer(" ", "", "-", "", "–", "", "—", "")
	stopwords  = map[string]bool{"the": true, "and": true, "for": true, "are": true, "has": true, "have": true}
)

// Resolve returns the best scoring candidate. Ties keep the earliest
// candidate; anything scoring below MinScore is rejected.
func Resolve(query string, candidates []contractx.Outlet) (contractx.Outlet, bool) {
	best, bestScore := -1, 0
	for i, c := range candidates {
		if s := Score(query, c); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 || bestScore < MinScore {
		return contractx.Outlet{}, false
	}
	return candidates[best], true
}

// Score rates how well query names the outlet, from 0 to 100.
func Score(query string, o contractx.Outlet) int {
	lower := strings.ToLower(strings.TrimSpace(query))
	q := normalize(lower)
	if q == "" {
		return 0
	}

	name := normalize(o.Name)
	switch {
	case name != "" && q == name:
		return scoreExactName
	case strings.Contains(name, q):
		return scoreNameContains
	case strings.Contains(normalize(o.Location), q):
		return scoreLocationHit
	case o.District != "" && strings.Contains(strings.ToLower(o.District), lower):
		return scoreDistrictHit
	}

	nameLower := strings.ToLower(o.Name)
	locationLower := strings.ToLower(o.Location)
	districtLower := strings.ToLower(o.District)
	score := 0
	for _, w := range words(lower) {
		if strings.Contains(nameLower, w) {
			score += weightNameWord
		}
		if strings.Contains(locationLower, w) {
			score += weightLocationWord
		}
		if districtLower != "" && strings.Contains(districtLower, w) {
			score += weightDistrictWord
		}
	}
	return score
}

func normalize(s string) string {
	return normalizer.Replace(strings.ToLower(s))
}

func words(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '-', '–', '—', ',', '.', '?', '!', '\'', '"', '(', ')':
			return true
		}
		return false
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= minWordLength && !stopwords[f] {
			out = append(out, f)
		}
	}
	return out
}
