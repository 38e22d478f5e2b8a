package model

import (
	"sort"
	"strings"
	"unicode"
)

// Keyword is a profile term and how often it occurs.
type Keyword struct {
	Term   string
	Weight int
}

var keywordStopwords = map[string]struct{}{
	"likely": {}, "no": {}, "yes": {}, "to": {}, "the": {}, "with": {},
	"and": {}, "or": {}, "of": {}, "a": {}, "an": {}, "in": {}, "on": {},
	"for": {}, "is": {}, "are": {}, "unknown": {}, "who": {}, "that": {},
}

// KeywordWeights counts the significant terms across a profile's values.
// Terms shorter than three letters and stopwords are ignored. The result is
// ordered by weight, then alphabetically.
func KeywordWeights(p Profile) []Keyword {
	counts := make(map[string]int)
	add := func(value string) {
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				return -1
			}
			return unicode.ToLower(r)
		}, value)
		for _, token := range strings.Fields(cleaned) {
			if len([]rune(token)) <= 2 {
				continue
			}
			if _, stop := keywordStopwords[token]; stop {
				continue
			}
			counts[token]++
		}
	}

	for field := range p {
		if s, ok := p[field].(string); ok {
			add(s)
			continue
		}
		for _, s := range p.Strings(field) {
			add(s)
		}
	}

	keywords := make([]Keyword, 0, len(counts))
	for term, weight := range counts {
		keywords = append(keywords, Keyword{Term: term, Weight: weight})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Weight != keywords[j].Weight {
			return keywords[i].Weight > keywords[j].Weight
		}
		return keywords[i].Term < keywords[j].Term
	})
	return keywords
}
