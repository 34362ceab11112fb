package words

import (
	"cmp"
	"slices"

	"github.com/danielhkuo/quickly-pulse/models"
)

// DefaultTopN is the number of terms kept when the caller has no preference.
const DefaultTopN = 80

// Frequencies counts tokens across texts and returns the topN terms by
// descending count. Ties sort lexicographically so output is deterministic.
func Frequencies(texts []string, topN int) []models.TermWeight {
	return NewTokenizer(DefaultStopWords).Frequencies(texts, topN)
}

// Frequencies is the package-level Frequencies with this tokenizer's stop words.
func (tk *Tokenizer) Frequencies(texts []string, topN int) []models.TermWeight {
	if topN <= 0 {
		return []models.TermWeight{}
	}

	counts := make(map[string]int)
	for _, text := range texts {
		for tok := range tk.Tokens(text) {
			counts[tok]++
		}
	}

	ranked := make([]models.TermWeight, 0, len(counts))
	for term, n := range counts {
		ranked = append(ranked, models.TermWeight{Term: term, Weight: n})
	}

	slices.SortFunc(ranked, func(a, b models.TermWeight) int {
		// 1. Higher count first
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		// 2. Lexicographic tie-break
		return cmp.Compare(a.Term, b.Term)
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
