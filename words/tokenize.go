package words

import (
	"iter"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MinTokenLength is the shortest token kept.
const MinTokenLength = 3

var (
	urlPattern     = regexp.MustCompile(`[a-z][a-z0-9+.\-]*://\S+`)
	nonWordPattern = regexp.MustCompile(`[^a-z0-9\s']`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// DefaultStopWords holds common function words plus classroom filler.
var DefaultStopWords = newSet(
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "if", "in",
	"into", "is", "it", "no", "not", "of", "on", "or", "s", "such", "t", "that",
	"the", "their", "then", "there", "these", "they", "this", "to", "was",
	"will", "with", "we", "you", "your", "i", "me", "my", "our", "ours", "from",
	"have", "has", "had", "were", "been", "can", "could", "should", "would",
	"what", "when", "where", "who", "why", "how", "do", "does", "did", "so",
	"than", "too", "very", "now",
	// classroom noise
	"like", "just", "also", "really",
)

// Tokenizer normalizes free text into filtered tokens.
type Tokenizer struct {
	stopWords map[string]struct{}
}

// NewTokenizer builds a tokenizer with the given stop words. A nil set
// disables stop-word filtering.
func NewTokenizer(stopWords map[string]struct{}) *Tokenizer {
	return &Tokenizer{stopWords: stopWords}
}

// Normalize lowercases text, removes URLs and punctuation other than
// apostrophes, and collapses whitespace.
func (tk *Tokenizer) Normalize(text string) string {
	cleaned := cases.Lower(language.Und).String(text)
	cleaned = urlPattern.ReplaceAllString(cleaned, " ")
	cleaned = nonWordPattern.ReplaceAllString(cleaned, " ")
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Tokens yields the kept tokens of text. The sequence is lazy and can be
// ranged over more than once.
func (tk *Tokenizer) Tokens(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		cleaned := tk.Normalize(text)
		if cleaned == "" {
			return
		}
		for word := range strings.SplitSeq(cleaned, " ") {
			word = strings.Trim(word, "'")
			if !tk.keep(word) {
				continue
			}
			if !yield(word) {
				return
			}
		}
	}
}

func (tk *Tokenizer) keep(word string) bool {
	if len(word) < MinTokenLength {
		return false
	}
	_, stop := tk.stopWords[word]
	return !stop
}

// Tokens yields the tokens of text using DefaultStopWords.
func Tokens(text string) iter.Seq[string] {
	return NewTokenizer(DefaultStopWords).Tokens(text)
}

// Tokenize collects Tokens(text) into a slice.
func Tokenize(text string) []string {
	out := []string{}
	for tok := range Tokens(text) {
		out = append(out, tok)
	}
	return out
}

func newSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
