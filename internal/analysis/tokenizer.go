// Package analysis turns raw text into the term sequences the index consumes.
// It splits on non-alphanumeric boundaries and can lower-case, drop
// stop-words and apply a simple suffix-based stemmer.
package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/config"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// Token is one normalised term. Position counts emitted tokens from 0;
// Start and End are the byte range of the word in the input text.
type Token struct {
	Term     string
	Position int
	Start    int
	End      int
}

type Tokenizer struct {
	lowercase bool
	stopWords bool
	stem      bool
	minLen    int
}

func New(cfg config.AnalysisConfig) *Tokenizer {
	minLen := cfg.MinTermLength
	if minLen < 1 {
		minLen = 1
	}
	return &Tokenizer{
		lowercase: cfg.Lowercase,
		stopWords: cfg.StopWords,
		stem:      cfg.Stem,
		minLen:    minLen,
	}
}

// Tokenize breaks text into Tokens.
func (t *Tokenizer) Tokenize(text string) []Token {
	var tokens []Token
	start := -1
	emit := func(end int) {
		word := text[start:end]
		if t.lowercase {
			word = strings.ToLower(word)
		}
		if utf8.RuneCountInString(word) < t.minLen {
			return
		}
		if t.stopWords {
			if _, isStop := stopWords[strings.ToLower(word)]; isStop {
				return
			}
		}
		if t.stem {
			word = stem(word)
		}
		tokens = append(tokens, Token{
			Term:     word,
			Position: len(tokens),
			Start:    start,
			End:      end,
		})
	}
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			emit(i)
			start = -1
		}
	}
	if start >= 0 {
		emit(len(text))
	}
	return tokens
}

// Terms returns just the term strings of tokens, in order.
func Terms(tokens []Token) []string {
	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = tok.Term
	}
	return terms
}

var suffixes = []struct {
	suffix      string
	replacement string
	minLen      int
}{
	{"ational", "ate", 2},
	{"tional", "tion", 2},
	{"encies", "ence", 2},
	{"ances", "ance", 2},
	{"ments", "ment", 2},
	{"izing", "ize", 2},
	{"ating", "ate", 2},
	{"iness", "y", 2},
	{"ously", "ous", 2},
	{"ively", "ive", 2},
	{"tion", "t", 3},
	{"ying", "y", 2},
	{"ies", "y", 2},
	{"ing", "", 3},
	{"ers", "er", 2},
	{"ed", "", 3},
	{"ly", "", 3},
	{"es", "", 3},
	{"ss", "ss", 2},
	{"s", "", 3},
}

// stem applies the first suffix rule whose result is long enough.
func stem(word string) string {
	for _, rule := range suffixes {
		if !strings.HasSuffix(word, rule.suffix) {
			continue
		}
		if stemmed := word[:len(word)-len(rule.suffix)] + rule.replacement; len(stemmed) >= rule.minLen {
			return stemmed
		}
	}
	return word
}
