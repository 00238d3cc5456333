package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/memindex/internal/index"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/config"
)

func defaultTokenizer() *Tokenizer {
	return New(config.Default().Analysis)
}

func TestTokenizeOffsets(t *testing.T) {
	text := "Hello Doc, my text!"
	tokens := defaultTokenizer().Tokenize(text)

	require.Equal(t, []string{"hello", "doc", "my", "text"}, Terms(tokens))
	for i, tok := range tokens {
		assert.Equal(t, i, tok.Position)
		assert.Equal(t, tok.Term, lower(text[tok.Start:tok.End]))
	}
	assert.Equal(t, Token{Term: "doc", Position: 1, Start: 6, End: 9}, tokens[1])
}

func TestTokenizeOptions(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AnalysisConfig
		text string
		want []string
	}{
		{
			name: "keep case",
			cfg:  config.AnalysisConfig{MinTermLength: 1},
			text: "Hello World",
			want: []string{"Hello", "World"},
		},
		{
			name: "stop words",
			cfg:  config.AnalysisConfig{Lowercase: true, StopWords: true},
			text: "The cat and the hat",
			want: []string{"cat", "hat"},
		},
		{
			name: "min length",
			cfg:  config.AnalysisConfig{Lowercase: true, MinTermLength: 3},
			text: "a bb ccc dddd",
			want: []string{"ccc", "dddd"},
		},
		{
			name: "stemming",
			cfg:  config.AnalysisConfig{Lowercase: true, Stem: true},
			text: "indexing queries",
			want: []string{"index", "query"},
		},
		{
			name: "unicode",
			cfg:  config.AnalysisConfig{Lowercase: true},
			text: "Café–naïve 42",
			want: []string{"café", "naïve", "42"},
		},
		{
			name: "empty",
			cfg:  config.AnalysisConfig{Lowercase: true},
			text: " ,.; ",
			want: []string{},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Terms(New(tt.cfg).Tokenize(tt.text))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTermStats(t *testing.T) {
	tokens := defaultTokenizer().Tokenize("to be or not to be")
	stats := TermStats(tokens)

	require.Len(t, stats, 4)
	be := stats["be"]
	freq, ok := be.Frequency()
	require.True(t, ok)
	assert.Equal(t, 2, freq)

	positions, ok := be.Positions()
	require.True(t, ok)
	assert.Equal(t, []int{1, 5}, positions)

	offsets, ok := be.Offsets()
	require.True(t, ok)
	assert.Equal(t, []index.Offset{{Start: 3, End: 5}, {Start: 16, End: 18}}, offsets)
}

func TestFrequencies(t *testing.T) {
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, Frequencies([]string{"a", "b", "a"}))
}

func lower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + ('a' - 'A')
		}
	}
	return string(out)
}
