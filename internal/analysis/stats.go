package analysis

import (
	"github.com/Adithya-Monish-Kumar-K/memindex/internal/index"
)

// TermStats groups tokens by term and returns one payload per term carrying
// its frequency, positions and byte offsets, ready for Index.AddDocPayloads.
func TermStats(tokens []Token) map[string]index.Payload {
	stats := make(map[string]index.Payload)
	for _, tok := range tokens {
		p, ok := stats[tok.Term]
		if !ok {
			p = index.Payload{
				index.MetricFrequency: 0,
				index.MetricPositions: []int{},
				index.MetricOffsets:   []index.Offset{},
			}
			stats[tok.Term] = p
		}
		p[index.MetricFrequency] = p[index.MetricFrequency].(int) + 1
		p[index.MetricPositions] = append(p[index.MetricPositions].([]int), tok.Position)
		p[index.MetricOffsets] = append(p[index.MetricOffsets].([]index.Offset), index.Offset{Start: tok.Start, End: tok.End})
	}
	return stats
}

// Frequencies counts occurrences per term.
func Frequencies(terms []string) map[string]int {
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[t]++
	}
	return counts
}
