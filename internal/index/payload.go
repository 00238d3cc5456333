package index

import "github.com/Adithya-Monish-Kumar-K/memindex/pkg/clone"

// DocID is the caller-supplied document identifier used by the Index. It is a
// different identifier space from docstore.ID.
type DocID uint64

// Well known payload metrics. A Payload may carry any other key as well.
const (
	MetricFrequency = "frequency"
	MetricPositions = "positions"
	MetricOffsets   = "offsets"
)

// Offset is a byte range [Start, End) of one occurrence of a term.
type Offset struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Payload is the per-document, per-term metadata attached to a posting. It
// has no fixed schema.
type Payload map[string]any

// Clone returns a copy that shares no mutable state with p, however deeply
// its values nest. Cloning a nil Payload yields an empty, non-nil one.
func (p Payload) Clone() Payload {
	return Payload(clone.Map(p))
}

// Frequency returns the frequency metric. Numeric values decoded from JSON
// (float64) are accepted as well.
func (p Payload) Frequency() (int, bool) {
	switch v := p[MetricFrequency].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func (p Payload) Positions() ([]int, bool) {
	v, ok := p[MetricPositions].([]int)
	return v, ok
}

func (p Payload) Offsets() ([]Offset, bool) {
	v, ok := p[MetricOffsets].([]Offset)
	return v, ok
}
