package order

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// subtotalTolerance absorbs decimal rendering noise in model output.
const subtotalTolerance = 0.01

// maxAmount bounds every price, line total and subtotal. Anything above it
// is not a counter order and would overflow cent rounding.
const maxAmount = 1_000_000.0

type LineItem struct {
	Quantity      int      `json:"quantity"`
	BasePrice     float64  `json:"base_price"`
	TotalPrice    float64  `json:"total_price"`
	Modifications []string `json:"modifications"`
}

// OrderState is the snapshot that round-trips through the client each turn.
// An item name absent from Items means zero of that item.
type OrderState struct {
	Items       map[string]LineItem `json:"items"`
	Subtotal    float64             `json:"subtotal"`
	IsFinalized bool                `json:"is_finalized"`
}

func EmptyState() OrderState {
	return OrderState{Items: map[string]LineItem{}}
}

func (s OrderState) IsEmpty() bool { return len(s.Items) == 0 }

// ItemNames returns the item keys sorted, for stable logs and prompts.
func (s OrderState) ItemNames() []string {
	names := make([]string, 0, len(s.Items))
	for n := range s.Items {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s OrderState) Clone() OrderState {
	out := OrderState{
		Items:       make(map[string]LineItem, len(s.Items)),
		Subtotal:    s.Subtotal,
		IsFinalized: s.IsFinalized,
	}
	for n, it := range s.Items {
		it.Modifications = append([]string{}, it.Modifications...)
		out.Items[n] = it
	}
	return out
}

// MarshalJSON keeps the wire shape free of nulls.
func (s OrderState) MarshalJSON() ([]byte, error) {
	type wire OrderState
	w := wire(s.Clone())
	return json.Marshal(w)
}

// Repair recomputes every line total and the subtotal. The declared values
// are never trusted. repaired reports a subtotal drift beyond tolerance.
func Repair(s OrderState) (out OrderState, repaired bool) {
	out = s.Clone()
	var sum float64
	for n, it := range out.Items {
		it.TotalPrice = round2(float64(it.Quantity) * it.BasePrice)
		out.Items[n] = it
		sum += it.TotalPrice
	}
	sum = round2(sum)
	repaired = math.Abs(s.Subtotal-sum) > subtotalTolerance
	out.Subtotal = sum
	return out, repaired
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Record is a finalized order as persisted and published.
type Record struct {
	ID             string              `json:"id"`
	Items          map[string]LineItem `json:"items"`
	Subtotal       float64             `json:"subtotal"`
	IsFinalized    bool                `json:"is_finalized"`
	OrderTimestamp time.Time           `json:"orderTimestamp"`
}

func NewRecord(s OrderState, id string, now time.Time) *Record {
	c := s.Clone()
	return &Record{
		ID:             id,
		Items:          c.Items,
		Subtotal:       c.Subtotal,
		IsFinalized:    c.IsFinalized,
		OrderTimestamp: now.UTC(),
	}
}
