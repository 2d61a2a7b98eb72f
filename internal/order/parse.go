package order

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

type ParseOutcome int

const (
	// OutcomeConforming: the input decoded and passed validation.
	OutcomeConforming ParseOutcome = iota
	// OutcomeDefaulted: nothing was sent (empty or null); the default was used.
	OutcomeDefaulted
	// OutcomeMalformed: something was sent but could not be used.
	OutcomeMalformed
)

func (o ParseOutcome) String() string {
	switch o {
	case OutcomeConforming:
		return "conforming"
	case OutcomeDefaulted:
		return "defaulted"
	case OutcomeMalformed:
		return "malformed"
	}
	return fmt.Sprintf("ParseOutcome(%d)", int(o))
}

// wire shapes with pointers so missing required fields are detectable
type wireItem struct {
	Quantity      *int     `json:"quantity"`
	BasePrice     *float64 `json:"base_price"`
	TotalPrice    *float64 `json:"total_price"`
	Modifications []string `json:"modifications"`
}

type wireState struct {
	Items       map[string]wireItem `json:"items"`
	Subtotal    *float64            `json:"subtotal"`
	IsFinalized bool                `json:"is_finalized"`
}

// ParseOrDefault decodes raw into an OrderState. On any failure it returns a
// copy of def together with OutcomeMalformed and an error wrapping
// ErrMalformedData (bad syntax) or ErrSchemaViolation (bad shape or values).
func ParseOrDefault(raw []byte, def OrderState) (OrderState, ParseOutcome, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return def.Clone(), OutcomeDefaulted, nil
	}

	if !json.Valid(trimmed) {
		var probe any
		detail := "invalid JSON"
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			detail = err.Error()
		}
		return def.Clone(), OutcomeMalformed, fmt.Errorf("%w: %s", ErrMalformedData, detail)
	}

	var w wireState
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return def.Clone(), OutcomeMalformed, fmt.Errorf("%w: %s", ErrSchemaViolation, err.Error())
	}

	st, err := w.toState()
	if err != nil {
		return def.Clone(), OutcomeMalformed, fmt.Errorf("%w: %s", ErrSchemaViolation, err.Error())
	}
	return st, OutcomeConforming, nil
}

func (w wireState) toState() (OrderState, error) {
	st := EmptyState()
	st.IsFinalized = w.IsFinalized

	if w.Subtotal != nil {
		if *w.Subtotal < 0 {
			return OrderState{}, fmt.Errorf("subtotal: must be >= 0, got %v", *w.Subtotal)
		}
		if *w.Subtotal > maxAmount {
			return OrderState{}, fmt.Errorf("subtotal: must be <= %.0f, got %v", maxAmount, *w.Subtotal)
		}
		st.Subtotal = *w.Subtotal
	}

	names := make([]string, 0, len(w.Items))
	for n := range w.Items {
		names = append(names, n)
	}
	// sorted so the first reported violation is deterministic
	sort.Strings(names)

	var sum float64
	for _, name := range names {
		it := w.Items[name]
		if strings.TrimSpace(name) == "" {
			return OrderState{}, errors.New("items: empty item name")
		}
		if it.Quantity == nil {
			return OrderState{}, fmt.Errorf("items[%q].quantity: field required", name)
		}
		if *it.Quantity <= 0 {
			return OrderState{}, fmt.Errorf("items[%q].quantity: must be > 0, got %d", name, *it.Quantity)
		}
		if it.BasePrice == nil {
			return OrderState{}, fmt.Errorf("items[%q].base_price: field required", name)
		}
		if *it.BasePrice < 0 {
			return OrderState{}, fmt.Errorf("items[%q].base_price: must be >= 0, got %v", name, *it.BasePrice)
		}
		line := float64(*it.Quantity) * *it.BasePrice
		if math.IsInf(line, 0) || line > maxAmount {
			return OrderState{}, fmt.Errorf("items[%q]: line total must be <= %.0f, got %v", name, maxAmount, line)
		}
		if sum += line; sum > maxAmount {
			return OrderState{}, fmt.Errorf("items[%q]: order total must be <= %.0f", name, maxAmount)
		}

		li := LineItem{
			Quantity:      *it.Quantity,
			BasePrice:     *it.BasePrice,
			Modifications: append([]string{}, it.Modifications...),
		}
		if it.TotalPrice != nil {
			if *it.TotalPrice < 0 || *it.TotalPrice > maxAmount {
				return OrderState{}, fmt.Errorf("items[%q].total_price: must be in [0, %.0f], got %v", name, maxAmount, *it.TotalPrice)
			}
			li.TotalPrice = *it.TotalPrice
		}
		st.Items[name] = li
	}

	return st, nil
}
