package order

import (
	"fmt"
	"log"

	"github.com/Vovarama1992/orderbot/internal/menu"
)

// Reconciliation is an accepted fragment in canonical form.
type Reconciliation struct {
	State            OrderState
	SubtotalRepaired bool
	DeclaredSubtotal float64
}

// Reconciler is the only authority on structure and arithmetic of a
// proposed state. The generation service's numbers are never kept as-is.
type Reconciler struct {
	catalog *menu.Catalog
	strict  bool
}

// NewReconciler: with strict set, every item name must exist in catalog.
func NewReconciler(catalog *menu.Catalog, strict bool) *Reconciler {
	return &Reconciler{catalog: catalog, strict: strict}
}

// Reconcile parses, validates and repairs a fragment. A returned error wraps
// ErrMalformedData or ErrSchemaViolation and the zero Reconciliation.
func (r *Reconciler) Reconcile(fragment string) (Reconciliation, error) {
	st, outcome, err := ParseOrDefault([]byte(fragment), EmptyState())
	if err != nil {
		return Reconciliation{}, err
	}
	if outcome == OutcomeDefaulted {
		// "null" or an empty block is not a proposal
		return Reconciliation{}, fmt.Errorf("%w: empty structured block", ErrSchemaViolation)
	}

	if r.strict && r.catalog != nil {
		for _, name := range st.ItemNames() {
			if _, ok := r.catalog.Lookup(name); !ok {
				return Reconciliation{}, fmt.Errorf("%w: items[%q]: not on the menu", ErrSchemaViolation, name)
			}
		}
	}

	repaired, drift := Repair(st)
	if drift {
		log.Printf("[reconcile] declared subtotal %.2f differs from computed %.2f, using computed",
			st.Subtotal, repaired.Subtotal)
	}

	return Reconciliation{
		State:            repaired,
		SubtotalRepaired: drift,
		DeclaredSubtotal: st.Subtotal,
	}, nil
}
