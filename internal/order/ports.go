package order

import (
	"context"
	"encoding/json"
)

// TurnRequest is one inbound utterance plus the client's snapshot.
// Context is kept raw so absent and garbage inputs stay distinguishable.
type TurnRequest struct {
	Message string
	Context json.RawMessage
}

type TurnResult struct {
	Reply string
	State OrderState
}

// Repo persists finalized orders. Insert only.
type Repo interface {
	SaveOrder(ctx context.Context, rec *Record) (string, error)
}

// OrderReader reads saved orders back.
type OrderReader interface {
	GetOrder(ctx context.Context, id string) (*Record, error)
	// ListOrders returns every saved order, oldest first.
	ListOrders(ctx context.Context) ([]Record, error)
}

// Outbound notifies downstream consumers of saved orders.
type Outbound interface {
	PublishFinalized(ctx context.Context, rec *Record) error
}

// Service runs one stateless turn. The only returned error is a
// generation block; the result still carries the inbound state then.
type Service interface {
	HandleTurn(ctx context.Context, req TurnRequest) (TurnResult, error)
}
