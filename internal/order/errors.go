package order

import "errors"

// Reconciliation failures. All of them leave the prior state in place.
var (
	ErrExtractionMiss  = errors.New("no structured block in completion")
	ErrMalformedData   = errors.New("structured block is not valid JSON")
	ErrSchemaViolation = errors.New("structured block violates order schema")
)

var ErrOrderNotFound = errors.New("order not found")
