package ai

import (
	"context"
	"errors"
)

// AI is the generation service. It knows nothing about orders or storage.
type AI interface {
	GetReply(ctx context.Context, prompt string) (string, error)
}

var (
	ErrBlocked    = errors.New("generation blocked by safety filter")
	ErrEmptyReply = errors.New("generation returned empty text")
)

// BlockedError carries the filter's reason. errors.Is(err, ErrBlocked) holds.
type BlockedError struct {
	Reason  string
	Message string
}

func (e *BlockedError) Error() string {
	return "generation blocked (" + e.Reason + "): " + e.Message
}

func (e *BlockedError) Unwrap() error { return ErrBlocked }
