package domain

import "errors"

var (
	// ErrSourcingExhausted is returned when every candidate source failed
	// or was filtered; surfaced to callers as NoQuestionAvailable.
	ErrSourcingExhausted = errors.New("no usable question from any source")
	// ErrSlotConflict is returned when a start arrives while the channel
	// already has a live normal game.
	ErrSlotConflict = errors.New("channel already has an active game")
	// ErrSuperQueueFull is returned when the super game queue hit its cap.
	ErrSuperQueueFull = errors.New("super game queue is full")
	// ErrGameNotFound indicates no live game matches the channel or id.
	ErrGameNotFound = errors.New("game not found")
	// ErrMalformedQuestion indicates a question failed invariant checks
	// after normalization.
	ErrMalformedQuestion = errors.New("malformed trivia question")
	// ErrLedgerUnavailable wraps score persistence failures; games still
	// resolve locally when it occurs.
	ErrLedgerUnavailable = errors.New("score ledger unavailable")
	// ErrBadConfiguration is fatal at startup, never per-request.
	ErrBadConfiguration = errors.New("invalid trivia configuration")
)
