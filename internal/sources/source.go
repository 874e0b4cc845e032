// Package sources defines the question-provider capability interface
// and the registry of weighted providers the sourcing pipeline draws
// from. New providers are added by registering an implementation, not
// by modifying the pipeline.
package sources

import (
	"context"
	"errors"
	"sync"

	"trivia-game-service/internal/domain"
)

// ErrNoData signals a provider that answered but had no usable
// question. It counts as one sourcing failure, never a crash.
var ErrNoData = errors.New("source returned no question")

// RawQuestion is the unvalidated payload a provider hands back before
// normalization.
type RawQuestion struct {
	ID               string
	Type             domain.QuestionType
	Text             string
	CorrectAnswers   []string
	IncorrectAnswers []string
	Difficulty       string
}

// FetchOptions carries per-request hints to a provider.
type FetchOptions struct {
	Channel string
	Super   bool
}

// QuestionSource is one upstream trivia provider. FetchOne must return
// ErrNoData (or another error) rather than panic for empty results.
type QuestionSource interface {
	Name() string
	FetchOne(ctx context.Context, opts FetchOptions) (RawQuestion, error)
}

// Weighted pairs a source with its operator-configured preference.
type Weighted struct {
	Source QuestionSource
	Weight float64
}

// Registry holds the registered providers and their weights.
type Registry struct {
	mu      sync.RWMutex
	entries []Weighted
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a provider. Weights at or below zero disable the
// provider without removing it.
func (r *Registry) Register(src QuestionSource, weight float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Weighted{Source: src, Weight: weight})
}

// Candidates returns a copy of the registered providers.
func (r *Registry) Candidates() []Weighted {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Weighted, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len reports how many providers are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
