package domain

import "strings"

// CompiledAnswer is the canonical comparable form of an answer string:
// lower-cased, punctuation and whitespace collapsed, numerals resolved,
// multiple-choice letters resolved to option text. Equivalence between
// compiled answers is type-specific, not plain equality.
type CompiledAnswer struct {
	Text string
}

// IsEmpty reports whether compilation produced nothing comparable.
func (a CompiledAnswer) IsEmpty() bool { return a.Text == "" }

// Tokens splits the compiled text into words.
func (a CompiledAnswer) Tokens() []string { return strings.Fields(a.Text) }
