package domain

import "strings"

// QuestionType identifies the answer format of a trivia question.
type QuestionType int

const (
	MultipleChoice QuestionType = iota
	TrueFalse
	FreeResponse
)

func (t QuestionType) String() string {
	switch t {
	case MultipleChoice:
		return "multiple-choice"
	case TrueFalse:
		return "true-false"
	case FreeResponse:
		return "free-response"
	default:
		return "unknown"
	}
}

// TriviaQuestion is an immutable, validated question ready to be played.
// CorrectAnswers is never empty; for multiple choice, Options holds the
// full deduplicated option set and every correct answer appears in it.
type TriviaQuestion struct {
	ID             string
	Source         string
	Text           string
	Type           QuestionType
	CorrectAnswers []string
	Options        []string // multiple choice only
	Difficulty     string
}

// Validate enforces the question invariants after normalization.
func (q TriviaQuestion) Validate() error {
	if q.ID == "" || q.Source == "" {
		return ErrMalformedQuestion
	}
	if strings.TrimSpace(q.Text) == "" {
		return ErrMalformedQuestion
	}
	if len(q.CorrectAnswers) == 0 {
		return ErrMalformedQuestion
	}
	if q.Type == MultipleChoice {
		if len(q.Options) < 2 {
			return ErrMalformedQuestion
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			key := strings.ToLower(strings.TrimSpace(opt))
			if _, dup := seen[key]; dup {
				return ErrMalformedQuestion
			}
			seen[key] = struct{}{}
		}
		for _, ans := range q.CorrectAnswers {
			if _, ok := seen[strings.ToLower(strings.TrimSpace(ans))]; !ok {
				return ErrMalformedQuestion
			}
		}
	}
	return nil
}

// OptionForLetter maps a multiple-choice letter ("a", "B", ...) to the
// option text, returning false when the letter is out of range.
func (q TriviaQuestion) OptionForLetter(letter rune) (string, bool) {
	idx := int(letter - 'a')
	if idx < 0 || idx >= len(q.Options) {
		return "", false
	}
	return q.Options[idx], true
}
