package app

import "trivia-game-service/internal/domain"

// CheckResult is the outcome of comparing a submission against the
// correct-answer set.
type CheckResult int

const (
	CheckCorrect CheckResult = iota
	CheckIncorrect
	CheckInvalid
)

func (r CheckResult) String() string {
	switch r {
	case CheckCorrect:
		return "correct"
	case CheckIncorrect:
		return "incorrect"
	default:
		return "invalid"
	}
}

// stopWords are stripped before the free-response subset/superset
// comparison. The list is deliberately tiny: the policy prefers false
// negatives over letting trivially padded guesses through.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "and": {}, "or": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "its": {}, "his": {}, "her": {}, "their": {},
}

// CheckAnswer compares a compiled submission against the compiled
// correct-answer set using type-specific equivalence. It mutates no
// state and is safe to call repeatedly with the same inputs.
func CheckAnswer(submission domain.CompiledAnswer, correct []domain.CompiledAnswer, questionType domain.QuestionType) CheckResult {
	if submission.IsEmpty() {
		return CheckInvalid
	}

	for _, ans := range correct {
		if submission.Text == ans.Text {
			return CheckCorrect
		}
	}

	if questionType == domain.FreeResponse {
		subTokens := contentTokens(submission)
		if len(subTokens) == 0 {
			return CheckIncorrect
		}
		for _, ans := range correct {
			if tokenSetsMatch(subTokens, contentTokens(ans)) {
				return CheckCorrect
			}
		}
	}
	return CheckIncorrect
}

func contentTokens(a domain.CompiledAnswer) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range a.Tokens() {
		if _, stop := stopWords[tok]; !stop {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// tokenSetsMatch holds when one non-empty set contains the other.
func tokenSetsMatch(sub, ans map[string]struct{}) bool {
	if len(sub) == 0 || len(ans) == 0 {
		return false
	}
	small, large := sub, ans
	if len(small) > len(large) {
		small, large = large, small
	}
	for tok := range small {
		if _, ok := large[tok]; !ok {
			return false
		}
	}
	return true
}
