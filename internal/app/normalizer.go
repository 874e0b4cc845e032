package app

import (
	"sort"
	"strings"

	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/sources"
)

// NormalizeQuestion canonicalizes a raw provider payload into a
// validated TriviaQuestion. Multiple-choice options are deduplicated
// after normalization so case or whitespace differences never produce
// false distinct options; the merged option set is sorted so letter
// positions are stable for the life of the game.
func NormalizeQuestion(raw sources.RawQuestion, source string) (domain.TriviaQuestion, error) {
	q := domain.TriviaQuestion{
		ID:         strings.TrimSpace(raw.ID),
		Source:     source,
		Text:       collapseSpace(raw.Text),
		Type:       raw.Type,
		Difficulty: strings.ToLower(strings.TrimSpace(raw.Difficulty)),
	}

	switch raw.Type {
	case domain.MultipleChoice:
		q.CorrectAnswers = dedupeAnswers(raw.CorrectAnswers)
		q.Options = dedupeAnswers(append(append([]string{}, raw.CorrectAnswers...), raw.IncorrectAnswers...))
		sort.Strings(q.Options)
	case domain.TrueFalse:
		q.CorrectAnswers = canonicalBools(raw.CorrectAnswers)
	default:
		q.CorrectAnswers = dedupeAnswers(raw.CorrectAnswers)
	}

	if err := q.Validate(); err != nil {
		return domain.TriviaQuestion{}, err
	}
	return q, nil
}

// dedupeAnswers trims each entry and drops case-insensitive duplicates
// while keeping the first spelling encountered.
func dedupeAnswers(answers []string) []string {
	seen := make(map[string]struct{}, len(answers))
	out := make([]string, 0, len(answers))
	for _, ans := range answers {
		trimmed := collapseSpace(ans)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func canonicalBools(answers []string) []string {
	out := make([]string, 0, len(answers))
	for _, ans := range answers {
		switch strings.ToLower(strings.TrimSpace(ans)) {
		case "true", "t", "yes", "1":
			out = append(out, "true")
		case "false", "f", "no", "0":
			out = append(out, "false")
		}
	}
	return dedupeAnswers(out)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
