package app

import (
	"regexp"
	"strconv"
	"strings"

	"trivia-game-service/internal/domain"
)

var (
	mcLetterRe = regexp.MustCompile(`^([a-z])[.):!?]?$`)
	decimalRe  = regexp.MustCompile(`^-?\d+\.\d+$`)
)

// CompileAnswer canonicalizes a raw answer string for the given
// question. The second return is false when the input is empty or, for
// multiple choice, cannot be resolved to any option.
func CompileAnswer(raw string, question domain.TriviaQuestion) (domain.CompiledAnswer, bool) {
	s := stripEnclosingQuotes(strings.TrimSpace(raw))
	if s == "" {
		return domain.CompiledAnswer{}, false
	}

	switch question.Type {
	case domain.MultipleChoice:
		return compileMultipleChoice(s, question)
	case domain.TrueFalse:
		return compileTrueFalse(s)
	default:
		return compileFreeResponse(s)
	}
}

// CompileCorrectAnswers compiles a question's canonical answer set.
// Entries that fail to compile are skipped; validation upstream
// guarantees at least one survives.
func CompileCorrectAnswers(question domain.TriviaQuestion) []domain.CompiledAnswer {
	compiled := make([]domain.CompiledAnswer, 0, len(question.CorrectAnswers))
	for _, ans := range question.CorrectAnswers {
		if ca, ok := CompileAnswer(ans, question); ok {
			compiled = append(compiled, ca)
		}
	}
	return compiled
}

func compileMultipleChoice(s string, question domain.TriviaQuestion) (domain.CompiledAnswer, bool) {
	lower := strings.ToLower(s)
	if m := mcLetterRe.FindStringSubmatch(lower); m != nil {
		if opt, ok := question.OptionForLetter(rune(m[1][0])); ok {
			return domain.CompiledAnswer{Text: normalizeText(opt)}, true
		}
		return domain.CompiledAnswer{}, false
	}

	// Full answer text is accepted as long as it matches an option.
	norm := normalizeText(s)
	for _, opt := range question.Options {
		if normalizeText(opt) == norm {
			return domain.CompiledAnswer{Text: norm}, true
		}
	}
	return domain.CompiledAnswer{}, false
}

func compileTrueFalse(s string) (domain.CompiledAnswer, bool) {
	switch normalizeText(s) {
	case "true", "t", "yes", "y":
		return domain.CompiledAnswer{Text: "true"}, true
	case "false", "f", "no", "n":
		return domain.CompiledAnswer{Text: "false"}, true
	}
	return domain.CompiledAnswer{}, false
}

func compileFreeResponse(s string) (domain.CompiledAnswer, bool) {
	// Decimal literals survive as-is; normalization would split them
	// at the point and parseNumeric only handles integers.
	if trimmed := strings.TrimSpace(s); decimalRe.MatchString(trimmed) {
		return domain.CompiledAnswer{Text: trimmed}, true
	}
	norm := normalizeText(s)
	if norm == "" {
		return domain.CompiledAnswer{}, false
	}
	if n, ok := parseNumeric(norm); ok {
		return domain.CompiledAnswer{Text: strconv.Itoa(n)}, true
	}
	return domain.CompiledAnswer{Text: norm}, true
}

func stripEnclosingQuotes(s string) string {
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}

// normalizeText lower-cases and replaces every non-alphanumeric rune
// with a space, then collapses runs of whitespace. Hyphenated number
// words ("twenty-one") split into separate tokens as a side effect.
func normalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var unitWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13,
	"fourteen": 14, "fifteen": 15, "sixteen": 16,
	"seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// parseNumeric resolves digit strings and English number words up to
// the thousands into an integer. Returns false when any token is not
// numeric or when more than one bare digit group appears ("1 2" is two
// numbers, not three); callers then fall back to literal comparison.
func parseNumeric(norm string) (int, bool) {
	if n, err := strconv.Atoi(norm); err == nil {
		return n, true
	}

	total, current := 0, 0
	seen := false
	digitGroups := 0
	for _, tok := range strings.Fields(norm) {
		switch {
		case tok == "and":
			continue
		case unitWords[tok] != 0 || tok == "zero":
			current += unitWords[tok]
			seen = true
		case tensWords[tok] != 0:
			current += tensWords[tok]
			seen = true
		case tok == "hundred":
			if current == 0 {
				current = 1
			}
			current *= 100
			seen = true
		case tok == "thousand":
			if current == 0 {
				current = 1
			}
			total += current * 1000
			current = 0
			seen = true
		default:
			if n, err := strconv.Atoi(tok); err == nil {
				digitGroups++
				if digitGroups > 1 {
					return 0, false
				}
				current += n
				seen = true
			} else {
				return 0, false
			}
		}
	}
	return total + current, seen
}
