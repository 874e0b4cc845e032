package app_test

import (
	"testing"

	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
)

func compileFree(t *testing.T, raw string) domain.CompiledAnswer {
	t.Helper()
	ca, ok := app.CompileAnswer(raw, frQuestion())
	if !ok {
		t.Fatalf("compile %q failed", raw)
	}
	return ca
}

func TestCheckExactMatch(t *testing.T) {
	correct := []domain.CompiledAnswer{{Text: "paris"}}
	got := app.CheckAnswer(domain.CompiledAnswer{Text: "paris"}, correct, domain.MultipleChoice)
	if got != app.CheckCorrect {
		t.Fatalf("got %v, want correct", got)
	}
	got = app.CheckAnswer(domain.CompiledAnswer{Text: "berlin"}, correct, domain.MultipleChoice)
	if got != app.CheckIncorrect {
		t.Fatalf("got %v, want incorrect", got)
	}
}

func TestCheckEmptySubmissionInvalid(t *testing.T) {
	correct := []domain.CompiledAnswer{{Text: "paris"}}
	if got := app.CheckAnswer(domain.CompiledAnswer{}, correct, domain.FreeResponse); got != app.CheckInvalid {
		t.Fatalf("got %v, want invalid", got)
	}
}

func TestCheckFreeResponseTokenSubset(t *testing.T) {
	correct := []domain.CompiledAnswer{compileFree(t, "The Eiffel Tower")}

	// Submission missing the stop word still matches.
	if got := app.CheckAnswer(compileFree(t, "eiffel tower"), correct, domain.FreeResponse); got != app.CheckCorrect {
		t.Fatalf("subset: got %v, want correct", got)
	}
	// Stop-word padding is ignored on both sides.
	if got := app.CheckAnswer(compileFree(t, "of the eiffel tower"), correct, domain.FreeResponse); got != app.CheckCorrect {
		t.Fatalf("stop-word padding: got %v, want correct", got)
	}
}

func TestCheckDecimalAnswerRejectsDigitSum(t *testing.T) {
	correct := []domain.CompiledAnswer{compileFree(t, "3.14")}
	if got := app.CheckAnswer(compileFree(t, "17"), correct, domain.FreeResponse); got != app.CheckIncorrect {
		t.Fatalf("17 against 3.14: got %v, want incorrect", got)
	}
	if got := app.CheckAnswer(compileFree(t, "3.14"), correct, domain.FreeResponse); got != app.CheckCorrect {
		t.Fatalf("3.14 against 3.14: got %v, want correct", got)
	}
}

func TestCheckFreeResponsePartialOverlapRejected(t *testing.T) {
	correct := []domain.CompiledAnswer{compileFree(t, "george washington")}
	if got := app.CheckAnswer(compileFree(t, "george bush"), correct, domain.FreeResponse); got != app.CheckIncorrect {
		t.Fatalf("partial overlap: got %v, want incorrect", got)
	}
}

func TestCheckFreeResponseSingleTokenContained(t *testing.T) {
	correct := []domain.CompiledAnswer{compileFree(t, "washington")}
	if got := app.CheckAnswer(compileFree(t, "george washington"), correct, domain.FreeResponse); got != app.CheckCorrect {
		t.Fatalf("superset of single-token answer: got %v, want correct", got)
	}
}

func TestCheckTokenMatchOnlyForFreeResponse(t *testing.T) {
	correct := []domain.CompiledAnswer{{Text: "the eiffel tower"}}
	if got := app.CheckAnswer(domain.CompiledAnswer{Text: "eiffel tower"}, correct, domain.MultipleChoice); got != app.CheckIncorrect {
		t.Fatalf("multiple choice must require exact text, got %v", got)
	}
}

func TestCheckIdempotent(t *testing.T) {
	correct := []domain.CompiledAnswer{compileFree(t, "six")}
	sub := compileFree(t, "6")
	for i := 0; i < 3; i++ {
		if got := app.CheckAnswer(sub, correct, domain.FreeResponse); got != app.CheckCorrect {
			t.Fatalf("run %d: got %v, want correct", i, got)
		}
	}
}
