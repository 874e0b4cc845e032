package twitchirc

import (
	"strings"
	"testing"

	"trivia-game-service/internal/domain"
)

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in   string
		cmd  string
		rest string
	}{
		{"!trivia", "!trivia", ""},
		{"!ANSWER  Paris ", "!answer", "Paris"},
		{"!supertrivia 5", "!supertrivia", "5"},
		{"hello there", "", ""},
	}
	for _, tc := range cases {
		cmd, rest := splitCommand(tc.in)
		if cmd != tc.cmd || rest != tc.rest {
			t.Fatalf("splitCommand(%q) = %q %q, want %q %q", tc.in, cmd, rest, tc.cmd, tc.rest)
		}
	}
}

func TestRenderNewGame(t *testing.T) {
	ev := domain.NewGameEvent{
		EventMeta: domain.EventMeta{Channel: "chan"},
		Question: domain.TriviaQuestion{
			Text:    "What is the capital of France?",
			Type:    domain.MultipleChoice,
			Options: []string{"Berlin", "Paris", "Rome"},
		},
		AwardAmount: 50,
		TTLSeconds:  30,
		Emote:       "🧠",
	}

	text := renderEvent(ev)
	for _, want := range []string{"[A] Berlin", "[B] Paris", "[C] Rome", "50 points", "30s"} {
		if !strings.Contains(text, want) {
			t.Fatalf("rendered %q, missing %q", text, want)
		}
	}

	ev.Special = domain.SpecialShiny
	if !strings.Contains(renderEvent(ev), "SHINY") {
		t.Fatalf("shiny game should be announced as shiny")
	}
}

func TestRenderOutcomes(t *testing.T) {
	win := domain.CorrectAnswerEvent{UserName: "alice", AwardAmount: 50, Streak: 3, Emote: "🧠"}
	if text := renderEvent(win); !strings.Contains(text, "@alice") || !strings.Contains(text, "+50") {
		t.Fatalf("rendered win %q", text)
	}

	missNonTerminal := domain.IncorrectAnswerEvent{UserName: "bob"}
	if text := renderEvent(missNonTerminal); text != "" {
		t.Fatalf("non-terminal miss should be silent, got %q", text)
	}
	missTerminal := domain.IncorrectAnswerEvent{UserName: "bob", Terminal: true}
	if text := renderEvent(missTerminal); !strings.Contains(text, "@bob") {
		t.Fatalf("rendered terminal miss %q", text)
	}

	expired := domain.GameExpiredEvent{
		Question: domain.TriviaQuestion{CorrectAnswers: []string{"Paris"}},
	}
	if text := renderEvent(expired); !strings.Contains(text, "Paris") {
		t.Fatalf("expiry should reveal the answer, got %q", text)
	}

	busy := domain.NoQuestionAvailableEvent{Reason: "channel busy"}
	if text := renderEvent(busy); text != "" {
		t.Fatalf("busy channel should be silent, got %q", text)
	}
}
