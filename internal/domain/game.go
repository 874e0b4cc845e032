package domain

import "time"

// SpecialStatus marks a rare reward modifier applied at game creation.
type SpecialStatus int

const (
	SpecialNone SpecialStatus = iota
	SpecialShiny
	SpecialToxic
)

func (s SpecialStatus) String() string {
	switch s {
	case SpecialShiny:
		return "shiny"
	case SpecialToxic:
		return "toxic"
	default:
		return "none"
	}
}

// GameState is the per-game record held by the state store while a game
// is live. It is created by the game machine and mutated only by it.
type GameState struct {
	GameID         string
	Channel        string
	Question       TriviaQuestion
	AwardAmount    int
	Special        SpecialStatus
	Emote          string
	RequestedBy    string // empty for super games: anyone may answer
	FromController bool
	Super          bool
	CreatedAt      time.Time
	Deadline       time.Time
}

// EffectiveAward computes the payout at resolution time. Shiny scales
// the base award, toxic zeroes it.
func (g GameState) EffectiveAward(shinyMultiplier int) int {
	switch g.Special {
	case SpecialShiny:
		if shinyMultiplier < 1 {
			shinyMultiplier = 1
		}
		return g.AwardAmount * shinyMultiplier
	case SpecialToxic:
		return 0
	default:
		return g.AwardAmount
	}
}

// ScoreRecord mirrors the ledger's view of a user in a channel. Streak
// is signed: positive for consecutive wins, negative for losses.
type ScoreRecord struct {
	Wins   int
	Losses int
	Streak int
}
