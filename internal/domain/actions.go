package domain

// ActionType tags the members of the Action union.
type ActionType int

const (
	ActionStartNewGame ActionType = iota
	ActionStartSuperGames
	ActionSubmitAnswer
	ActionExpire
	ActionClearChannel
)

// Action is an inbound request to the game machine. Submission is
// fire-and-forget; the machine applies actions in arrival order per
// channel.
type Action interface {
	ActionType() ActionType
	ActionID() string
}

// ActionMeta carries the identity fields shared by every action.
type ActionMeta struct {
	ID string
}

func (m ActionMeta) ActionID() string { return m.ID }

// StartNewGameAction requests a single normal game in a channel.
type StartNewGameAction struct {
	ActionMeta
	Channel        string
	AwardAmount    int
	TTLSeconds     int
	RequestedBy    string
	UserName       string
	FromController bool
}

func (StartNewGameAction) ActionType() ActionType { return ActionStartNewGame }

// StartSuperGamesAction requests a batch of super games, subject to the
// per-channel cooldown and queue cap.
type StartSuperGamesAction struct {
	ActionMeta
	Channel     string
	Count       int
	AwardAmount int
	TTLSeconds  int
}

func (StartSuperGamesAction) ActionType() ActionType { return ActionStartSuperGames }

// SubmitAnswerAction carries a user's free-text answer attempt.
type SubmitAnswerAction struct {
	ActionMeta
	Channel  string
	UserID   string
	UserName string
	RawText  string
}

func (SubmitAnswerAction) ActionType() ActionType { return ActionSubmitAnswer }

// ExpireAction is produced internally when a game's deadline timer
// fires. GameID doubles as a fencing token: the machine ignores fires
// for games the store no longer holds.
type ExpireAction struct {
	ActionMeta
	GameID string
}

func (ExpireAction) ActionType() ActionType { return ActionExpire }

// ClearChannelAction administratively drops any live game and queued
// super games for a channel without answer checking.
type ClearChannelAction struct {
	ActionMeta
	Channel string
}

func (ClearChannelAction) ActionType() ActionType { return ActionClearChannel }
