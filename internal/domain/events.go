package domain

// EventType tags the members of the Event union.
type EventType int

const (
	EventNewGame EventType = iota
	EventCorrectAnswer
	EventIncorrectAnswer
	EventInvalidAnswerInput
	EventGameExpired
	EventSuperGameCooldownRejected
	EventNoQuestionAvailable
	EventChannelCleared
)

func (t EventType) String() string {
	switch t {
	case EventNewGame:
		return "new_game"
	case EventCorrectAnswer:
		return "correct_answer"
	case EventIncorrectAnswer:
		return "incorrect_answer"
	case EventInvalidAnswerInput:
		return "invalid_answer_input"
	case EventGameExpired:
		return "game_expired"
	case EventSuperGameCooldownRejected:
		return "super_game_cooldown_rejected"
	case EventNoQuestionAvailable:
		return "no_question_available"
	case EventChannelCleared:
		return "channel_cleared"
	default:
		return "unknown"
	}
}

// Event is an outbound notification from the game machine. Subscribers
// receive events in emission order per channel.
type Event interface {
	EventType() EventType
	EventChannel() string
	EventID() string
}

// EventMeta carries identity fields shared by every event: the event's
// own id and the id of the action that produced it.
type EventMeta struct {
	ID       string
	ActionID string
	Channel  string
}

func (m EventMeta) EventID() string      { return m.ID }
func (m EventMeta) EventChannel() string { return m.Channel }

// NewGameEvent announces a freshly started game.
type NewGameEvent struct {
	EventMeta
	GameID      string
	Question    TriviaQuestion
	AwardAmount int
	TTLSeconds  int
	Special     SpecialStatus
	Emote       string
	RequestedBy string
	UserName    string
	Super       bool
}

func (NewGameEvent) EventType() EventType { return EventNewGame }

// CorrectAnswerEvent reports a win, including the payout after special
// scaling and the user's new streak from the ledger.
type CorrectAnswerEvent struct {
	EventMeta
	GameID      string
	Question    TriviaQuestion
	UserID      string
	UserName    string
	AwardAmount int
	Special     SpecialStatus
	Emote       string
	Streak      int
	Super       bool
}

func (CorrectAnswerEvent) EventType() EventType { return EventCorrectAnswer }

// IncorrectAnswerEvent reports a wrong answer. For normal games this is
// terminal; for super games the game stays open.
type IncorrectAnswerEvent struct {
	EventMeta
	GameID   string
	Question TriviaQuestion
	UserID   string
	UserName string
	Special  SpecialStatus
	Emote    string
	Streak   int
	Super    bool
	Terminal bool
}

func (IncorrectAnswerEvent) EventType() EventType { return EventIncorrectAnswer }

// InvalidAnswerInputEvent reports an unparseable submission; the game
// remains active.
type InvalidAnswerInputEvent struct {
	EventMeta
	GameID   string
	UserID   string
	UserName string
	Emote    string
}

func (InvalidAnswerInputEvent) EventType() EventType { return EventInvalidAnswerInput }

// GameExpiredEvent reports that a game's deadline passed unanswered.
type GameExpiredEvent struct {
	EventMeta
	GameID   string
	Question TriviaQuestion
	Emote    string
	Super    bool
}

func (GameExpiredEvent) EventType() EventType { return EventGameExpired }

// SuperGameCooldownRejectedEvent reports a StartSuperGames action that
// arrived inside the per-channel cooldown.
type SuperGameCooldownRejectedEvent struct {
	EventMeta
	CooldownRemainingSeconds int
}

func (SuperGameCooldownRejectedEvent) EventType() EventType { return EventSuperGameCooldownRejected }

// NoQuestionAvailableEvent reports sourcing exhaustion or a slot
// conflict; no game was created.
type NoQuestionAvailableEvent struct {
	EventMeta
	Reason string
}

func (NoQuestionAvailableEvent) EventType() EventType { return EventNoQuestionAvailable }

// ChannelClearedEvent reports an administrative reset of a channel.
type ChannelClearedEvent struct {
	EventMeta
	DroppedGames int
}

func (ChannelClearedEvent) EventType() EventType { return EventChannelCleared }
