// Package twitchirc bridges Twitch chat and the game machine: chat
// commands become actions, engine events become channel announcements.
// The engine itself knows nothing about IRC.
package twitchirc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	twitch "github.com/gempir/go-twitch-irc/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
)

// BanAdmin is the administrative surface for banning questions,
// reachable only by authorized controllers.
type BanAdmin interface {
	Ban(ctx context.Context, questionID, source string) error
	Unban(ctx context.Context, questionID, source string) error
}

// ControllerCheck reports whether a user may run privileged commands
// in a channel. The check belongs to the action submitter, not the
// machine.
type ControllerCheck func(channel, userID string) bool

type Adapter struct {
	client       *twitch.Client
	machine      *app.GameMachine
	bans         BanAdmin
	ledger       app.ScoreLedger
	isController ControllerCheck
	channels     []string
	log          *zap.SugaredLogger
}

func NewAdapter(
	username, oauthToken string,
	channels []string,
	machine *app.GameMachine,
	bans BanAdmin,
	ledger app.ScoreLedger,
	isController ControllerCheck,
	log *zap.SugaredLogger,
) *Adapter {
	return &Adapter{
		client:       twitch.NewClient(username, oauthToken),
		machine:      machine,
		bans:         bans,
		ledger:       ledger,
		isController: isController,
		channels:     channels,
		log:          log,
	}
}

// Run connects to Twitch chat and blocks until ctx is canceled or the
// connection fails.
func (a *Adapter) Run(ctx context.Context) error {
	a.client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		a.handleMessage(ctx, msg)
	})

	events, cancelSub := a.machine.Subscribe()
	defer cancelSub()
	go a.announceLoop(ctx, events)

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		_ = a.client.Disconnect()
		close(done)
	}()

	for _, channel := range a.channels {
		a.client.Join(channel)
	}
	if err := a.client.Connect(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("twitch chat connect: %w", err)
	}
	<-done
	return nil
}

func (a *Adapter) handleMessage(ctx context.Context, msg twitch.PrivateMessage) {
	text := strings.TrimSpace(msg.Message)
	channel := msg.Channel
	userID := msg.User.ID
	userName := msg.User.Name

	cmd, rest := splitCommand(text)
	switch cmd {
	case "!trivia":
		a.machine.Submit(domain.StartNewGameAction{
			ActionMeta:  domain.ActionMeta{ID: uuid.NewString()},
			Channel:     channel,
			RequestedBy: userID,
			UserName:    userName,
		})

	case "!supertrivia":
		if !a.isController(channel, userID) {
			return
		}
		count := 1
		if n, err := strconv.Atoi(rest); err == nil && n > 0 {
			count = n
		}
		a.machine.Submit(domain.StartSuperGamesAction{
			ActionMeta: domain.ActionMeta{ID: uuid.NewString()},
			Channel:    channel,
			Count:      count,
		})

	case "!answer", "!a":
		if rest == "" {
			return
		}
		a.machine.Submit(domain.SubmitAnswerAction{
			ActionMeta: domain.ActionMeta{ID: uuid.NewString()},
			Channel:    channel,
			UserID:     userID,
			UserName:   userName,
			RawText:    rest,
		})

	case "!score":
		rec, err := a.ledger.GetScore(ctx, channel, userID)
		if err != nil {
			a.log.Errorw("score lookup failed", "channel", channel, "userId", userID, "err", err)
			return
		}
		a.client.Say(channel, fmt.Sprintf("@%s: %d wins, %d losses (streak %+d)", userName, rec.Wins, rec.Losses, rec.Streak))

	case "!triviaclear":
		if !a.isController(channel, userID) {
			return
		}
		a.machine.Submit(domain.ClearChannelAction{
			ActionMeta: domain.ActionMeta{ID: uuid.NewString()},
			Channel:    channel,
		})

	case "!triviaban", "!triviaunban":
		if !a.isController(channel, userID) {
			return
		}
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			a.client.Say(channel, "usage: "+cmd+" <questionId> <source>")
			return
		}
		var err error
		if cmd == "!triviaban" {
			err = a.bans.Ban(ctx, fields[0], fields[1])
		} else {
			err = a.bans.Unban(ctx, fields[0], fields[1])
		}
		if err != nil {
			a.log.Errorw("ban admin command failed", "cmd", cmd, "err", err)
		}
	}
}

func (a *Adapter) announceLoop(ctx context.Context, events <-chan domain.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if text := renderEvent(ev); text != "" {
				a.client.Say(ev.EventChannel(), text)
			}
		}
	}
}

func renderEvent(ev domain.Event) string {
	switch e := ev.(type) {
	case domain.NewGameEvent:
		prompt := e.Emote + " " + e.Question.Text
		if e.Question.Type == domain.MultipleChoice {
			var b strings.Builder
			b.WriteString(prompt)
			for i, opt := range e.Question.Options {
				fmt.Fprintf(&b, " [%c] %s", 'A'+i, opt)
			}
			prompt = b.String()
		}
		if e.Special == domain.SpecialShiny {
			prompt = "✨ SHINY ✨ " + prompt
		}
		return fmt.Sprintf("%s (%d points, %ds)", prompt, e.AwardAmount, e.TTLSeconds)
	case domain.CorrectAnswerEvent:
		return fmt.Sprintf("%s @%s got it! +%d points (streak %+d)", e.Emote, e.UserName, e.AwardAmount, e.Streak)
	case domain.IncorrectAnswerEvent:
		if e.Terminal {
			return fmt.Sprintf("%s sorry @%s, that's not it", e.Emote, e.UserName)
		}
		return ""
	case domain.GameExpiredEvent:
		answer := ""
		if len(e.Question.CorrectAnswers) > 0 {
			answer = " The answer was: " + e.Question.CorrectAnswers[0]
		}
		return fmt.Sprintf("%s time's up!%s", e.Emote, answer)
	case domain.SuperGameCooldownRejectedEvent:
		return fmt.Sprintf("super trivia is cooling down (%ds left)", e.CooldownRemainingSeconds)
	case domain.NoQuestionAvailableEvent:
		if e.Reason == "channel busy" {
			return ""
		}
		return "couldn't find a trivia question right now, try again later"
	default:
		return ""
	}
}

func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "!") {
		return "", ""
	}
	parts := strings.SplitN(text, " ", 2)
	cmd := strings.ToLower(parts[0])
	rest := ""
	if len(parts) == 2 {
		rest = strings.TrimSpace(parts[1])
	}
	return cmd, rest
}
