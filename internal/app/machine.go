package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/sources"
	"trivia-game-service/internal/telemetry"
)

// ScoreLedger records win/loss outcomes and streaks. It is the sole
// authority for persisted scores; the machine treats it as synchronous
// but it may be remote, so failures are logged and never block game
// resolution.
type ScoreLedger interface {
	RecordWin(ctx context.Context, channel, userID string) (int, error)
	RecordLoss(ctx context.Context, channel, userID string) (int, error)
	GetScore(ctx context.Context, channel, userID string) (domain.ScoreRecord, error)
}

// AwardSink pays out points for a won game, for example through a
// platform channel-points API. A nil sink disables payouts; the ledger
// still records the outcome either way.
type AwardSink interface {
	AwardPoints(ctx context.Context, channel, userID string, amount int) error
}

// MachineConfig carries the engine's tunables. Validate these at
// startup with config.Validate; the machine assumes sane values.
type MachineConfig struct {
	DefaultAward    int
	DefaultTTL      time.Duration
	ShinyMultiplier int
	LedgerTimeout   time.Duration
}

// GameMachine is the orchestrating actor. Actions are submitted
// fire-and-forget and applied in arrival order per channel; channels
// are fully independent, each served by its own worker goroutine.
type GameMachine struct {
	cfg       MachineConfig
	store     *GameStore
	pipeline  *SourcingPipeline
	roller    *SpecialRoller
	cooldowns *CooldownGuard
	emotes    *EmoteCycler
	ledger    ScoreLedger
	awards    AwardSink
	log       *zap.SugaredLogger

	actions chan domain.Action

	workerMu sync.Mutex
	workers  map[string]chan domain.Action

	subMu       sync.Mutex
	subscribers map[chan domain.Event]struct{}

	timerMu sync.Mutex
	timers  map[string]*time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	now   func() time.Time
	newID func() string
}

func NewGameMachine(
	cfg MachineConfig,
	store *GameStore,
	pipeline *SourcingPipeline,
	roller *SpecialRoller,
	cooldowns *CooldownGuard,
	emotes *EmoteCycler,
	ledger ScoreLedger,
	awards AwardSink,
	log *zap.SugaredLogger,
) *GameMachine {
	if cfg.LedgerTimeout <= 0 {
		cfg.LedgerTimeout = 5 * time.Second
	}
	return &GameMachine{
		cfg:         cfg,
		store:       store,
		pipeline:    pipeline,
		roller:      roller,
		cooldowns:   cooldowns,
		emotes:      emotes,
		ledger:      ledger,
		awards:      awards,
		log:         log,
		actions:     make(chan domain.Action, 256),
		workers:     make(map[string]chan domain.Action),
		subscribers: make(map[chan domain.Event]struct{}),
		timers:      make(map[string]*time.Timer),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Start launches the dispatcher. It returns immediately; call Stop to
// shut the machine down.
func (m *GameMachine) Start(ctx context.Context) {
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go m.dispatch()
}

// Stop cancels all workers and pending timers and waits for them.
func (m *GameMachine) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.timerMu.Lock()
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
	m.timerMu.Unlock()
	m.wg.Wait()
}

// Submit enqueues an action. It never blocks past machine shutdown.
func (m *GameMachine) Submit(action domain.Action) {
	select {
	case m.actions <- action:
	case <-m.ctx.Done():
	}
}

// Subscribe returns a channel receiving every emitted event in
// per-channel emission order. The caller must invoke cancel to avoid
// leaks; slow subscribers have their oldest pending event dropped.
func (m *GameMachine) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 32)
	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	cancel := func() {
		m.subMu.Lock()
		if _, ok := m.subscribers[ch]; ok {
			delete(m.subscribers, ch)
			close(ch)
		}
		m.subMu.Unlock()
	}
	return ch, cancel
}

func (m *GameMachine) emit(ev domain.Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for ch := range m.subscribers {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// dispatch routes actions to per-channel workers so a slow upstream
// source in one channel can never starve another.
func (m *GameMachine) dispatch() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case action := <-m.actions:
			channel, ok := m.routingChannel(action)
			if !ok {
				continue
			}
			// A full mailbox must not stall routing for every other
			// channel, so the action is dropped instead.
			select {
			case m.workerFor(channel) <- action:
			default:
				m.log.Warnw("channel mailbox full, dropping action",
					"channel", channel, "actionId", action.ActionID())
			}
		}
	}
}

// routingChannel resolves the serialization key for an action. Expiry
// actions for games the store no longer holds are fenced off here.
func (m *GameMachine) routingChannel(action domain.Action) (string, bool) {
	switch a := action.(type) {
	case domain.StartNewGameAction:
		return a.Channel, true
	case domain.StartSuperGamesAction:
		return a.Channel, true
	case domain.SubmitAnswerAction:
		return a.Channel, true
	case domain.ClearChannelAction:
		return a.Channel, true
	case domain.ExpireAction:
		channel, ok := m.store.ChannelForGame(a.GameID)
		return channel, ok
	default:
		m.log.Warnw("dropping unknown action", "actionId", action.ActionID())
		return "", false
	}
}

func (m *GameMachine) workerFor(channel string) chan domain.Action {
	m.workerMu.Lock()
	defer m.workerMu.Unlock()
	if ch, ok := m.workers[channel]; ok {
		return ch
	}
	ch := make(chan domain.Action, 64)
	m.workers[channel] = ch
	m.wg.Add(1)
	go m.runWorker(channel, ch)
	return ch
}

func (m *GameMachine) runWorker(channel string, ch <-chan domain.Action) {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case action := <-ch:
			m.handle(channel, action)
		}
	}
}

func (m *GameMachine) handle(channel string, action domain.Action) {
	switch a := action.(type) {
	case domain.StartNewGameAction:
		m.handleStartNewGame(a)
	case domain.StartSuperGamesAction:
		m.handleStartSuperGames(a)
	case domain.SubmitAnswerAction:
		m.handleSubmitAnswer(a)
	case domain.ExpireAction:
		m.handleExpire(channel, a)
	case domain.ClearChannelAction:
		m.handleClearChannel(a)
	}
}

// gameSpec describes one game to start inside a channel worker.
type gameSpec struct {
	actionID       string
	channel        string
	awardAmount    int
	ttlSeconds     int
	requestedBy    string
	userName       string
	fromController bool
	super          bool
}

func (m *GameMachine) handleStartNewGame(a domain.StartNewGameAction) {
	m.startGame(gameSpec{
		actionID:       a.ActionID(),
		channel:        a.Channel,
		awardAmount:    a.AwardAmount,
		ttlSeconds:     a.TTLSeconds,
		requestedBy:    a.RequestedBy,
		userName:       a.UserName,
		fromController: a.FromController,
	})
}

func (m *GameMachine) handleStartSuperGames(a domain.StartSuperGamesAction) {
	// Cooldown is checked before any state-store or upstream work.
	if m.cooldowns.IsInCooldown(a.Channel) {
		telemetry.RecordCooldownRejection()
		m.emit(domain.SuperGameCooldownRejectedEvent{
			EventMeta:                m.eventMeta(a.ActionID(), a.Channel),
			CooldownRemainingSeconds: int(m.cooldowns.Remaining(a.Channel).Seconds()),
		})
		return
	}
	m.cooldowns.RecordStart(a.Channel)

	count := a.Count
	if count < 1 {
		count = 1
	}
	queued := 0
	for i := 0; i < count; i++ {
		err := m.store.EnqueueSuper(a.Channel, queuedSuper{
			actionID:    a.ActionID(),
			awardAmount: a.AwardAmount,
			ttlSeconds:  a.TTLSeconds,
		})
		if err != nil {
			m.log.Infow("super game queue full", "channel", a.Channel, "queued", queued)
			break
		}
		queued++
	}
	if _, busy := m.store.Active(a.Channel); !busy {
		m.startNextQueuedSuper(a.Channel)
	}
}

// startGame reserves the slot, sources a question, rolls special
// status, arms the expiry timer, and announces the new game. Returns
// false when no game was created.
func (m *GameMachine) startGame(spec gameSpec) bool {
	award := spec.awardAmount
	if award <= 0 {
		award = m.cfg.DefaultAward
	}
	ttl := time.Duration(spec.ttlSeconds) * time.Second
	if ttl <= 0 {
		ttl = m.cfg.DefaultTTL
	}

	gs := &domain.GameState{
		GameID:         m.newID(),
		Channel:        spec.channel,
		RequestedBy:    spec.requestedBy,
		FromController: spec.fromController,
		Super:          spec.super,
	}
	if err := m.store.Reserve(gs); err != nil {
		m.emit(domain.NoQuestionAvailableEvent{
			EventMeta: m.eventMeta(spec.actionID, spec.channel),
			Reason:    "channel busy",
		})
		return false
	}

	question, err := m.pipeline.FetchValidQuestion(m.ctx, spec.channel, sources.FetchOptions{
		Channel: spec.channel,
		Super:   spec.super,
	})
	if err != nil {
		m.store.Resolve(gs.GameID)
		m.log.Infow("sourcing failed, no game started", "channel", spec.channel, "err", err)
		m.emit(domain.NoQuestionAvailableEvent{
			EventMeta: m.eventMeta(spec.actionID, spec.channel),
			Reason:    "sourcing exhausted",
		})
		return false
	}

	special := m.roller.Roll(spec.channel)
	if special != domain.SpecialNone {
		telemetry.RecordSpecialRoll(special.String())
	}

	now := m.now()
	gs.Question = question
	gs.AwardAmount = award
	gs.Special = special
	gs.Emote = m.emotes.Next(spec.channel)
	gs.CreatedAt = now
	gs.Deadline = now.Add(ttl)

	m.armExpiry(gs.GameID, ttl)

	mode := "normal"
	if spec.super {
		mode = "super"
	}
	telemetry.RecordGameStart(mode)
	telemetry.SetActiveGames(m.store.ActiveCount())

	m.emit(domain.NewGameEvent{
		EventMeta:   m.eventMeta(spec.actionID, spec.channel),
		GameID:      gs.GameID,
		Question:    question,
		AwardAmount: award,
		TTLSeconds:  int(ttl.Seconds()),
		Special:     special,
		Emote:       gs.Emote,
		RequestedBy: spec.requestedBy,
		UserName:    spec.userName,
		Super:       spec.super,
	})
	return true
}

func (m *GameMachine) handleSubmitAnswer(a domain.SubmitAnswerAction) {
	gs, ok := m.store.Active(a.Channel)
	if !ok {
		m.log.Debugw("answer with no live game", "channel", a.Channel, "userId", a.UserID)
		return
	}
	// Normal games belong to the user who started them.
	if !gs.Super && gs.RequestedBy != "" && gs.RequestedBy != a.UserID {
		return
	}

	compiled, valid := CompileAnswer(a.RawText, gs.Question)
	if !valid {
		m.emit(domain.InvalidAnswerInputEvent{
			EventMeta: m.eventMeta(a.ActionID(), a.Channel),
			GameID:    gs.GameID,
			UserID:    a.UserID,
			UserName:  a.UserName,
			Emote:     gs.Emote,
		})
		return
	}

	switch CheckAnswer(compiled, CompileCorrectAnswers(gs.Question), gs.Question.Type) {
	case CheckInvalid:
		m.emit(domain.InvalidAnswerInputEvent{
			EventMeta: m.eventMeta(a.ActionID(), a.Channel),
			GameID:    gs.GameID,
			UserID:    a.UserID,
			UserName:  a.UserName,
			Emote:     gs.Emote,
		})

	case CheckCorrect:
		resolved, ok := m.store.Resolve(gs.GameID)
		if !ok {
			return
		}
		m.cancelExpiry(gs.GameID)
		streak := m.recordWin(a.Channel, a.UserID)
		award := resolved.EffectiveAward(m.cfg.ShinyMultiplier)
		m.awardPoints(a.Channel, a.UserID, award)
		telemetry.RecordOutcome("correct")
		telemetry.SetActiveGames(m.store.ActiveCount())
		m.emit(domain.CorrectAnswerEvent{
			EventMeta:   m.eventMeta(a.ActionID(), a.Channel),
			GameID:      resolved.GameID,
			Question:    resolved.Question,
			UserID:      a.UserID,
			UserName:    a.UserName,
			AwardAmount: award,
			Special:     resolved.Special,
			Emote:       resolved.Emote,
			Streak:      streak,
			Super:       resolved.Super,
		})
		m.startNextQueuedSuper(a.Channel)

	case CheckIncorrect:
		if gs.Super {
			// Super games stay open until someone is right or time runs
			// out, but a toxic one still charges each wrong guesser.
			streak := 0
			if gs.Special == domain.SpecialToxic {
				streak = m.recordLoss(a.Channel, a.UserID)
			}
			m.emit(domain.IncorrectAnswerEvent{
				EventMeta: m.eventMeta(a.ActionID(), a.Channel),
				GameID:    gs.GameID,
				Question:  gs.Question,
				UserID:    a.UserID,
				UserName:  a.UserName,
				Special:   gs.Special,
				Emote:     gs.Emote,
				Streak:    streak,
				Super:     true,
			})
			return
		}
		resolved, ok := m.store.Resolve(gs.GameID)
		if !ok {
			return
		}
		m.cancelExpiry(gs.GameID)
		streak := m.recordLoss(a.Channel, a.UserID)
		telemetry.RecordOutcome("incorrect")
		telemetry.SetActiveGames(m.store.ActiveCount())
		m.emit(domain.IncorrectAnswerEvent{
			EventMeta: m.eventMeta(a.ActionID(), a.Channel),
			GameID:    resolved.GameID,
			Question:  resolved.Question,
			UserID:    a.UserID,
			UserName:  a.UserName,
			Special:   resolved.Special,
			Emote:     resolved.Emote,
			Streak:    streak,
			Terminal:  true,
		})
		m.startNextQueuedSuper(a.Channel)
	}
}

func (m *GameMachine) handleExpire(channel string, a domain.ExpireAction) {
	// Resolve is the fencing check: a late fire against an already
	// resolved game finds nothing and is a no-op.
	gs, ok := m.store.Resolve(a.GameID)
	if !ok {
		return
	}
	m.cancelExpiry(a.GameID)
	telemetry.RecordOutcome("expired")
	telemetry.SetActiveGames(m.store.ActiveCount())
	m.emit(domain.GameExpiredEvent{
		EventMeta: m.eventMeta(a.ActionID(), channel),
		GameID:    gs.GameID,
		Question:  gs.Question,
		Emote:     gs.Emote,
		Super:     gs.Super,
	})
	m.startNextQueuedSuper(channel)
}

func (m *GameMachine) handleClearChannel(a domain.ClearChannelAction) {
	gs, dropped := m.store.Clear(a.Channel)
	if gs != nil {
		m.cancelExpiry(gs.GameID)
		telemetry.RecordOutcome("cleared")
	}
	telemetry.SetActiveGames(m.store.ActiveCount())
	m.emit(domain.ChannelClearedEvent{
		EventMeta:    m.eventMeta(a.ActionID(), a.Channel),
		DroppedGames: dropped,
	})
}

// startNextQueuedSuper starts queued super games until one sticks or
// the queue drains.
func (m *GameMachine) startNextQueuedSuper(channel string) {
	for {
		next, ok := m.store.DequeueSuper(channel)
		if !ok {
			return
		}
		if m.startGame(gameSpec{
			actionID:    next.actionID,
			channel:     channel,
			awardAmount: next.awardAmount,
			ttlSeconds:  next.ttlSeconds,
			super:       true,
		}) {
			return
		}
	}
}

func (m *GameMachine) armExpiry(gameID string, ttl time.Duration) {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	m.timers[gameID] = time.AfterFunc(ttl, func() {
		m.Submit(domain.ExpireAction{
			ActionMeta: domain.ActionMeta{ID: m.newID()},
			GameID:     gameID,
		})
	})
}

func (m *GameMachine) cancelExpiry(gameID string) {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	if t, ok := m.timers[gameID]; ok {
		t.Stop()
		delete(m.timers, gameID)
	}
}

// recordWin reports the new streak, or zero when the ledger is down.
// A ledger failure never blocks resolution.
func (m *GameMachine) recordWin(channel, userID string) int {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.LedgerTimeout)
	defer cancel()
	streak, err := m.ledger.RecordWin(ctx, channel, userID)
	if err != nil {
		m.log.Errorw("score ledger write failed", "channel", channel, "userId", userID, "err", err)
		return 0
	}
	return streak
}

// awardPoints pays out through the sink. A zero award (toxic games)
// pays nothing; a sink failure is logged and never blocks resolution.
func (m *GameMachine) awardPoints(channel, userID string, amount int) {
	if m.awards == nil || amount == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.LedgerTimeout)
	defer cancel()
	if err := m.awards.AwardPoints(ctx, channel, userID, amount); err != nil {
		m.log.Errorw("award payout failed", "channel", channel, "userId", userID, "amount", amount, "err", err)
	}
}

func (m *GameMachine) recordLoss(channel, userID string) int {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.LedgerTimeout)
	defer cancel()
	streak, err := m.ledger.RecordLoss(ctx, channel, userID)
	if err != nil {
		m.log.Errorw("score ledger write failed", "channel", channel, "userId", userID, "err", err)
		return 0
	}
	return streak
}

func (m *GameMachine) eventMeta(actionID, channel string) domain.EventMeta {
	return domain.EventMeta{
		ID:       m.newID(),
		ActionID: actionID,
		Channel:  channel,
	}
}
