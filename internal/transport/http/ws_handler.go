package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trivia-game-service/internal/app"
	"trivia-game-service/internal/domain"
)

// WSHandler exposes the engine's action queue and event stream over a
// websocket, for dashboards and non-chat integrations.
type WSHandler struct {
	machine  *app.GameMachine
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(machine *app.GameMachine, log *zap.SugaredLogger) *WSHandler {
	return &WSHandler{
		machine: machine,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startGamePayload struct {
	Channel     string `json:"channel"`
	AwardAmount int    `json:"awardAmount"`
	TTLSeconds  int    `json:"ttlSeconds"`
	RequestedBy string `json:"requestedBy"`
}

type startSuperPayload struct {
	Channel string `json:"channel"`
	Count   int    `json:"count"`
}

type answerPayload struct {
	Channel string `json:"channel"`
	UserID  string `json:"userId"`
	Text    string `json:"text"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

var errUnsupportedMessage = errors.New("unsupported message type")

// eventPayload is the wire form of an engine event.
type eventPayload struct {
	Type        string `json:"type"`
	Channel     string `json:"channel"`
	EventID     string `json:"eventId"`
	ActionID    string `json:"actionId"`
	GameID      string `json:"gameId,omitempty"`
	Question    string `json:"question,omitempty"`
	UserID      string `json:"userId,omitempty"`
	UserName    string `json:"userName,omitempty"`
	AwardAmount int    `json:"awardAmount,omitempty"`
	Special     string `json:"special,omitempty"`
	Streak      int    `json:"streak,omitempty"`
	Super       bool   `json:"super,omitempty"`
}

// ServeWS upgrades the request and wires the connection into the game
// machine. The `channel` query param optionally filters the event feed.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	channelFilter := r.URL.Query().Get("channel")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	events, cancel := h.machine.Subscribe()
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debugw("ws write error", "err", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if channelFilter != "" && ev.EventChannel() != channelFilter {
					continue
				}
				select {
				case send <- outboundMessage{Type: "event", Payload: toWire(ev)}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.handleInbound(inbound); err != nil {
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handleInbound(inbound inboundMessage) error {
	switch inbound.Type {
	case "startGame":
		var p startGamePayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return err
		}
		h.machine.Submit(domain.StartNewGameAction{
			ActionMeta:  domain.ActionMeta{ID: uuid.NewString()},
			Channel:     p.Channel,
			AwardAmount: p.AwardAmount,
			TTLSeconds:  p.TTLSeconds,
			RequestedBy: p.RequestedBy,
		})
	case "startSuperGames":
		var p startSuperPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return err
		}
		h.machine.Submit(domain.StartSuperGamesAction{
			ActionMeta: domain.ActionMeta{ID: uuid.NewString()},
			Channel:    p.Channel,
			Count:      p.Count,
		})
	case "submitAnswer":
		var p answerPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return err
		}
		h.machine.Submit(domain.SubmitAnswerAction{
			ActionMeta: domain.ActionMeta{ID: uuid.NewString()},
			Channel:    p.Channel,
			UserID:     p.UserID,
			RawText:    p.Text,
		})
	default:
		return errUnsupportedMessage
	}
	return nil
}

func toWire(ev domain.Event) eventPayload {
	out := eventPayload{
		Type:    ev.EventType().String(),
		Channel: ev.EventChannel(),
		EventID: ev.EventID(),
	}
	switch e := ev.(type) {
	case domain.NewGameEvent:
		out.ActionID = e.ActionID
		out.GameID = e.GameID
		out.Question = e.Question.Text
		out.AwardAmount = e.AwardAmount
		out.Special = e.Special.String()
		out.Super = e.Super
	case domain.CorrectAnswerEvent:
		out.ActionID = e.ActionID
		out.GameID = e.GameID
		out.UserID = e.UserID
		out.UserName = e.UserName
		out.AwardAmount = e.AwardAmount
		out.Special = e.Special.String()
		out.Streak = e.Streak
		out.Super = e.Super
	case domain.IncorrectAnswerEvent:
		out.ActionID = e.ActionID
		out.GameID = e.GameID
		out.UserID = e.UserID
		out.UserName = e.UserName
		out.Streak = e.Streak
		out.Super = e.Super
	case domain.InvalidAnswerInputEvent:
		out.ActionID = e.ActionID
		out.GameID = e.GameID
		out.UserID = e.UserID
		out.UserName = e.UserName
	case domain.GameExpiredEvent:
		out.ActionID = e.ActionID
		out.GameID = e.GameID
		out.Super = e.Super
	}
	return out
}
