package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/averix/teamsync/internal/application/config"
	"github.com/averix/teamsync/internal/application/constant"
	"github.com/averix/teamsync/internal/application/metric"
	"github.com/averix/teamsync/internal/domain/events"
	"github.com/averix/teamsync/internal/infra/adapters/memory"
	"github.com/averix/teamsync/internal/infra/appctx"
	"github.com/averix/teamsync/internal/usecase"
)

// WebSocketHandler is the single entry point of the real-time gateway. Each
// connection gets a fresh identity; a reconnecting user is a new participant.
type WebSocketHandler struct {
	upgrader *websocket.Upgrader
	validate *validator.Validate

	sessionUsecase   usecase.SessionUsecase
	signalingUsecase usecase.SignalingUsecase
	chatUsecase      usecase.ChatUsecase

	connRepo memory.ConnectionRepository
}

func NewWebSocketHandler(
	cfg *config.Config,
	sessionUsecase usecase.SessionUsecase,
	signalingUsecase usecase.SignalingUsecase,
	chatUsecase usecase.ChatUsecase,
	connRepo memory.ConnectionRepository,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		validate:         validator.New(),
		sessionUsecase:   sessionUsecase,
		signalingUsecase: signalingUsecase,
		chatUsecase:      chatUsecase,
		connRepo:         connRepo,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}
	defer ws.Close()

	connID := uuid.New()

	attrs := []any{slog.Any(constant.ConnID, connID)}
	if userID, ok := appctx.UserID(c.Request().Context()); ok {
		attrs = append(attrs, slog.Any(constant.UserID, userID))
	}
	slog.Info("client connected to websocket", attrs...)

	h.connRepo.Add(connID, ws)
	defer h.connRepo.Remove(connID)

	err = ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	if err != nil {
		return err
	}
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				// Pings go through the repository so they share the
				// per-connection write mutex with broadcasts.
				if err := h.connRepo.Ping(connID); err != nil {
					return
				}
			case <-c.Request().Context().Done():
				return
			}
		}
	}()

	for {
		select {
		case <-c.Request().Context().Done():
			h.sessionUsecase.HandleDisconnect(connID)
			return nil
		default:
			_, msg, err := ws.ReadMessage()
			if err != nil {
				h.logWebsocketError(connID, err)

				// Cleanup runs synchronously with the disconnect so no
				// stale participant is observable afterwards.
				h.sessionUsecase.HandleDisconnect(connID)

				return nil
			}

			inbound := new(events.Message)

			if err = json.Unmarshal(msg, &inbound); err != nil {
				slog.Error("unmarshal websocket message", slog.Any(constant.Error, err))

				continue
			}

			metric.RecordEvent(inbound.Type)

			if err = h.handleMessage(connID, inbound); err != nil {
				slog.Error(
					"handle message",
					slog.Any(constant.Error, err),
					slog.String(constant.EventType, inbound.Type),
					slog.Any(constant.ConnID, connID),
				)
			}
		}
	}
}

func (h *WebSocketHandler) handleMessage(connID uuid.UUID, msg *events.Message) error {
	switch msg.Type {
	case events.TypeJoinRoom:
		var event events.JoinRoomEvent
		if err := h.decode(connID, msg.Data, &event); err != nil {
			return nil
		}

		return h.sessionUsecase.HandleJoin(connID, event)

	case events.TypeOffer, events.TypeAnswer, events.TypeIceCandidate:
		var event events.SignalEvent
		if err := h.decode(connID, msg.Data, &event); err != nil {
			return nil
		}

		return h.signalingUsecase.Relay(connID, event.TargetID, msg.Type, msg.Data)

	case events.TypeToggleAudio:
		var event events.ToggleAudioEvent
		if err := h.decode(connID, msg.Data, &event); err != nil {
			return nil
		}

		return h.sessionUsecase.HandleToggleAudio(connID, event)

	case events.TypeToggleVideo:
		var event events.ToggleVideoEvent
		if err := h.decode(connID, msg.Data, &event); err != nil {
			return nil
		}

		return h.sessionUsecase.HandleToggleVideo(connID, event)

	case events.TypeSendMessage:
		var event events.SendMessageEvent
		if err := h.decode(connID, msg.Data, &event); err != nil {
			return nil
		}

		return h.chatUsecase.HandleSendMessage(connID, event)

	case events.TypeEditMessage:
		var event events.EditMessageEvent
		if err := h.decode(connID, msg.Data, &event); err != nil {
			return nil
		}

		return h.chatUsecase.HandleEditMessage(connID, event)

	case events.TypeDeleteMessage:
		var event events.DeleteMessageEvent
		if err := h.decode(connID, msg.Data, &event); err != nil {
			return nil
		}

		return h.chatUsecase.HandleDeleteMessage(connID, event)

	case events.TypeAddReaction, events.TypeRemoveReaction:
		var event events.ReactionEvent
		if err := h.decode(connID, msg.Data, &event); err != nil {
			return nil
		}

		return h.chatUsecase.HandleReaction(connID, event, msg.Type == events.TypeAddReaction)

	case events.TypeTyping:
		var event events.TypingEvent
		if err := h.decode(connID, msg.Data, &event); err != nil {
			return nil
		}

		return h.chatUsecase.HandleTyping(connID, event)

	case events.TypeStartScreenShare, events.TypeStopScreenShare:
		var event events.ScreenShareEvent
		if err := h.decode(connID, msg.Data, &event); err != nil {
			return nil
		}

		return h.sessionUsecase.HandleScreenShare(connID, event, msg.Type == events.TypeStartScreenShare)

	case events.TypeLeaveRoom:
		return h.sessionUsecase.HandleLeave(connID)

	case events.TypePing:
		h.sessionUsecase.HandlePing(connID)
		return nil

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// decode unmarshals and validates an inbound payload. Invalid payloads are
// rejected at this boundary with an error event; core components never see
// them.
func (h *WebSocketHandler) decode(connID uuid.UUID, data json.RawMessage, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		h.writeError(connID, "malformed event payload")
		return err
	}

	if err := h.validate.Struct(target); err != nil {
		h.writeError(connID, "invalid event payload")
		return err
	}

	return nil
}

func (h *WebSocketHandler) writeError(connID uuid.UUID, message string) {
	msg, err := events.Envelope(events.TypeError, events.ErrorEvent{Message: message})
	if err != nil {
		return
	}

	h.connRepo.Write(connID, msg)
}

func (h *WebSocketHandler) logWebsocketError(connID uuid.UUID, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			slog.Info("client disconnected from websocket", slog.Any(constant.ConnID, connID))
		default:
			slog.Error("websocket close error", slog.Any(constant.ConnID, connID))
		}
	} else {
		slog.Error(
			"websocket read",
			slog.Any(constant.Error, err),
			slog.Any(constant.ConnID, connID),
		)
	}
}
