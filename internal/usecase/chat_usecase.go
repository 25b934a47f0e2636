package usecase

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/averix/teamsync/internal/application/config"
	"github.com/averix/teamsync/internal/application/constant"
	"github.com/averix/teamsync/internal/domain/events"
	"github.com/averix/teamsync/internal/domain/models"
	"github.com/averix/teamsync/internal/infra/adapters/memory"
)

// ChatUsecase handles the chat half of the real-time channel: messages,
// reactions, edits, deletions and typing indicators, with their room-wide
// fanout.
type ChatUsecase interface {
	HandleSendMessage(connID uuid.UUID, event events.SendMessageEvent) error
	HandleEditMessage(connID uuid.UUID, event events.EditMessageEvent) error
	HandleDeleteMessage(connID uuid.UUID, event events.DeleteMessageEvent) error

	HandleReaction(connID uuid.UUID, event events.ReactionEvent, added bool) error

	HandleTyping(connID uuid.UUID, event events.TypingEvent) error
}

type chatUsecase struct {
	cfg *config.ChatConfig

	registry  memory.RoomRegistry
	chatStore memory.ChatStore
	connRepo  memory.ConnectionRepository
}

func NewChatUsecase(
	cfg *config.ChatConfig,
	registry memory.RoomRegistry,
	chatStore memory.ChatStore,
	connRepo memory.ConnectionRepository,
) ChatUsecase {
	return &chatUsecase{
		cfg:       cfg,
		registry:  registry,
		chatStore: chatStore,
		connRepo:  connRepo,
	}
}

// HandleSendMessage appends the message and broadcasts new-message to the
// entire room, sender included. The store has no room-existence precondition;
// if the registry does not know the room, only the sender hears the echo.
func (c *chatUsecase) HandleSendMessage(connID uuid.UUID, event events.SendMessageEvent) error {
	body := strings.TrimSpace(event.Message.Body)
	if body == "" {
		c.writeError(connID, models.ErrEmptyMessage.Error())
		return nil
	}
	if len(body) > c.cfg.MaxMessageLength {
		c.writeError(connID, models.ErrMessageTooLong.Error())
		return nil
	}

	if info, ok := c.registry.GetRoomInfo(event.RoomID); ok && !info.Settings.ChatEnabled {
		c.writeError(connID, models.ErrChatDisabled.Error())
		return nil
	}

	sender := models.Sender{
		ConnID: connID,
		Name:   event.User.Name,
		Avatar: event.User.Avatar,
	}

	msg := c.chatStore.Send(event.RoomID, event.Message.Type, body, sender, event.Message.ReplyTo)

	return c.broadcastToRoom(event.RoomID, connID, events.TypeNewMessage, msg, true)
}

// HandleEditMessage rewrites a message body. Edits are validated like fresh
// messages, so an edit cannot grow a message past the configured cap.
func (c *chatUsecase) HandleEditMessage(connID uuid.UUID, event events.EditMessageEvent) error {
	body := strings.TrimSpace(event.Body)
	if body == "" {
		c.writeError(connID, models.ErrEmptyMessage.Error())
		return nil
	}
	if len(body) > c.cfg.MaxMessageLength {
		c.writeError(connID, models.ErrMessageTooLong.Error())
		return nil
	}

	msg, ok := c.chatStore.Edit(event.RoomID, event.MessageID, connID, body)
	if !ok {
		c.writeError(connID, models.ErrMessageNotFound.Error())
		return nil
	}

	return c.broadcastToRoom(event.RoomID, connID, events.TypeMessageEdited, msg, true)
}

func (c *chatUsecase) HandleDeleteMessage(connID uuid.UUID, event events.DeleteMessageEvent) error {
	msg, ok := c.chatStore.Delete(event.RoomID, event.MessageID, connID)
	if !ok {
		c.writeError(connID, models.ErrMessageNotFound.Error())
		return nil
	}

	return c.broadcastToRoom(event.RoomID, connID, events.TypeMessageDeleted, events.MessageDeletedEvent{MessageID: msg.ID}, true)
}

func (c *chatUsecase) HandleReaction(connID uuid.UUID, event events.ReactionEvent, added bool) error {
	var (
		msg *models.ChatMessage
		ok  bool
	)

	if added {
		msg, ok = c.chatStore.AddReaction(event.RoomID, event.MessageID, connID, event.Emoji)
	} else {
		msg, ok = c.chatStore.RemoveReaction(event.RoomID, event.MessageID, connID, event.Emoji)
	}

	if !ok {
		c.writeError(connID, models.ErrMessageNotFound.Error())
		return nil
	}

	eventType := events.TypeReactionAdded
	if !added {
		eventType = events.TypeReactionRemoved
	}

	update := events.ReactionUpdateEvent{
		MessageID: msg.ID,
		Emoji:     event.Emoji,
		UserID:    connID,
		Reactions: msg.Reactions,
	}

	return c.broadcastToRoom(event.RoomID, connID, eventType, update, true)
}

// HandleTyping updates the typing set and fans out typing-update. Each
// recipient gets the list with its own identity filtered out, so no
// connection ever sees itself typing.
func (c *chatUsecase) HandleTyping(connID uuid.UUID, event events.TypingEvent) error {
	typing := c.chatStore.SetTyping(event.RoomID, connID, event.IsTyping)

	members, ok := c.registry.Participants(event.RoomID)
	if !ok {
		return nil
	}

	for _, member := range members {
		if member.ConnID == connID {
			continue
		}

		visible := make([]uuid.UUID, 0, len(typing))
		for _, id := range typing {
			if id != member.ConnID {
				visible = append(visible, id)
			}
		}

		msg, err := events.Envelope(events.TypeTypingUpdate, events.TypingUpdateEvent{TypingUsers: visible})
		if err != nil {
			return err
		}

		c.connRepo.Write(member.ConnID, msg)
	}

	return nil
}

// broadcastToRoom writes an event to every member of the room. When the
// registry does not know the room and includeSender is set, the sender alone
// receives it.
func (c *chatUsecase) broadcastToRoom(roomID string, senderID uuid.UUID, eventType string, payload any, includeSender bool) error {
	msg, err := events.Envelope(eventType, payload)
	if err != nil {
		return err
	}

	members, ok := c.registry.Participants(roomID)
	if !ok {
		if includeSender {
			c.connRepo.Write(senderID, msg)
		}
		return nil
	}

	sent := false
	for _, member := range members {
		if member.ConnID == senderID {
			sent = true
		}
		c.connRepo.Write(member.ConnID, msg)
	}

	if includeSender && !sent {
		c.connRepo.Write(senderID, msg)
	}

	return nil
}

func (c *chatUsecase) writeError(connID uuid.UUID, message string) {
	msg, err := events.Envelope(events.TypeError, events.ErrorEvent{Message: message})
	if err != nil {
		slog.Error("marshal error event", slog.Any(constant.Error, err))
		return
	}

	c.connRepo.Write(connID, msg)
}
