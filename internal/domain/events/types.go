package events

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/averix/teamsync/internal/domain/models"
)

// Message is the envelope for every event on the real-time channel, in both
// directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound event types.
const (
	TypeJoinRoom         = "join-room"
	TypeOffer            = "offer"
	TypeAnswer           = "answer"
	TypeIceCandidate     = "ice-candidate"
	TypeToggleAudio      = "toggle-audio"
	TypeToggleVideo      = "toggle-video"
	TypeSendMessage      = "send-message"
	TypeAddReaction      = "add-reaction"
	TypeRemoveReaction   = "remove-reaction"
	TypeEditMessage      = "edit-message"
	TypeDeleteMessage    = "delete-message"
	TypeTyping           = "typing"
	TypeStartScreenShare = "start-screen-share"
	TypeStopScreenShare  = "stop-screen-share"
	TypeLeaveRoom        = "leave-room"
	TypePing             = "ping"
)

// Outbound event types.
const (
	TypeRoomParticipants       = "room-participants"
	TypeUserJoined             = "user-joined"
	TypeUserLeft               = "user-left"
	TypeUserAudioToggled       = "user-audio-toggled"
	TypeUserVideoToggled       = "user-video-toggled"
	TypeNewMessage             = "new-message"
	TypeMessageEdited          = "message-edited"
	TypeMessageDeleted         = "message-deleted"
	TypeReactionAdded          = "reaction-added"
	TypeReactionRemoved        = "reaction-removed"
	TypeTypingUpdate           = "typing-update"
	TypeUserStartedScreenShare = "user-started-screen-share"
	TypeUserStoppedScreenShare = "user-stopped-screen-share"
	TypePong                   = "pong"
	TypeError                  = "error"
)

// JoinRoomEvent is sent by a client to enter a room. A second join while
// already joined is treated as a room switch.
type JoinRoomEvent struct {
	RoomID  string         `json:"roomId" validate:"required"`
	Profile models.Profile `json:"profile"`
}

// SignalEvent carries the addressing of an offer, answer or ice-candidate.
// The payload itself is relayed verbatim and never inspected.
type SignalEvent struct {
	RoomID   string    `json:"roomId" validate:"required"`
	TargetID uuid.UUID `json:"targetId" validate:"required"`
}

type ToggleAudioEvent struct {
	RoomID  string `json:"roomId" validate:"required"`
	IsMuted bool   `json:"isMuted"`
}

type ToggleVideoEvent struct {
	RoomID     string `json:"roomId" validate:"required"`
	IsVideoOff bool   `json:"isVideoOff"`
}

type MessageInput struct {
	Type    models.MessageType `json:"type"`
	Body    string             `json:"body" validate:"required"`
	ReplyTo *uuid.UUID         `json:"replyTo,omitempty"`
}

type SendMessageEvent struct {
	RoomID  string         `json:"roomId" validate:"required"`
	Message MessageInput   `json:"message" validate:"required"`
	User    models.Profile `json:"user"`
}

type EditMessageEvent struct {
	RoomID    string    `json:"roomId" validate:"required"`
	MessageID uuid.UUID `json:"messageId" validate:"required"`
	Body      string    `json:"body" validate:"required"`
}

type DeleteMessageEvent struct {
	RoomID    string    `json:"roomId" validate:"required"`
	MessageID uuid.UUID `json:"messageId" validate:"required"`
}

type ReactionEvent struct {
	RoomID    string    `json:"roomId" validate:"required"`
	MessageID uuid.UUID `json:"messageId" validate:"required"`
	Emoji     string    `json:"emoji" validate:"required"`
}

type TypingEvent struct {
	RoomID   string `json:"roomId" validate:"required"`
	IsTyping bool   `json:"isTyping"`
}

type ScreenShareEvent struct {
	RoomID string `json:"roomId" validate:"required"`
}

// RoomParticipantsEvent is the roster returned to a joiner.
type RoomParticipantsEvent struct {
	List []*models.Participant `json:"list"`
}

type UserJoinedEvent struct {
	Participant *models.Participant `json:"participant"`
}

type UserLeftEvent struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
}

type AudioToggledEvent struct {
	UserID  uuid.UUID `json:"userId"`
	IsMuted bool      `json:"isMuted"`
}

type VideoToggledEvent struct {
	UserID     uuid.UUID `json:"userId"`
	IsVideoOff bool      `json:"isVideoOff"`
}

// SignalForwardEvent wraps a relayed signaling payload with the sender's
// connection identity.
type SignalForwardEvent struct {
	Payload  json.RawMessage `json:"payload"`
	SenderID uuid.UUID       `json:"senderId"`
}

type ReactionUpdateEvent struct {
	MessageID uuid.UUID              `json:"messageId"`
	Emoji     string                 `json:"emoji"`
	UserID    uuid.UUID              `json:"userId"`
	Reactions map[string][]uuid.UUID `json:"reactions"`
}

type MessageDeletedEvent struct {
	MessageID uuid.UUID `json:"messageId"`
}

type TypingUpdateEvent struct {
	TypingUsers []uuid.UUID `json:"typingUsers"`
}

type ScreenShareUserEvent struct {
	UserID uuid.UUID `json:"userId"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

// Envelope marshals a payload into a Message of the given type.
func Envelope(eventType string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{Type: eventType, Data: data}, nil
}
