package models

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

// Sender is captured at send time, not looked up live, so a message keeps its
// author's name even after the author leaves.
type Sender struct {
	ConnID uuid.UUID `json:"connId"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
}

// ChatMessage is one entry in a room's ordered log. Reactions map an emoji to
// the identities that reacted; an emoji key is never present with an empty
// list.
type ChatMessage struct {
	ID        uuid.UUID              `json:"id"`
	RoomID    string                 `json:"roomId"`
	Type      MessageType            `json:"type"`
	Body      string                 `json:"body"`
	Sender    Sender                 `json:"sender"`
	CreatedAt time.Time              `json:"createdAt"`
	EditedAt  *time.Time             `json:"editedAt,omitempty"`
	ReplyTo   *uuid.UUID             `json:"replyTo,omitempty"`
	Reactions map[string][]uuid.UUID `json:"reactions"`
}

func NewChatMessage(roomID string, msgType MessageType, body string, sender Sender, replyTo *uuid.UUID) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.New(),
		RoomID:    roomID,
		Type:      msgType,
		Body:      body,
		Sender:    sender,
		CreatedAt: time.Now(),
		ReplyTo:   replyTo,
		Reactions: make(map[string][]uuid.UUID),
	}
}

type ChatStats struct {
	Total         int           `json:"total"`
	SentInLastDay int           `json:"sentInLastDay"`
	TopSenders    []SenderCount `json:"topSenders"`
}

type SenderCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
