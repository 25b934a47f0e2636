package models

import (
	"time"

	"github.com/google/uuid"
)

type RoomSettings struct {
	MaxParticipants    int  `json:"maxParticipants"`
	ScreenShareEnabled bool `json:"screenShareEnabled"`
	ChatEnabled        bool `json:"chatEnabled"`
}

// Room is the live state of a session. It exists only while at least one
// participant is present and is owned exclusively by the room registry.
type Room struct {
	ID           string                     `json:"id"`
	Participants map[uuid.UUID]*Participant `json:"-"`
	Settings     RoomSettings               `json:"settings"`
	CreatedAt    time.Time                  `json:"createdAt"`
}

func NewRoom(id string, settings RoomSettings) *Room {
	return &Room{
		ID:           id,
		Participants: make(map[uuid.UUID]*Participant),
		Settings:     settings,
		CreatedAt:    time.Now(),
	}
}

// RoomInfo is the external view of a room, safe to hand outside the registry.
type RoomInfo struct {
	ID               string       `json:"id"`
	ParticipantCount int          `json:"participantCount"`
	Settings         RoomSettings `json:"settings"`
	CreatedAt        time.Time    `json:"createdAt"`
}

type RoomStats struct {
	ParticipantCount int            `json:"participantCount"`
	Duration         time.Duration  `json:"duration"`
	Participants     []*Participant `json:"participants"`
	Settings         RoomSettings   `json:"settings"`
}
