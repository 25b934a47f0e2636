package models

import (
	"time"

	"github.com/google/uuid"
)

type ParticipantStatus string

const (
	StatusJoined ParticipantStatus = "joined"
	StatusLeft   ParticipantStatus = "left"
)

// Profile is the display identity supplied by the client on join.
type Profile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Participant is one live connection inside a room. A reconnecting user gets
// a fresh connection identity; continuity across reconnects is not tracked.
type Participant struct {
	ConnID     uuid.UUID         `json:"connId"`
	Name       string            `json:"name"`
	Avatar     string            `json:"avatar"`
	IsMuted    bool              `json:"isMuted"`
	IsVideoOff bool              `json:"isVideoOff"`
	IsHost     bool              `json:"isHost"`
	JoinedAt   time.Time         `json:"joinedAt"`
	Status     ParticipantStatus `json:"status"`
}

func NewParticipant(connID uuid.UUID, profile Profile) *Participant {
	return &Participant{
		ConnID:   connID,
		Name:     profile.Name,
		Avatar:   profile.Avatar,
		JoinedAt: time.Now(),
		Status:   StatusJoined,
	}
}

// ParticipantPatch is a partial update applied by the registry. Identity and
// host flag are never patchable.
type ParticipantPatch struct {
	IsMuted    *bool
	IsVideoOff *bool
}
