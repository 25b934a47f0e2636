package usecase

import (
	"github.com/google/uuid"

	"github.com/averix/teamsync/internal/domain/events"
	"github.com/averix/teamsync/internal/domain/models"
)

// Presence is a stateless policy layer: given the result of a registry
// mutation it decides which event to broadcast and to whom. Recipients are
// always the room members excluding the actor.
type Presence struct{}

func (Presence) Joined(participant *models.Participant, others []*models.Participant) (events.Message, []uuid.UUID, error) {
	msg, err := events.Envelope(events.TypeUserJoined, events.UserJoinedEvent{Participant: participant})
	if err != nil {
		return events.Message{}, nil, err
	}

	return msg, connIDs(others), nil
}

func (Presence) Left(participant *models.Participant, remaining []*models.Participant) (events.Message, []uuid.UUID, error) {
	msg, err := events.Envelope(events.TypeUserLeft, events.UserLeftEvent{
		UserID: participant.ConnID,
		Name:   participant.Name,
	})
	if err != nil {
		return events.Message{}, nil, err
	}

	return msg, connIDs(remaining), nil
}

func (Presence) AudioToggled(participant *models.Participant, members []*models.Participant) (events.Message, []uuid.UUID, error) {
	msg, err := events.Envelope(events.TypeUserAudioToggled, events.AudioToggledEvent{
		UserID:  participant.ConnID,
		IsMuted: participant.IsMuted,
	})
	if err != nil {
		return events.Message{}, nil, err
	}

	return msg, connIDsExcluding(members, participant.ConnID), nil
}

func (Presence) VideoToggled(participant *models.Participant, members []*models.Participant) (events.Message, []uuid.UUID, error) {
	msg, err := events.Envelope(events.TypeUserVideoToggled, events.VideoToggledEvent{
		UserID:     participant.ConnID,
		IsVideoOff: participant.IsVideoOff,
	})
	if err != nil {
		return events.Message{}, nil, err
	}

	return msg, connIDsExcluding(members, participant.ConnID), nil
}

func connIDs(participants []*models.Participant) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ConnID)
	}

	return ids
}

func connIDsExcluding(participants []*models.Participant, exclude uuid.UUID) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		if p.ConnID == exclude {
			continue
		}
		ids = append(ids, p.ConnID)
	}

	return ids
}
