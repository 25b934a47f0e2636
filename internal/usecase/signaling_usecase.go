package usecase

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/averix/teamsync/internal/domain/events"
	"github.com/averix/teamsync/internal/infra/adapters/memory"
)

// SignalingUsecase is a stateless pairwise forwarder for connection
// negotiation messages (offer, answer, ice-candidate). The payload is never
// inspected, stored, or validated against room membership; the browser peer
// negotiation logic owns the correctness of the pairing. A message addressed
// to a connection without a live socket is dropped silently.
type SignalingUsecase interface {
	Relay(senderID, targetID uuid.UUID, eventType string, payload json.RawMessage) error
}

type signalingUsecase struct {
	connRepo memory.ConnectionRepository
}

func NewSignalingUsecase(connRepo memory.ConnectionRepository) SignalingUsecase {
	return &signalingUsecase{connRepo: connRepo}
}

func (s *signalingUsecase) Relay(senderID, targetID uuid.UUID, eventType string, payload json.RawMessage) error {
	msg, err := events.Envelope(eventType, events.SignalForwardEvent{
		Payload:  payload,
		SenderID: senderID,
	})
	if err != nil {
		return err
	}

	s.connRepo.Write(targetID, msg)

	return nil
}
