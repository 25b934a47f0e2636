package usecase

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/averix/teamsync/internal/domain/events"
)

func TestSignalingUsecase_RelayPreservesPayload(t *testing.T) {
	req := require.New(t)

	connRepo := newRecordingConnRepo()
	relay := NewSignalingUsecase(connRepo)

	sender := uuid.New()
	target := uuid.New()

	payloads := map[string]string{
		events.TypeOffer:        `{"roomId":"demo","targetId":"` + target.String() + `","offer":{"type":"offer","sdp":"v=0\r\no=- 1 1 IN IP4 0.0.0.0"}}`,
		events.TypeAnswer:       `{"roomId":"demo","targetId":"` + target.String() + `","answer":{"type":"answer","sdp":"v=0"}}`,
		events.TypeIceCandidate: `{"roomId":"demo","targetId":"` + target.String() + `","candidate":{"candidate":"candidate:1 1 udp 2130706431 192.0.2.1 54321 typ host","sdpMid":"0"}}`,
	}

	for eventType, payload := range payloads {
		req.NoError(relay.Relay(sender, target, eventType, json.RawMessage(payload)))

		forward := decodeData[events.SignalForwardEvent](t, connRepo.lastOfType(t, target, eventType))
		req.Equal(sender, forward.SenderID)
		req.JSONEq(payload, string(forward.Payload))
	}

	// The sender never receives an echo of its own signal.
	req.Empty(connRepo.messagesFor(sender))
}

func TestSignalingUsecase_RelayDoesNotRequireMembership(t *testing.T) {
	req := require.New(t)

	connRepo := newRecordingConnRepo()
	relay := NewSignalingUsecase(connRepo)

	// Neither end has joined a room; the relay forwards anyway.
	sender := uuid.New()
	target := uuid.New()

	req.NoError(relay.Relay(sender, target, events.TypeOffer, json.RawMessage(`{"sdp":"v=0"}`)))
	req.Equal(1, connRepo.countOfType(target, events.TypeOffer))
}
