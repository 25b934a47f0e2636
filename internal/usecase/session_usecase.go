package usecase

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/averix/teamsync/internal/application/constant"
	"github.com/averix/teamsync/internal/domain/events"
	"github.com/averix/teamsync/internal/domain/models"
	"github.com/averix/teamsync/internal/infra/adapters/memory"
)

// SessionUsecase drives the per-connection room lifecycle: join (including
// room switches), leave, disconnect cleanup, media toggles and screen share.
type SessionUsecase interface {
	HandleJoin(connID uuid.UUID, event events.JoinRoomEvent) error
	HandleLeave(connID uuid.UUID) error
	HandleDisconnect(connID uuid.UUID)

	HandleToggleAudio(connID uuid.UUID, event events.ToggleAudioEvent) error
	HandleToggleVideo(connID uuid.UUID, event events.ToggleVideoEvent) error
	HandleScreenShare(connID uuid.UUID, event events.ScreenShareEvent, started bool) error

	HandlePing(connID uuid.UUID)
}

type sessionUsecase struct {
	registry  memory.RoomRegistry
	chatStore memory.ChatStore
	connRepo  memory.ConnectionRepository

	presence Presence
}

func NewSessionUsecase(
	registry memory.RoomRegistry,
	chatStore memory.ChatStore,
	connRepo memory.ConnectionRepository,
) SessionUsecase {
	return &sessionUsecase{
		registry:  registry,
		chatStore: chatStore,
		connRepo:  connRepo,
	}
}

// HandleJoin puts the connection into the requested room. A join while
// already joined is a room switch: the old room is left first. Capacity is
// enforced here, not in the registry.
func (s *sessionUsecase) HandleJoin(connID uuid.UUID, event events.JoinRoomEvent) error {
	// A join while already joined is a switch, even to the same room: the
	// old membership is torn down first.
	if _, ok := s.registry.RoomOf(connID); ok {
		s.leave(connID)
	}

	if info, ok := s.registry.GetRoomInfo(event.RoomID); ok &&
		info.ParticipantCount >= info.Settings.MaxParticipants {
		s.writeError(connID, models.ErrRoomFull.Error())
		return nil
	}

	result := s.registry.Join(event.RoomID, connID, event.Profile)

	roster, err := events.Envelope(events.TypeRoomParticipants, events.RoomParticipantsEvent{List: result.Others})
	if err != nil {
		return err
	}
	s.connRepo.Write(connID, roster)

	msg, recipients, err := s.presence.Joined(result.Participant, result.Others)
	if err != nil {
		return err
	}
	s.broadcast(recipients, msg)

	slog.Info(
		"participant joined",
		slog.Any(constant.ConnID, connID),
		slog.String(constant.RoomID, event.RoomID),
	)

	return nil
}

func (s *sessionUsecase) HandleLeave(connID uuid.UUID) error {
	s.leave(connID)
	return nil
}

// HandleDisconnect runs synchronously with the disconnect notification so no
// stale participant is observable afterwards.
func (s *sessionUsecase) HandleDisconnect(connID uuid.UUID) {
	s.leave(connID)
}

func (s *sessionUsecase) leave(connID uuid.UUID) {
	result, ok := s.registry.LeaveByConn(connID)
	if !ok {
		return
	}

	s.chatStore.SetTyping(result.Room.ID, connID, false)

	if result.Destroyed {
		s.chatStore.DropRoom(result.Room.ID)
	}

	msg, recipients, err := s.presence.Left(result.Participant, result.Remaining)
	if err != nil {
		slog.Error("marshal leave event", slog.Any(constant.Error, err))
		return
	}
	s.broadcast(recipients, msg)

	slog.Info(
		"participant left",
		slog.Any(constant.ConnID, connID),
		slog.String(constant.RoomID, result.Room.ID),
	)
}

func (s *sessionUsecase) HandleToggleAudio(connID uuid.UUID, event events.ToggleAudioEvent) error {
	participant, ok := s.registry.UpdateParticipant(event.RoomID, connID, models.ParticipantPatch{IsMuted: &event.IsMuted})
	if !ok {
		s.writeError(connID, models.ErrNotInRoom.Error())
		return nil
	}

	members, _ := s.registry.Participants(event.RoomID)

	msg, recipients, err := s.presence.AudioToggled(participant, members)
	if err != nil {
		return err
	}
	s.broadcast(recipients, msg)

	return nil
}

func (s *sessionUsecase) HandleToggleVideo(connID uuid.UUID, event events.ToggleVideoEvent) error {
	participant, ok := s.registry.UpdateParticipant(event.RoomID, connID, models.ParticipantPatch{IsVideoOff: &event.IsVideoOff})
	if !ok {
		s.writeError(connID, models.ErrNotInRoom.Error())
		return nil
	}

	members, _ := s.registry.Participants(event.RoomID)

	msg, recipients, err := s.presence.VideoToggled(participant, members)
	if err != nil {
		return err
	}
	s.broadcast(recipients, msg)

	return nil
}

func (s *sessionUsecase) HandleScreenShare(connID uuid.UUID, event events.ScreenShareEvent, started bool) error {
	info, ok := s.registry.GetRoomInfo(event.RoomID)
	if !ok {
		s.writeError(connID, models.ErrRoomNotFound.Error())
		return nil
	}

	if !info.Settings.ScreenShareEnabled {
		s.writeError(connID, models.ErrScreenShareDisabled.Error())
		return nil
	}

	eventType := events.TypeUserStartedScreenShare
	if !started {
		eventType = events.TypeUserStoppedScreenShare
	}

	msg, err := events.Envelope(eventType, events.ScreenShareUserEvent{UserID: connID})
	if err != nil {
		return err
	}

	members, _ := s.registry.Participants(event.RoomID)
	s.broadcast(connIDsExcluding(members, connID), msg)

	return nil
}

func (s *sessionUsecase) HandlePing(connID uuid.UUID) {
	s.connRepo.Write(connID, events.Message{Type: events.TypePong})
}

func (s *sessionUsecase) broadcast(recipients []uuid.UUID, msg events.Message) {
	for _, id := range recipients {
		s.connRepo.Write(id, msg)
	}
}

func (s *sessionUsecase) writeError(connID uuid.UUID, message string) {
	msg, err := events.Envelope(events.TypeError, events.ErrorEvent{Message: message})
	if err != nil {
		slog.Error("marshal error event", slog.Any(constant.Error, err))
		return
	}

	s.connRepo.Write(connID, msg)
}
