package usecase

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/averix/teamsync/internal/application/config"
	"github.com/averix/teamsync/internal/domain/events"
	"github.com/averix/teamsync/internal/domain/models"
	"github.com/averix/teamsync/internal/infra/adapters/memory"
)

// recordingConnRepo captures every write per connection, in order, instead of
// touching a socket.
type recordingConnRepo struct {
	mu     sync.Mutex
	writes map[uuid.UUID][]events.Message
}

func newRecordingConnRepo() *recordingConnRepo {
	return &recordingConnRepo{writes: make(map[uuid.UUID][]events.Message)}
}

func (r *recordingConnRepo) Add(uuid.UUID, *websocket.Conn) {}
func (r *recordingConnRepo) Remove(uuid.UUID)               {}
func (r *recordingConnRepo) Ping(uuid.UUID) error           { return nil }

func (r *recordingConnRepo) Write(connID uuid.UUID, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, ok := payload.(events.Message)
	if !ok {
		return
	}

	r.writes[connID] = append(r.writes[connID], msg)
}

func (r *recordingConnRepo) GetAllConnected() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(r.writes))
	for id := range r.writes {
		ids = append(ids, id)
	}

	return ids
}

func (r *recordingConnRepo) messagesFor(connID uuid.UUID) []events.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]events.Message(nil), r.writes[connID]...)
}

func (r *recordingConnRepo) lastOfType(t *testing.T, connID uuid.UUID, eventType string) events.Message {
	t.Helper()

	var found *events.Message
	for _, msg := range r.messagesFor(connID) {
		if msg.Type == eventType {
			m := msg
			found = &m
		}
	}

	require.NotNilf(t, found, "no %q event written to %s", eventType, connID)
	return *found
}

func (r *recordingConnRepo) countOfType(connID uuid.UUID, eventType string) int {
	count := 0
	for _, msg := range r.messagesFor(connID) {
		if msg.Type == eventType {
			count++
		}
	}

	return count
}

func decodeData[T any](t *testing.T, msg events.Message) T {
	t.Helper()

	var payload T
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	return payload
}

func testSettings() models.RoomSettings {
	return models.RoomSettings{
		MaxParticipants:    16,
		ScreenShareEnabled: true,
		ChatEnabled:        true,
	}
}

func testChatConfig() *config.ChatConfig {
	return &config.ChatConfig{MaxMessageLength: 4000}
}

type fixture struct {
	registry  memory.RoomRegistry
	chatStore memory.ChatStore
	connRepo  *recordingConnRepo

	session   SessionUsecase
	signaling SignalingUsecase
	chat      ChatUsecase
}

func newFixture(settings models.RoomSettings) *fixture {
	registry := memory.NewRoomRegistry(settings)
	chatStore := memory.NewChatStore()
	connRepo := newRecordingConnRepo()

	return &fixture{
		registry:  registry,
		chatStore: chatStore,
		connRepo:  connRepo,
		session:   NewSessionUsecase(registry, chatStore, connRepo),
		signaling: NewSignalingUsecase(connRepo),
		chat:      NewChatUsecase(testChatConfig(), registry, chatStore, connRepo),
	}
}
