package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/averix/teamsync/internal/application/metric"
	"github.com/averix/teamsync/internal/domain/models"
)

// RoomRegistry owns the set of live rooms and their participants. A room
// exists only while it has at least one participant; the last leave destroys
// it in the same operation.
type RoomRegistry interface {
	Join(roomID string, connID uuid.UUID, profile models.Profile) JoinResult
	Leave(roomID string, connID uuid.UUID) (LeaveResult, bool)
	LeaveByConn(connID uuid.UUID) (LeaveResult, bool)

	UpdateParticipant(roomID string, connID uuid.UUID, patch models.ParticipantPatch) (*models.Participant, bool)

	RoomOf(connID uuid.UUID) (string, bool)
	Participants(roomID string) ([]*models.Participant, bool)
	GetRoomInfo(roomID string) (models.RoomInfo, bool)
	GetAllRooms() []models.RoomInfo
	GetStats(roomID string) (models.RoomStats, bool)
}

type JoinResult struct {
	Room        models.RoomInfo
	Participant *models.Participant

	// Others is the roster as it was before the join, for the initial
	// room-participants snapshot and the user-joined fanout.
	Others []*models.Participant
}

type LeaveResult struct {
	Room        models.RoomInfo
	Participant *models.Participant
	Remaining   []*models.Participant

	// Destroyed reports that this leave removed the last participant.
	Destroyed bool
}

type roomEntry struct {
	mu   sync.Mutex
	room *models.Room
}

type roomRegistry struct {
	// mu guards the rooms map and the connection index. Participant state
	// inside a room is guarded by that room's own mutex, so independent
	// rooms never contend.
	mu        sync.RWMutex
	rooms     map[string]*roomEntry
	connIndex map[uuid.UUID]string

	defaults models.RoomSettings
}

func NewRoomRegistry(defaults models.RoomSettings) RoomRegistry {
	return &roomRegistry{
		rooms:     make(map[string]*roomEntry),
		connIndex: make(map[uuid.UUID]string),
		defaults:  defaults,
	}
}

// Join inserts the participant, creating the room on first use. The first
// occupant of an empty room becomes host. Capacity is a gateway policy; the
// registry itself never rejects a join.
func (r *roomRegistry) Join(roomID string, connID uuid.UUID, profile models.Profile) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rooms[roomID]
	if !ok {
		entry = &roomEntry{room: models.NewRoom(roomID, r.defaults)}
		r.rooms[roomID] = entry
		metric.IncrementLiveRooms()
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	participant := models.NewParticipant(connID, profile)
	participant.IsHost = len(entry.room.Participants) == 0

	others := snapshotParticipants(entry.room)

	entry.room.Participants[connID] = participant
	r.connIndex[connID] = roomID

	return JoinResult{
		Room:        roomInfoLocked(entry.room),
		Participant: copyParticipant(participant),
		Others:      others,
	}
}

func (r *roomRegistry) Leave(roomID string, connID uuid.UUID) (LeaveResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.leaveLocked(roomID, connID)
}

// LeaveByConn resolves the connection's room through the reverse index, so
// disconnect cleanup does not scan the registry.
func (r *roomRegistry) LeaveByConn(connID uuid.UUID) (LeaveResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.connIndex[connID]
	if !ok {
		return LeaveResult{}, false
	}

	return r.leaveLocked(roomID, connID)
}

func (r *roomRegistry) leaveLocked(roomID string, connID uuid.UUID) (LeaveResult, bool) {
	entry, ok := r.rooms[roomID]
	if !ok {
		return LeaveResult{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	participant, ok := entry.room.Participants[connID]
	if !ok {
		return LeaveResult{}, false
	}

	delete(entry.room.Participants, connID)
	delete(r.connIndex, connID)
	participant.Status = models.StatusLeft

	result := LeaveResult{
		Room:        roomInfoLocked(entry.room),
		Participant: copyParticipant(participant),
		Remaining:   snapshotParticipants(entry.room),
	}

	if len(entry.room.Participants) == 0 {
		delete(r.rooms, roomID)
		metric.DecrementLiveRooms()
		result.Destroyed = true
	}

	return result, true
}

// UpdateParticipant applies a partial update. Identity and host flag are
// never changed here.
func (r *roomRegistry) UpdateParticipant(roomID string, connID uuid.UUID, patch models.ParticipantPatch) (*models.Participant, bool) {
	entry, ok := r.entry(roomID)
	if !ok {
		return nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	participant, ok := entry.room.Participants[connID]
	if !ok {
		return nil, false
	}

	if patch.IsMuted != nil {
		participant.IsMuted = *patch.IsMuted
	}
	if patch.IsVideoOff != nil {
		participant.IsVideoOff = *patch.IsVideoOff
	}

	return copyParticipant(participant), true
}

func (r *roomRegistry) RoomOf(connID uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, ok := r.connIndex[connID]
	return roomID, ok
}

func (r *roomRegistry) Participants(roomID string) ([]*models.Participant, bool) {
	entry, ok := r.entry(roomID)
	if !ok {
		return nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// The entry may have been emptied, and the room destroyed, between
	// the index read and this lock; an empty room is never observable.
	if len(entry.room.Participants) == 0 {
		return nil, false
	}

	return snapshotParticipants(entry.room), true
}

func (r *roomRegistry) GetRoomInfo(roomID string) (models.RoomInfo, bool) {
	entry, ok := r.entry(roomID)
	if !ok {
		return models.RoomInfo{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if len(entry.room.Participants) == 0 {
		return models.RoomInfo{}, false
	}

	return roomInfoLocked(entry.room), true
}

func (r *roomRegistry) GetAllRooms() []models.RoomInfo {
	r.mu.RLock()
	entries := make([]*roomEntry, 0, len(r.rooms))
	for _, entry := range r.rooms {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	infos := make([]models.RoomInfo, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		// An entry emptied between the map snapshot and here is already
		// destroyed; an empty room is never observable.
		if len(entry.room.Participants) > 0 {
			infos = append(infos, roomInfoLocked(entry.room))
		}
		entry.mu.Unlock()
	}

	return infos
}

func (r *roomRegistry) GetStats(roomID string) (models.RoomStats, bool) {
	entry, ok := r.entry(roomID)
	if !ok {
		return models.RoomStats{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if len(entry.room.Participants) == 0 {
		return models.RoomStats{}, false
	}

	return models.RoomStats{
		ParticipantCount: len(entry.room.Participants),
		Duration:         time.Since(entry.room.CreatedAt),
		Participants:     snapshotParticipants(entry.room),
		Settings:         entry.room.Settings,
	}, true
}

func (r *roomRegistry) entry(roomID string) (*roomEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.rooms[roomID]
	return entry, ok
}

func roomInfoLocked(room *models.Room) models.RoomInfo {
	return models.RoomInfo{
		ID:               room.ID,
		ParticipantCount: len(room.Participants),
		Settings:         room.Settings,
		CreatedAt:        room.CreatedAt,
	}
}

func snapshotParticipants(room *models.Room) []*models.Participant {
	participants := make([]*models.Participant, 0, len(room.Participants))
	for _, p := range room.Participants {
		participants = append(participants, copyParticipant(p))
	}

	return participants
}

func copyParticipant(p *models.Participant) *models.Participant {
	cp := *p
	return &cp
}
