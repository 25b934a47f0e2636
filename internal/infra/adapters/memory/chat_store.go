package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/averix/teamsync/internal/application/metric"
	"github.com/averix/teamsync/internal/domain/models"
)

// ChatStore keeps the per-room ordered message log, reaction sets and typing
// indicators. It is independent of the room registry: appending to a room the
// registry has never seen (or already destroyed) always succeeds. The session
// layer drops a room's chat state together with the room itself.
type ChatStore interface {
	Send(roomID string, msgType models.MessageType, body string, sender models.Sender, replyTo *uuid.UUID) *models.ChatMessage
	History(roomID string, limit, offset int) []*models.ChatMessage

	AddReaction(roomID string, messageID, connID uuid.UUID, emoji string) (*models.ChatMessage, bool)
	RemoveReaction(roomID string, messageID, connID uuid.UUID, emoji string) (*models.ChatMessage, bool)

	SetTyping(roomID string, connID uuid.UUID, isTyping bool) []uuid.UUID

	Delete(roomID string, messageID, connID uuid.UUID) (*models.ChatMessage, bool)
	Edit(roomID string, messageID, connID uuid.UUID, newBody string) (*models.ChatMessage, bool)

	Search(roomID, query string, limit int) []*models.ChatMessage
	Stats(roomID string) models.ChatStats

	PruneOlderThan(roomID string, maxAge time.Duration) int
	PruneAll(maxAge time.Duration) int

	DropRoom(roomID string)
}

const topSenderLimit = 3

type chatEntry struct {
	mu       sync.Mutex
	messages []*models.ChatMessage
	typing   map[uuid.UUID]struct{}
}

type chatStore struct {
	mu    sync.RWMutex
	rooms map[string]*chatEntry
}

func NewChatStore() ChatStore {
	return &chatStore{rooms: make(map[string]*chatEntry)}
}

func (s *chatStore) Send(roomID string, msgType models.MessageType, body string, sender models.Sender, replyTo *uuid.UUID) *models.ChatMessage {
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	entry := s.entryOrCreate(roomID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	msg := models.NewChatMessage(roomID, msgType, body, sender, replyTo)
	entry.messages = append(entry.messages, msg)

	metric.RecordChatMessage()

	return copyMessage(msg)
}

// History returns messages most-recent-first: the trailing slice of the log
// selected by offset/limit, then reversed.
func (s *chatStore) History(roomID string, limit, offset int) []*models.ChatMessage {
	entry, ok := s.entry(roomID)
	if !ok {
		return []*models.ChatMessage{}
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	total := len(entry.messages)
	if limit <= 0 || offset < 0 || offset >= total {
		return []*models.ChatMessage{}
	}

	end := total - offset
	start := end - limit
	if start < 0 {
		start = 0
	}

	page := make([]*models.ChatMessage, 0, end-start)
	for i := end - 1; i >= start; i-- {
		page = append(page, copyMessage(entry.messages[i]))
	}

	return page
}

// AddReaction is an idempotent set insert: reacting twice with the same emoji
// leaves the set unchanged.
func (s *chatStore) AddReaction(roomID string, messageID, connID uuid.UUID, emoji string) (*models.ChatMessage, bool) {
	return s.withMessage(roomID, messageID, func(msg *models.ChatMessage) bool {
		if !lo.Contains(msg.Reactions[emoji], connID) {
			msg.Reactions[emoji] = append(msg.Reactions[emoji], connID)
		}
		return true
	})
}

// RemoveReaction is a no-op for a reaction that was never added. An emoji key
// whose set becomes empty is pruned immediately.
func (s *chatStore) RemoveReaction(roomID string, messageID, connID uuid.UUID, emoji string) (*models.ChatMessage, bool) {
	return s.withMessage(roomID, messageID, func(msg *models.ChatMessage) bool {
		set, ok := msg.Reactions[emoji]
		if !ok {
			return true
		}

		set = lo.Without(set, connID)
		if len(set) == 0 {
			delete(msg.Reactions, emoji)
		} else {
			msg.Reactions[emoji] = set
		}
		return true
	})
}

// SetTyping updates the typing set and returns everyone currently typing,
// including the actor; the gateway excludes the actor before broadcasting.
func (s *chatStore) SetTyping(roomID string, connID uuid.UUID, isTyping bool) []uuid.UUID {
	var entry *chatEntry
	if isTyping {
		entry = s.entryOrCreate(roomID)
	} else {
		// A removal must not allocate chat state the room never had;
		// such an entry would outlive any DropRoom.
		var ok bool
		entry, ok = s.entry(roomID)
		if !ok {
			return []uuid.UUID{}
		}
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if isTyping {
		entry.typing[connID] = struct{}{}
	} else {
		delete(entry.typing, connID)
	}

	return lo.Keys(entry.typing)
}

// Delete removes a message. Only the original sender may delete; anyone
// else's attempt reports not-found without revealing why.
func (s *chatStore) Delete(roomID string, messageID, connID uuid.UUID) (*models.ChatMessage, bool) {
	entry, ok := s.entry(roomID)
	if !ok {
		return nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	for i, msg := range entry.messages {
		if msg.ID == messageID {
			if msg.Sender.ConnID != connID {
				return nil, false
			}

			entry.messages = append(entry.messages[:i], entry.messages[i+1:]...)
			return copyMessage(msg), true
		}
	}

	return nil, false
}

// Edit replaces a message body and stamps the edit time. Same authorization
// rule as Delete.
func (s *chatStore) Edit(roomID string, messageID, connID uuid.UUID, newBody string) (*models.ChatMessage, bool) {
	return s.withMessage(roomID, messageID, func(msg *models.ChatMessage) bool {
		if msg.Sender.ConnID != connID {
			return false
		}

		now := time.Now()
		msg.Body = newBody
		msg.EditedAt = &now
		return true
	})
}

// Search matches a case-insensitive substring against message bodies and
// sender display names, returning the most recent limit matches first.
func (s *chatStore) Search(roomID, query string, limit int) []*models.ChatMessage {
	entry, ok := s.entry(roomID)
	if !ok {
		return []*models.ChatMessage{}
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if limit <= 0 {
		return []*models.ChatMessage{}
	}

	needle := strings.ToLower(query)

	matches := make([]*models.ChatMessage, 0, limit)
	for i := len(entry.messages) - 1; i >= 0 && len(matches) < limit; i-- {
		msg := entry.messages[i]
		if strings.Contains(strings.ToLower(msg.Body), needle) ||
			strings.Contains(strings.ToLower(msg.Sender.Name), needle) {
			matches = append(matches, copyMessage(msg))
		}
	}

	return matches
}

func (s *chatStore) Stats(roomID string) models.ChatStats {
	entry, ok := s.entry(roomID)
	if !ok {
		return models.ChatStats{TopSenders: []models.SenderCount{}}
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	dayAgo := time.Now().Add(-24 * time.Hour)
	lastDay := lo.CountBy(entry.messages, func(msg *models.ChatMessage) bool {
		return msg.CreatedAt.After(dayAgo)
	})

	counts := lo.CountValuesBy(entry.messages, func(msg *models.ChatMessage) string {
		return msg.Sender.Name
	})

	senders := make([]models.SenderCount, 0, len(counts))
	for name, count := range counts {
		senders = append(senders, models.SenderCount{Name: name, Count: count})
	}
	sort.Slice(senders, func(i, j int) bool {
		if senders[i].Count != senders[j].Count {
			return senders[i].Count > senders[j].Count
		}
		return senders[i].Name < senders[j].Name
	})
	if len(senders) > topSenderLimit {
		senders = senders[:topSenderLimit]
	}

	return models.ChatStats{
		Total:         len(entry.messages),
		SentInLastDay: lastDay,
		TopSenders:    senders,
	}
}

func (s *chatStore) PruneOlderThan(roomID string, maxAge time.Duration) int {
	entry, ok := s.entry(roomID)
	if !ok {
		return 0
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)

	kept := lo.Filter(entry.messages, func(msg *models.ChatMessage, _ int) bool {
		return msg.CreatedAt.After(cutoff)
	})

	removed := len(entry.messages) - len(kept)
	entry.messages = kept

	return removed
}

func (s *chatStore) PruneAll(maxAge time.Duration) int {
	s.mu.RLock()
	roomIDs := lo.Keys(s.rooms)
	s.mu.RUnlock()

	removed := 0
	for _, roomID := range roomIDs {
		removed += s.PruneOlderThan(roomID, maxAge)
	}

	return removed
}

// DropRoom discards a room's log and typing set, called when the registry
// destroys the room.
func (s *chatStore) DropRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, roomID)
}

func (s *chatStore) entry(roomID string) (*chatEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.rooms[roomID]
	return entry, ok
}

func (s *chatStore) entryOrCreate(roomID string) *chatEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.rooms[roomID]
	if !ok {
		entry = &chatEntry{typing: make(map[uuid.UUID]struct{})}
		s.rooms[roomID] = entry
	}

	return entry
}

// withMessage runs fn on the message under the room lock and returns a copy
// if fn reports success.
func (s *chatStore) withMessage(roomID string, messageID uuid.UUID, fn func(*models.ChatMessage) bool) (*models.ChatMessage, bool) {
	entry, ok := s.entry(roomID)
	if !ok {
		return nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	for _, msg := range entry.messages {
		if msg.ID == messageID {
			if !fn(msg) {
				return nil, false
			}
			return copyMessage(msg), true
		}
	}

	return nil, false
}

func copyMessage(msg *models.ChatMessage) *models.ChatMessage {
	cp := *msg

	cp.Reactions = make(map[string][]uuid.UUID, len(msg.Reactions))
	for emoji, set := range msg.Reactions {
		cp.Reactions[emoji] = append([]uuid.UUID(nil), set...)
	}

	return &cp
}
