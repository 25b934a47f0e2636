package memory

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/averix/teamsync/internal/application/constant"
	"github.com/averix/teamsync/internal/application/metric"
)

// ConnectionRepository tracks live WebSocket connections keyed by connection
// identity. Writes to one connection are serialized, which is what gives a
// single client in-order delivery of its broadcasts.
type ConnectionRepository interface {
	Add(uuid.UUID, *websocket.Conn)
	Remove(uuid.UUID)

	// Write sends a payload to one connection. Writing to an unknown
	// connection is a silent no-op.
	Write(uuid.UUID, any)

	// Ping sends a keepalive control frame under the same write mutex as
	// Write. Unlike Write it reports failure, so keepalive loops can stop
	// once the connection is gone.
	Ping(uuid.UUID) error

	GetAllConnected() []uuid.UUID
}

// ErrConnectionGone reports a ping to a connection no longer tracked.
var ErrConnectionGone = errors.New("connection is not registered")

type safeWS struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

type connectionRepository struct {
	// conns holds map[conn_id]*ws.conn
	conns map[uuid.UUID]*safeWS

	mu sync.RWMutex
}

func NewConnectionRepository() ConnectionRepository {
	return &connectionRepository{
		conns: make(map[uuid.UUID]*safeWS, 10),
	}
}

func (w *connectionRepository) Add(connID uuid.UUID, conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.conns[connID] = &safeWS{conn: conn}

	metric.IncrementWSActiveConnections()
}

func (w *connectionRepository) Remove(connID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.conns[connID]; exists {
		delete(w.conns, connID)

		metric.DecrementWSActiveConnections()
	}
}

func (w *connectionRepository) Write(connID uuid.UUID, payload any) {
	safews, ok := w.getSafeWS(connID)
	if !ok {
		return
	}

	safews.mu.Lock()
	defer safews.mu.Unlock()

	err := safews.conn.WriteJSON(payload)
	if err != nil {
		slog.Error(
			"write to websocket",
			slog.Any(constant.Error, err),
			slog.Any(constant.ConnID, connID),
		)
		return
	}
}

func (w *connectionRepository) Ping(connID uuid.UUID) error {
	safews, ok := w.getSafeWS(connID)
	if !ok {
		return ErrConnectionGone
	}

	safews.mu.Lock()
	defer safews.mu.Unlock()

	return safews.conn.WriteMessage(websocket.PingMessage, nil)
}

func (w *connectionRepository) getSafeWS(connID uuid.UUID) (*safeWS, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	conn, ok := w.conns[connID]
	return conn, ok
}

func (w *connectionRepository) GetAllConnected() []uuid.UUID {
	w.mu.RLock()
	defer w.mu.RUnlock()

	connIDs := make([]uuid.UUID, 0, len(w.conns))

	for connID := range w.conns {
		connIDs = append(connIDs, connID)
	}

	return connIDs
}
