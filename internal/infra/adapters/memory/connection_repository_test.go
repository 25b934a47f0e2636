package memory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/averix/teamsync/internal/domain/events"
)

func TestConnectionRepository_WriteToUnknownConnIsSilent(t *testing.T) {
	req := require.New(t)

	repo := NewConnectionRepository()

	req.NotPanics(func() {
		repo.Write(uuid.New(), events.Message{Type: events.TypePong})
	})
	req.Empty(repo.GetAllConnected())
}

func TestConnectionRepository_PingUnknownConnReportsGone(t *testing.T) {
	req := require.New(t)

	repo := NewConnectionRepository()

	// Keepalive loops rely on this error to stop once the connection has
	// been removed.
	req.ErrorIs(repo.Ping(uuid.New()), ErrConnectionGone)
}

func TestConnectionRepository_RemoveUnknownConn(t *testing.T) {
	repo := NewConnectionRepository()
	require.NotPanics(t, func() { repo.Remove(uuid.New()) })
}
