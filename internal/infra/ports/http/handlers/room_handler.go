package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/averix/teamsync/internal/domain/models"
	"github.com/averix/teamsync/internal/infra/adapters/memory"
	"github.com/averix/teamsync/internal/infra/ports/http/dto"
)

const (
	defaultHistoryLimit = 50
	defaultSearchLimit  = 20
)

// RoomHandler exposes the read-only query surface consumed by dashboards.
type RoomHandler struct {
	registry  memory.RoomRegistry
	chatStore memory.ChatStore
}

func NewRoomHandler(registry memory.RoomRegistry, chatStore memory.ChatStore) *RoomHandler {
	return &RoomHandler{
		registry:  registry,
		chatStore: chatStore,
	}
}

func (h *RoomHandler) ListRooms(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.RoomListResponse{Rooms: h.registry.GetAllRooms()})
}

func (h *RoomHandler) GetRoom(c echo.Context) error {
	info, ok := h.registry.GetRoomInfo(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": models.ErrRoomNotFound.Error()})
	}

	return c.JSON(http.StatusOK, info)
}

func (h *RoomHandler) GetParticipants(c echo.Context) error {
	participants, ok := h.registry.Participants(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": models.ErrRoomNotFound.Error()})
	}

	return c.JSON(http.StatusOK, dto.ParticipantsResponse{Participants: participants})
}

func (h *RoomHandler) GetRoomStats(c echo.Context) error {
	stats, ok := h.registry.GetStats(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": models.ErrRoomNotFound.Error()})
	}

	return c.JSON(http.StatusOK, dto.RoomStatsResponse{
		ParticipantCount: stats.ParticipantCount,
		DurationSeconds:  int64(stats.Duration.Seconds()),
		Participants:     stats.Participants,
		Settings:         stats.Settings,
	})
}

func (h *RoomHandler) GetHistory(c echo.Context) error {
	limit := queryInt(c, "limit", defaultHistoryLimit)
	offset := queryInt(c, "offset", 0)

	messages := h.chatStore.History(c.Param("id"), limit, offset)

	return c.JSON(http.StatusOK, dto.HistoryResponse{Messages: messages})
}

func (h *RoomHandler) SearchMessages(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	limit := queryInt(c, "limit", defaultSearchLimit)

	messages := h.chatStore.Search(c.Param("id"), query, limit)

	return c.JSON(http.StatusOK, dto.SearchResponse{Messages: messages})
}

func (h *RoomHandler) GetMessageStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.chatStore.Stats(c.Param("id")))
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}

	return value
}
