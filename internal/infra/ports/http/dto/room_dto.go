package dto

import "github.com/averix/teamsync/internal/domain/models"

type RoomListResponse struct {
	Rooms []models.RoomInfo `json:"rooms"`
}

type ParticipantsResponse struct {
	Participants []*models.Participant `json:"participants"`
}

type RoomStatsResponse struct {
	ParticipantCount int                   `json:"participantCount"`
	DurationSeconds  int64                 `json:"durationSeconds"`
	Participants     []*models.Participant `json:"participants"`
	Settings         models.RoomSettings   `json:"settings"`
}

type HistoryResponse struct {
	Messages []*models.ChatMessage `json:"messages"`
}

type SearchResponse struct {
	Messages []*models.ChatMessage `json:"messages"`
}
