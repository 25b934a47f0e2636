package server

import (
	"github.com/labstack/echo/v4"

	"github.com/averix/teamsync/internal/application/config"
	"github.com/averix/teamsync/internal/infra/ports/http/handlers"
	"github.com/averix/teamsync/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	roomHandler *handlers.RoomHandler,
	iceHandler *handlers.IceHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		// Guests may connect; an identity is attached when a token is
		// present.
		api.GET("/ws", wsHandler.Handle, middleware.OptionalJWTMiddleware(cfg.JWTSecret))

		v1 := api.Group("/v1")
		v1.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		{
			v1.GET("/ice", iceHandler.IceServers)

			v1.GET("/rooms", roomHandler.ListRooms)
			v1.GET("/rooms/:id", roomHandler.GetRoom)
			v1.GET("/rooms/:id/participants", roomHandler.GetParticipants)
			v1.GET("/rooms/:id/stats", roomHandler.GetRoomStats)

			v1.GET("/rooms/:id/messages", roomHandler.GetHistory)
			v1.GET("/rooms/:id/messages/search", roomHandler.SearchMessages)
			v1.GET("/rooms/:id/messages/stats", roomHandler.GetMessageStats)
		}
	}

	return e
}
