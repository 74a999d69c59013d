package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade answers 426 to plain HTTP requests on websocket routes. It
// must be mounted after EnsurePlayerID.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if PlayerID(c) == "" {
			return fiber.ErrUnauthorized
		}
		return c.Next()
	}
}

// ConnPlayerID is PlayerID for an upgraded connection.
func ConnPlayerID(c *websocket.Conn) string {
	id, _ := c.Locals(PlayerIDKey).(string)
	return id
}
