package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// PlayerIDKey is the Locals key holding the caller's player id.
const PlayerIDKey = "playerID"

const maxPlayerIDLength = 64

// EnsurePlayerID resolves the caller's player id from the X-Player-ID header,
// falling back to the playerId query parameter used by browser websockets.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if PlayerID(c) != "" {
			return c.Next()
		}

		playerID := strings.TrimSpace(c.Get("X-Player-ID"))
		if playerID == "" {
			playerID = strings.TrimSpace(c.Query("playerId"))
		}

		switch {
		case playerID == "":
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "player id is required"})
		case len(playerID) > maxPlayerIDLength:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "player id is too long"})
		}

		// Header and query values alias the request buffer, which fasthttp
		// reuses; the id outlives the request as a seat and map key.
		c.Locals(PlayerIDKey, utils.CopyString(playerID))
		return c.Next()
	}
}

// PlayerID returns the id stored by EnsurePlayerID, or "".
func PlayerID(c *fiber.Ctx) string {
	id, _ := c.Locals(PlayerIDKey).(string)
	return id
}
