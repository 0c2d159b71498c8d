package stubapi

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/advocaid/auth-client/pkg/jwt"
)

const currentUserKey = "currentUser"

// requireAuth guards the authenticated routes. Anything short of a valid,
// non-blacklisted bearer token answers 401, which the client treats as
// session expiry.
func (a *App) requireAuth(c *fiber.Ctx) error {
	token := stripBearer(c.Get("Authorization"))
	if token == "" {
		return unauthenticated(c)
	}

	var blacklisted string
	if err := a.cache.Get(c.Context(), blacklistKey(token), &blacklisted); err == nil {
		return unauthenticated(c)
	}

	claims, err := jwt.ValidateToken(token)
	if err != nil {
		return unauthenticated(c)
	}

	user, err := a.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		return unauthenticated(c)
	}

	c.Locals(currentUserKey, user)
	c.Locals("bearerToken", token)
	return c.Next()
}

func (a *App) currentUser(c *fiber.Ctx) *UserRecord {
	user, _ := c.Locals(currentUserKey).(*UserRecord)
	return user
}

func stripBearer(header string) string {
	header = strings.TrimSpace(header)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Unauthenticated",
	})
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}
