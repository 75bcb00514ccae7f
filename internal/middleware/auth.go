package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gyansetu/internal/config"
	"github.com/example/gyansetu/internal/models"
	"github.com/example/gyansetu/internal/services"
	"github.com/example/gyansetu/internal/utils"
)

// SessionCookie is the HTTP-only cookie carrying the opaque session token.
const SessionCookie = "session_token"

const (
	userContextKey  = "currentUser"
	tokenContextKey = "sessionToken"
)

// ResolveSessionToken extracts the opaque session token from the request:
// the cookie first, then an Authorization bearer carrying the signed JWT
// envelope minted at login.
func ResolveSessionToken(c *fiber.Ctx, cfg *config.Config) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}

	token, err := utils.ParseToken(cfg.JWTSecret, strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return ""
	}
	return token
}

// RequireAuth resolves the session and loads the user snapshot into the
// request context; a missing or stale session fails with 401.
func RequireAuth(sessions *services.Sessions, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ResolveSessionToken(c, cfg)
		if token == "" {
			return services.ErrUnauthenticated
		}

		session, ok := sessions.Get(token)
		if !ok {
			return services.ErrUnauthenticated
		}

		c.Locals(userContextKey, session.User)
		c.Locals(tokenContextKey, session.Token)
		return c.Next()
	}
}

// RequireRole gates a route on the authenticated user's role. It must run
// after RequireAuth.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return services.ErrUnauthenticated
		}
		if user.Role != role {
			return services.ErrForbidden
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user loaded by RequireAuth.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(userContextKey).(models.User)
	return user, ok
}

// SessionToken returns the opaque token of the current session.
func SessionToken(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenContextKey).(string)
	return token
}
