package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/demfetch/internal/pkg/logging"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "dem_session"

	sessionLocal     = "session_id"
	maxSessionIDLen  = 128
	sessionCookieTTL = 30 * 24 * time.Hour
)

// SessionMiddleware identifies the browser tab or API client owning the
// current box. The id comes from the X-Session-ID header, then the
// dem_session cookie; a fresh UUID is issued when neither is present.
func SessionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(SessionHeader)
		if id == "" {
			id = c.Cookies(SessionCookie)
		}
		if id == "" || len(id) > maxSessionIDLen {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(sessionCookieTTL),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals(sessionLocal, id)
		c.Set(SessionHeader, id)

		ctx := c.UserContext()
		ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("session_id", id))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

func sessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionLocal).(string)
	return id
}
