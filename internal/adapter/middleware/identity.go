package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Callers identify themselves with a 32-hex identity header. Authentication
// here is a capability check against configured identities, not a
// cryptographic protocol; the engine re-checks the oracle identity on
// oracle-only operations.
const HeaderCallerID = "Ax-Caller-Id"

const callerContextKey = "caller_id"

// RequireCaller rejects requests without a well-formed caller identity and
// stashes the identity in the request context.
func RequireCaller() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := strings.TrimSpace(c.Request().Header.Get(HeaderCallerID))
			if caller == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderCallerID})
			}
			if !reHex32.MatchString(caller) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid " + HeaderCallerID})
			}
			c.Set(callerContextKey, caller)
			return next(c)
		}
	}
}

// CallerID returns the identity set by RequireCaller, or "" if absent.
func CallerID(c echo.Context) string {
	v, _ := c.Get(callerContextKey).(string)
	return v
}
