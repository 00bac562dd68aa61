package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/social-api/backend/internal/auth"
	"github.com/labstack/echo/v4"
)

// userIDKey is the echo.Context key holding the authenticated user's id.
const userIDKey = "userID"

// Auth checks for a valid bearer token and stores the resolved user id in the
// context. Token verification is delegated to tokens.
func Auth(tokens auth.TokenProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			userID, err := tokens.Verify(c.Request().Context(), parts[1])
			if err != nil {
				return err
			}

			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the id stored by Auth, or 0 when the request is anonymous.
func UserID(c echo.Context) uint {
	id, _ := c.Get(userIDKey).(uint)
	return id
}
