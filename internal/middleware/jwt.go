package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // HTTP status codes for responses
	"strings"  // prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware

	"github.com/iliyamo/meeting-room-booking/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's claims into the request context.  The
// provided secret must match the one used when issuing access tokens.
// Handlers behind this middleware can read the authenticated identity
// via c.Get("user_id"), c.Get("username"), c.Get("role") and
// c.Get("email").
//
// A missing token yields 401 "authentication required"; a token that is
// expired, malformed or signed with the wrong key yields 401 "invalid
// token".  The distinction lets clients know when presenting credentials
// at all would have helped.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.VerifyToken(raw, secret)
			if err != nil {
				// Expired and invalid collapse to one response.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set("user_id", claims.ID)
			c.Set("username", claims.Username)
			c.Set("role", claims.Role)
			c.Set("email", claims.Email)
			return next(c)
		}
	}
}
