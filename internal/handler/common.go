package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

var errNoIdentity = errors.New("no authenticated identity in context")

// getUserID pulls the authenticated user's ID out of the Echo context.
// JWTAuth stores it as uint64; anything else means the middleware did
// not run and the request must be rejected.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := c.Get("user_id").(uint64)
	if !ok || id == 0 {
		return 0, errNoIdentity
	}
	return id, nil
}

// getRole pulls the authenticated user's role out of the Echo context.
func getRole(c echo.Context) (model.Role, error) {
	role, ok := c.Get("role").(model.Role)
	if !ok {
		return "", errNoIdentity
	}
	return role, nil
}
