package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/meeting-room-booking/internal/config"
	"github.com/iliyamo/meeting-room-booking/internal/handler"
	"github.com/iliyamo/meeting-room-booking/internal/middleware"
	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// Handlers bundles every handler the router needs so RegisterRoutes
// keeps a manageable signature.
type Handlers struct {
	Auth     *handler.AuthHandler
	Rooms    *handler.RoomHandler
	Users    *handler.UserHandler
	Bookings *handler.BookingHandler
}

// RegisterRoutes wires the full API surface.
//
// Public endpoints (no token): register, login, admin-login,
// refresh-token and logout — the latter two authenticate through the
// refresh cookie instead of a bearer token.  The login endpoints sit
// behind the Redis token-bucket limiter to slow down credential
// stuffing.  Everything else requires a valid access token; room
// mutation and the user directory additionally require the Admin role.
func RegisterRoutes(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	api.POST("/register", h.Auth.Register, limiter)
	api.POST("/login", h.Auth.Login, limiter)
	api.POST("/admin-login", h.Auth.AdminLogin, limiter)
	api.POST("/refresh-token", h.Auth.Refresh)
	api.POST("/logout", h.Auth.Logout)

	auth := api.Group("", middleware.JWTAuth(cfg.JWTSecret))
	auth.GET("/me", h.Auth.Me)

	roomCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	auth.GET("/rooms", h.Rooms.List, roomCache)
	auth.GET("/bookings", h.Bookings.List)
	auth.POST("/bookings", h.Bookings.Create)
	auth.DELETE("/bookings/:id", h.Bookings.Delete)

	admin := auth.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/rooms", h.Rooms.Create)
	admin.PUT("/rooms/:id", h.Rooms.Update)
	admin.DELETE("/rooms/:id", h.Rooms.Delete)
	admin.GET("/users", h.Users.List)
}
