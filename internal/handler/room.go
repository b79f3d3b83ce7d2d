package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/meeting-room-booking/internal/middleware"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

// RoomHandler serves room listing for everyone and room mutation for
// admins.  The Redis client is optional; when present, mutations purge
// the cached room list so reads stay fresh.
type RoomHandler struct {
	Rooms       *repository.RoomRepo
	Redis       *redis.Client
	CachePrefix string
}

func NewRoomHandler(rooms *repository.RoomRepo, rdb *redis.Client, cachePrefix string) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Redis: rdb, CachePrefix: cachePrefix}
}

type roomReq struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	Capacity  uint32 `json:"capacity"`
	Amenities string `json:"amenities"`
}

func (rq *roomReq) validate() string {
	rq.Name = strings.TrimSpace(rq.Name)
	rq.Location = strings.TrimSpace(rq.Location)
	if rq.Name == "" {
		return "name is required"
	}
	if rq.Capacity == 0 {
		return "capacity must be greater than zero"
	}
	return ""
}

// List handles GET /api/rooms.  The route sits behind the Redis response
// cache, so repeated reads within the TTL never reach the database.
func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, rooms)
}

// Create handles POST /api/rooms (Admin).
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Rooms.Create(ctx, req.Name, req.Location, req.Capacity, req.Amenities)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	h.purgeCache(ctx)
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Update handles PUT /api/rooms/:id (Admin).
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Update(ctx, id, req.Name, req.Location, req.Capacity, req.Amenities); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
	}
	h.purgeCache(ctx)
	return c.String(http.StatusOK, "room updated")
}

// Delete handles DELETE /api/rooms/:id (Admin).
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete room failed"})
	}
	h.purgeCache(ctx)
	return c.String(http.StatusOK, "room deleted")
}

// purgeCache is best effort: a failed purge only means stale reads until
// the cache TTL passes, so the error is ignored.
func (h *RoomHandler) purgeCache(ctx context.Context) {
	_ = middleware.PurgeCache(ctx, h.Redis, h.CachePrefix)
}
