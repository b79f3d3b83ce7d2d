package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/queue"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
	publisher "github.com/iliyamo/meeting-room-booking/internal/service"
)

// BookingHandler serves booking creation, role-scoped listing and
// cancellation.  All methods assume JWT authentication already ran.
// Successful mutations publish an event to the message broker; publish
// failures are ignored so a broker outage never fails a booking.
type BookingHandler struct {
	Bookings *repository.BookingRepo
}

func NewBookingHandler(bookings *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{Bookings: bookings}
}

type createBookingReq struct {
	RoomID    uint64    `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Create handles POST /api/bookings.  The requested interval must be
// well formed (start strictly before end); the repository rejects any
// interval overlapping an existing booking for the same room with 409.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required"})
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() || !req.StartTime.Before(req.EndTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be before end_time"})
	}
	start := req.StartTime.UTC()
	end := req.EndTime.UTC()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Bookings.CreateIfFree(ctx, userID, req.RoomID, start, end)
	if err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room already booked for that time"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}

	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pcancel()
		_ = publisher.PublishBookingEvent(pctx, queue.BookingEvent{
			Action:     queue.ActionCreated,
			BookingID:  id,
			UserID:     userID,
			RoomID:     req.RoomID,
			StartTime:  start.Format(time.RFC3339),
			EndTime:    end.Format(time.RFC3339),
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, echo.Map{"id": id, "message": "booking created"})
}

// List handles GET /api/bookings.  Admins receive every booking;
// employees only their own.  Both shapes join the owning user and room.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, err := getRole(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var details []repository.BookingDetail
	if role == model.RoleAdmin {
		details, err = h.Bookings.ListAll(ctx)
	} else {
		details, err = h.Bookings.ListByUser(ctx, userID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, details)
}

// Delete handles DELETE /api/bookings/:id.  Owners cancel their own
// bookings, admins anyone's.  A delete matching no row is reported as
// 403 without revealing whether the booking exists at all.
func (h *BookingHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, err := getRole(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Bookings.Delete(ctx, bookingID, userID, role == model.RoleAdmin); err != nil {
		if err == repository.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "unauthorized or booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel booking failed"})
	}

	go func() {
		pctx, pcancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pcancel()
		_ = publisher.PublishBookingEvent(pctx, queue.BookingEvent{
			Action:     queue.ActionCancelled,
			BookingID:  bookingID,
			UserID:     userID,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.String(http.StatusOK, "booking cancelled")
}
