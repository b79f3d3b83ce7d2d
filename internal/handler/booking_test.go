package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-booking/internal/model"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
)

const conflictQuery = "SELECT id FROM bookings WHERE room_id=? AND NOT (end_time <= ? OR start_time >= ?) LIMIT 1 FOR UPDATE"

func setupBookingTest(t *testing.T) (*BookingHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	h := NewBookingHandler(repository.NewBookingRepo(db))
	return h, mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func bookingContext(method, path, body string, userID uint64, role model.Role) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("role", role)
	return c, rec
}

func TestCreateBookingRejectsInvertedInterval(t *testing.T) {
	h, _, cleanup := setupBookingTest(t)
	defer cleanup()

	c, rec := bookingContext(http.MethodPost, "/api/bookings",
		`{"room_id":3,"start_time":"2025-06-02T11:00:00Z","end_time":"2025-06-02T10:00:00Z"}`,
		2, model.RoleEmployee)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingRejectsMissingRoom(t *testing.T) {
	h, _, cleanup := setupBookingTest(t)
	defer cleanup()

	c, rec := bookingContext(http.MethodPost, "/api/bookings",
		`{"start_time":"2025-06-02T10:00:00Z","end_time":"2025-06-02T11:00:00Z"}`,
		2, model.RoleEmployee)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingConflict(t *testing.T) {
	h, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	start := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 11, 30, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(conflictQuery).WithArgs(uint64(3), start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectRollback()

	c, rec := bookingContext(http.MethodPost, "/api/bookings",
		`{"room_id":3,"start_time":"2025-06-02T10:30:00Z","end_time":"2025-06-02T11:30:00Z"}`,
		2, model.RoleEmployee)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateBookingSucceedsOnFreeSlot(t *testing.T) {
	h, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	start := time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(conflictQuery).WithArgs(uint64(3), start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO bookings (user_id, room_id, start_time, end_time) VALUES (?,?,?,?)").
		WithArgs(uint64(2), uint64(3), start, end).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	c, rec := bookingContext(http.MethodPost, "/api/bookings",
		`{"room_id":3,"start_time":"2025-06-02T11:00:00Z","end_time":"2025-06-02T12:00:00Z"}`,
		2, model.RoleEmployee)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":12`)
}

func TestDeleteBookingNotOwnedIsForbidden(t *testing.T) {
	h, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM bookings WHERE id=? AND user_id=?").
		WithArgs(uint64(5), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := bookingContext(http.MethodDelete, "/api/bookings/5", "", 2, model.RoleEmployee)
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteBookingAsAdmin(t *testing.T) {
	h, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM bookings WHERE id=?").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := bookingContext(http.MethodDelete, "/api/bookings/5", "", 9, model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListBookingsScopedByRole(t *testing.T) {
	h, mock, cleanup := setupBookingTest(t)
	defer cleanup()

	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	cols := []string{"id", "user_id", "room_id", "start_time", "end_time", "username", "name"}

	joinBase := "SELECT b.id, b.user_id, b.room_id, b.start_time, b.end_time, u.username, r.name\nFROM bookings b\nJOIN users u ON b.user_id = u.id\nJOIN rooms r ON b.room_id = r.id"

	// Employee: only own bookings queried.
	mock.ExpectQuery(joinBase + " WHERE b.user_id = ? ORDER BY b.start_time DESC").
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, 2, 3, start, end, "dana", "Boardroom"))

	c, rec := bookingContext(http.MethodGet, "/api/bookings", "", 2, model.RoleEmployee)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user":{"id":2,"username":"dana"}`)
	assert.Contains(t, rec.Body.String(), `"room":{"id":3,"name":"Boardroom"}`)

	// Admin: unfiltered listing.
	mock.ExpectQuery(joinBase + " ORDER BY b.start_time DESC").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 2, 3, start, end, "dana", "Boardroom").
			AddRow(2, 4, 3, end, end.Add(time.Hour), "lee", "Boardroom"))

	c, rec = bookingContext(http.MethodGet, "/api/bookings", "", 9, model.RoleAdmin)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"lee"`)
}
