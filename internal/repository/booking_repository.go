package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// BookingRepo provides booking creation with conflict detection, listing
// and cancellation.  All timestamps are stored in UTC.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// CreateIfFree inserts a booking only when no existing booking for the
// same room overlaps [start, end).  The overlap check and the insert run
// in a single transaction; the SELECT ... FOR UPDATE takes locks on the
// room's matching index range so two concurrent requests for overlapping
// slots serialize instead of both passing the check.  Returns the new
// booking ID, or ErrConflict when the slot is taken.
func (r *BookingRepo) CreateIfFree(ctx context.Context, userID, roomID uint64, start, end time.Time) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Same predicate as model.Overlaps, expressed in SQL.
	var existing uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM bookings WHERE room_id=? AND NOT (end_time <= ? OR start_time >= ?) LIMIT 1 FOR UPDATE",
		roomID, start, end).Scan(&existing)
	switch {
	case err == nil:
		return 0, ErrConflict
	case err != sql.ErrNoRows:
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO bookings (user_id, room_id, start_time, end_time) VALUES (?,?,?,?)",
		userID, roomID, start, end)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// BookingDetail is a booking row joined with its owner and room.  The
// flat booking fields are kept alongside nested user/room objects so
// clients can consume either shape.
type BookingDetail struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	RoomID    uint64    `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	User      struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	Room struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	} `json:"room"`
}

const bookingJoinQuery = `SELECT b.id, b.user_id, b.room_id, b.start_time, b.end_time, u.username, r.name
FROM bookings b
JOIN users u ON b.user_id = u.id
JOIN rooms r ON b.room_id = r.id`

// ListAll returns every booking joined with owner and room, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]BookingDetail, error) {
	rows, err := r.DB.QueryContext(ctx, bookingJoinQuery+" ORDER BY b.start_time DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingDetails(rows)
}

// ListByUser returns the bookings owned by a single user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	rows, err := r.DB.QueryContext(ctx, bookingJoinQuery+" WHERE b.user_id = ? ORDER BY b.start_time DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingDetails(rows)
}

func scanBookingDetails(rows *sql.Rows) ([]BookingDetail, error) {
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.RoomID, &d.StartTime, &d.EndTime, &d.User.Username, &d.Room.Name); err != nil {
			return nil, err
		}
		d.User.ID = d.UserID
		d.Room.ID = d.RoomID
		out = append(out, d)
	}
	return out, rows.Err()
}

// Delete cancels a booking.  Admins may delete any booking; everyone
// else only their own.  A delete that affects zero rows is reported as
// ErrForbidden without distinguishing "not found" from "not yours".
func (r *BookingRepo) Delete(ctx context.Context, bookingID, userID uint64, admin bool) error {
	var (
		res sql.Result
		err error
	)
	if admin {
		res, err = r.DB.ExecContext(ctx, "DELETE FROM bookings WHERE id=?", bookingID)
	} else {
		res, err = r.DB.ExecContext(ctx, "DELETE FROM bookings WHERE id=? AND user_id=?", bookingID, userID)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrForbidden
	}
	return nil
}

// Get fetches a single booking by id.
func (r *BookingRepo) Get(ctx context.Context, id uint64) (model.Booking, error) {
	var b model.Booking
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,room_id,start_time,end_time,created_at FROM bookings WHERE id=? LIMIT 1",
		id).Scan(&b.ID, &b.UserID, &b.RoomID, &b.StartTime, &b.EndTime, &b.CreatedAt)
	return b, err
}
